package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spaghettifunk/parallax/engine/core"
	"github.com/spaghettifunk/parallax/engine/math"
)

// StarEntry is one catalog star. RA/Dec are stored in radians; the loaders
// convert from the degree columns of the CSV files. Entries are immutable
// after loading.
type StarEntry struct {
	RA        float64
	Dec       float64
	MagV      float32
	ColorBV   float32
	CatalogID uint32
}

// LoadBrightStarCSV reads a bright-star catalog with the column layout
// Name,RA_deg,Dec_deg,Vmag,BV. The first line is a header and is skipped.
// Malformed lines are skipped with a warning; an empty result is an error.
func LoadBrightStarCSV(path string) ([]StarEntry, error) {
	return loadCSV(path, func(record []string, lineNumber uint32) (StarEntry, error) {
		if len(record) != 5 {
			return StarEntry{}, fmt.Errorf("expected 5 columns, got %d", len(record))
		}
		raDeg, err := parseFloat(record[1])
		if err != nil {
			return StarEntry{}, err
		}
		decDeg, err := parseFloat(record[2])
		if err != nil {
			return StarEntry{}, err
		}
		magV, err := parseFloat(record[3])
		if err != nil {
			return StarEntry{}, err
		}
		bv, err := parseFloat(record[4])
		if err != nil {
			return StarEntry{}, err
		}
		return StarEntry{
			RA:      math.DegToRad(raDeg),
			Dec:     math.DegToRad(decDeg),
			MagV:    float32(magV),
			ColorBV: float32(bv),
			// 1-based index; line 2 of the file is star 1.
			CatalogID: lineNumber - 1,
		}, nil
	})
}

// LoadHipparcosCSV reads a Hipparcos extract with the column layout
// HIP,RA_deg,Dec_deg,Vmag,BV. The HIP number becomes the catalog ID.
func LoadHipparcosCSV(path string) ([]StarEntry, error) {
	return loadCSV(path, func(record []string, lineNumber uint32) (StarEntry, error) {
		if len(record) != 5 {
			return StarEntry{}, fmt.Errorf("expected 5 columns, got %d", len(record))
		}
		hip, err := strconv.ParseUint(strings.TrimSpace(record[0]), 10, 32)
		if err != nil {
			return StarEntry{}, err
		}
		raDeg, err := parseFloat(record[1])
		if err != nil {
			return StarEntry{}, err
		}
		decDeg, err := parseFloat(record[2])
		if err != nil {
			return StarEntry{}, err
		}
		magV, err := parseFloat(record[3])
		if err != nil {
			return StarEntry{}, err
		}
		bv, err := parseFloat(record[4])
		if err != nil {
			return StarEntry{}, err
		}
		return StarEntry{
			RA:        math.DegToRad(raDeg),
			Dec:       math.DegToRad(decDeg),
			MagV:      float32(magV),
			ColorBV:   float32(bv),
			CatalogID: uint32(hip),
		}, nil
	})
}

func parseFloat(field string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(field), 64)
}

func loadCSV(path string, parse func(record []string, lineNumber uint32) (StarEntry, error)) ([]StarEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Header line.
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("catalog: file is empty: %s", path)
	}

	var stars []StarEntry
	var skipped uint32
	lineNumber := uint32(1)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNumber++
		if err != nil {
			core.LogWarn("catalog: malformed line %d in %s: %v", lineNumber, path, err)
			skipped++
			continue
		}

		entry, err := parse(record, lineNumber)
		if err != nil {
			core.LogWarn("catalog: failed to parse line %d in %s: %v", lineNumber, path, err)
			skipped++
			continue
		}
		stars = append(stars, entry)
	}

	if len(stars) == 0 {
		return nil, fmt.Errorf("catalog: no valid stars found in %s", path)
	}
	if skipped > 0 {
		core.LogWarn("catalog: skipped %d malformed lines in %s", skipped, path)
	}
	core.LogInfo("catalog: loaded %d stars from %s", len(stars), path)

	return stars, nil
}

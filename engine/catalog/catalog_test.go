package catalog

import (
	stdmath "math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCatalog(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadBrightStarCSV(t *testing.T) {
	path := writeTempCatalog(t, `Name,RA_deg,Dec_deg,Vmag,BV
Sirius,101.287,-16.716,-1.46,0.00
Vega,279.235,38.784,0.03,0.00
`)

	stars, err := LoadBrightStarCSV(path)
	require.NoError(t, err)
	require.Len(t, stars, 2)

	sirius := stars[0]
	assert.Equal(t, uint32(1), sirius.CatalogID)
	assert.InDelta(t, 101.287*stdmath.Pi/180.0, sirius.RA, 1e-9)
	assert.InDelta(t, -16.716*stdmath.Pi/180.0, sirius.Dec, 1e-9)
	assert.InDelta(t, -1.46, float64(sirius.MagV), 1e-6)

	assert.Equal(t, uint32(2), stars[1].CatalogID)
}

func TestLoadBrightStarCSVSkipsMalformedLines(t *testing.T) {
	path := writeTempCatalog(t, `Name,RA_deg,Dec_deg,Vmag,BV
Sirius,101.287,-16.716,-1.46,0.00
BadStar,not-a-number,0,0,0
ShortLine,1.0,2.0
Vega,279.235,38.784,0.03,0.00
`)

	stars, err := LoadBrightStarCSV(path)
	require.NoError(t, err)
	require.Len(t, stars, 2)
	assert.Equal(t, uint32(1), stars[0].CatalogID)
	// Line numbering still counts skipped lines.
	assert.Equal(t, uint32(4), stars[1].CatalogID)
}

func TestLoadBrightStarCSVEmptyIsError(t *testing.T) {
	path := writeTempCatalog(t, "Name,RA_deg,Dec_deg,Vmag,BV\n")
	_, err := LoadBrightStarCSV(path)
	assert.Error(t, err)
}

func TestLoadBrightStarCSVAllMalformedIsError(t *testing.T) {
	path := writeTempCatalog(t, `Name,RA_deg,Dec_deg,Vmag,BV
x,nope,nope,nope,nope
`)
	_, err := LoadBrightStarCSV(path)
	assert.Error(t, err)
}

func TestLoadBrightStarCSVMissingFile(t *testing.T) {
	_, err := LoadBrightStarCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestLoadHipparcosCSV(t *testing.T) {
	path := writeTempCatalog(t, `HIP,RA_deg,Dec_deg,Vmag,BV
32349,101.287,-16.716,-1.46,0.00
91262,279.235,38.784,0.03,0.00
`)

	stars, err := LoadHipparcosCSV(path)
	require.NoError(t, err)
	require.Len(t, stars, 2)

	// The HIP number is the catalog ID, not the line number.
	assert.Equal(t, uint32(32349), stars[0].CatalogID)
	assert.Equal(t, uint32(91262), stars[1].CatalogID)
	assert.InDelta(t, -1.46, float64(stars[0].MagV), 1e-6)
}

func TestLoadHipparcosCSVRejectsNonNumericHIP(t *testing.T) {
	path := writeTempCatalog(t, `HIP,RA_deg,Dec_deg,Vmag,BV
abc,101.287,-16.716,-1.46,0.00
32349,101.287,-16.716,-1.46,0.00
`)

	stars, err := LoadHipparcosCSV(path)
	require.NoError(t, err)
	require.Len(t, stars, 1)
	assert.Equal(t, uint32(32349), stars[0].CatalogID)
}

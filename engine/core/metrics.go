package core

import "sync"

const AVG_COUNT uint8 = 30

type MetricsState struct {
	FrameAVGCounter    uint8
	MStimes            [AVG_COUNT]float64
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
	VisibleStars       uint32
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{
			MStimes: [AVG_COUNT]float64{0},
		}
	})
	return nil
}

func MetricsUpdate(frame_elapsed_time float64) {
	// Calculate frame ms average
	frame_ms := (frame_elapsed_time * 1000.0)
	metricsState.MStimes[metricsState.FrameAVGCounter] = frame_ms
	if metricsState.FrameAVGCounter == AVG_COUNT-1 {
		avg := 0.0
		for i := uint8(0); i < AVG_COUNT; i++ {
			avg += metricsState.MStimes[i]
		}
		metricsState.MSavg = avg / float64(AVG_COUNT)
	}
	metricsState.FrameAVGCounter++
	metricsState.FrameAVGCounter %= AVG_COUNT

	// Calculate Frames per second.
	metricsState.AccumulatedFrameMS += frame_ms
	if metricsState.AccumulatedFrameMS > 1000 {
		metricsState.FPS = float64(metricsState.Frames)
		metricsState.AccumulatedFrameMS -= 1000
		metricsState.Frames = 0
	}

	// Count all Frames.
	metricsState.Frames++
}

// MetricsSetVisibleStars records how many stars survived the CPU transform
// this frame, for the periodic stats line.
func MetricsSetVisibleStars(count uint32) {
	metricsState.VisibleStars = count
}

// MetricsFrame reports the current frames per second, average frame time in
// milliseconds, and visible star count for the periodic stats line.
func MetricsFrame() (float64, float64, uint32) {
	return metricsState.FPS, metricsState.MSavg, metricsState.VisibleStars
}

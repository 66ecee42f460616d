package onset

import "math"

// slidingWindow reassembles arbitrary-length sample chunks into hop-aligned
// analysis frames for streaming use.
type slidingWindow struct {
	buffer     []float64
	windowSize int
	hopSize    int
	writePos   int
}

func newSlidingWindow(windowSize, hopSize int) *slidingWindow {
	return &slidingWindow{
		buffer:     make([]float64, windowSize),
		windowSize: windowSize,
		hopSize:    hopSize,
	}
}

// addSamples buffers samples and returns every complete frame they finish.
func (sw *slidingWindow) addSamples(samples []float64) [][]float64 {
	var frames [][]float64

	for _, sample := range samples {
		sw.buffer[sw.writePos] = sample
		sw.writePos++

		if sw.writePos >= sw.windowSize {
			frame := make([]float64, sw.windowSize)
			copy(frame, sw.buffer)
			frames = append(frames, frame)

			if sw.hopSize < sw.windowSize {
				copy(sw.buffer, sw.buffer[sw.hopSize:])
				sw.writePos = sw.windowSize - sw.hopSize
			} else {
				sw.writePos = 0
			}
		}
	}

	return frames
}

func (sw *slidingWindow) reset() {
	sw.writePos = 0
	for i := range sw.buffer {
		sw.buffer[i] = 0.0
	}
}

// hannWindow returns Hann coefficients for tapering analysis frames.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1.0
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

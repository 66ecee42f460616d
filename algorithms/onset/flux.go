package onset

import "math"

// Flux computes streaming spectral flux: the positive spectral change
// between successive magnitude frames. Only energy increases count, since
// onsets announce themselves by adding energy.
type Flux struct {
	prev   []float64
	primed bool
}

func NewFlux() *Flux {
	return &Flux{}
}

// Process returns the flux between the previous frame and mag. The first
// frame (or a frame of different size) primes the state and reports zero.
func (f *Flux) Process(mag []float64) float64 {
	if !f.primed || len(f.prev) != len(mag) {
		f.prev = append(f.prev[:0], mag...)
		f.primed = true
		return 0
	}

	sum := 0.0
	for i, m := range mag {
		diff := m - f.prev[i]
		if diff > 0 {
			sum += diff * diff
		}
	}
	f.prev = append(f.prev[:0], mag...)

	return math.Sqrt(sum)
}

// Reset clears the retained frame.
func (f *Flux) Reset() {
	f.prev = f.prev[:0]
	f.primed = false
}

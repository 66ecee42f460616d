// Package onset turns streaming audio frames into discrete onset peak
// events suitable for the groove detector: spectral flux with an adaptive
// mean+k·σ threshold, a local-maximum test, and strength normalization
// against a decaying peak envelope.
package onset

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"github.com/emotivekit/groove-engine/algorithms/common"
)

// PeakEvent is one detected onset, ready for the groove detector.
type PeakEvent struct {
	Strength float64 `json:"strength"` // normalized to [0, 1]
	TimeMs   float64 `json:"time_ms"`
}

// ExtractorConfig holds the analysis geometry and peak-picking parameters.
type ExtractorConfig struct {
	SampleRate int `json:"sample_rate"`
	WindowSize int `json:"window_size"`
	HopSize    int `json:"hop_size"`

	// Adaptive threshold: mean + ThresholdK * stddev over the last
	// HistoryFrames flux values.
	ThresholdK    float64 `json:"threshold_k"`
	HistoryFrames int     `json:"history_frames"`

	// Minimum distance between reported peaks.
	MinSeparationMs float64 `json:"min_separation_ms"`
}

// DefaultExtractorConfig returns defaults for the 44.1kHz / 1024-sample
// frame regime.
func DefaultExtractorConfig() *ExtractorConfig {
	return &ExtractorConfig{
		SampleRate:      44100,
		WindowSize:      1024,
		HopSize:         512,
		ThresholdK:      2.0,
		HistoryFrames:   43, // ~0.5s of hops at the default geometry
		MinSeparationMs: 250,
	}
}

// Extractor converts time-domain frames or magnitude spectra into onset
// peak events. Detection runs with one frame of lookahead: an onset at
// frame t is reported while processing frame t+1.
type Extractor struct {
	cfg    *ExtractorConfig
	window []float64
	sw     *slidingWindow
	flux   *Flux

	history []float64 // recent flux values for the adaptive threshold
	f2, f1  float64   // last two flux values for the local-maximum test
	frames  int

	lastPeakMs   float64
	peakEnvelope float64
}

// NewExtractor creates an extractor. A nil config uses the defaults.
func NewExtractor(cfg *ExtractorConfig) *Extractor {
	if cfg == nil {
		cfg = DefaultExtractorConfig()
	}
	return &Extractor{
		cfg:        cfg,
		window:     hannWindow(cfg.WindowSize),
		sw:         newSlidingWindow(cfg.WindowSize, cfg.HopSize),
		flux:       NewFlux(),
		lastPeakMs: math.Inf(-1),
	}
}

// ProcessSamples ingests arbitrary-length sample chunks, slicing them into
// hop-aligned frames internally.
func (e *Extractor) ProcessSamples(samples []float64) []PeakEvent {
	var events []PeakEvent
	for _, frame := range e.sw.addSamples(samples) {
		events = append(events, e.ProcessFrame(frame)...)
	}
	return events
}

// ProcessFrame ingests one hop-aligned time-domain frame of WindowSize
// samples and returns any onset completed by it.
func (e *Extractor) ProcessFrame(frame []float64) []PeakEvent {
	return e.ProcessSpectrum(e.magnitude(frame))
}

// ProcessSpectrum ingests one magnitude frame from a caller-side FFT.
func (e *Extractor) ProcessSpectrum(mag []float64) []PeakEvent {
	value := e.flux.Process(mag)
	e.frames++

	var events []PeakEvent

	// Local-maximum test on the previous flux value.
	if e.frames >= 3 && e.f1 > e.f2 && e.f1 > value {
		peakTime := e.frameTime(e.frames - 2)
		if e.f1 >= e.threshold() && peakTime-e.lastPeakMs >= e.cfg.MinSeparationMs {
			if strength := e.strength(e.f1); strength > 0 {
				events = append(events, PeakEvent{Strength: strength, TimeMs: peakTime})
				e.lastPeakMs = peakTime
			}
		}
	}

	e.pushHistory(value)
	e.f2, e.f1 = e.f1, value

	return events
}

// Reset clears all rolling state.
func (e *Extractor) Reset() {
	e.sw.reset()
	e.flux.Reset()
	e.history = e.history[:0]
	e.f2, e.f1 = 0, 0
	e.frames = 0
	e.lastPeakMs = math.Inf(-1)
	e.peakEnvelope = 0
}

func (e *Extractor) magnitude(frame []float64) []float64 {
	n := e.cfg.WindowSize
	buf := make([]float64, n)
	for i := 0; i < n && i < len(frame); i++ {
		buf[i] = frame[i] * e.window[i]
	}

	spectrum := fft.FFTReal(buf)
	mag := make([]float64, n/2+1)
	for i := range mag {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

func (e *Extractor) threshold() float64 {
	if len(e.history) < 3 {
		return math.Inf(1)
	}
	mean := stat.Mean(e.history, nil)
	std := math.Sqrt(stat.Variance(e.history, nil))
	return mean + e.cfg.ThresholdK*std
}

// strength normalizes a flux peak against a decaying peak envelope: fast
// attack, slow release, so strengths track the loudness of the material.
func (e *Extractor) strength(value float64) float64 {
	if value > e.peakEnvelope {
		e.peakEnvelope = common.EMA(e.peakEnvelope, value, 0.34)
	} else {
		e.peakEnvelope = common.EMA(e.peakEnvelope, value, 0.02)
	}
	if e.peakEnvelope <= 1e-12 {
		return 0
	}
	return common.Clamp(value/e.peakEnvelope, 0, 1)
}

func (e *Extractor) frameTime(frame int) float64 {
	return float64(frame) * float64(e.cfg.HopSize) / float64(e.cfg.SampleRate) * 1000.0
}

func (e *Extractor) pushHistory(value float64) {
	e.history = append(e.history, value)
	if len(e.history) > e.cfg.HistoryFrames {
		e.history = e.history[1:]
	}
}

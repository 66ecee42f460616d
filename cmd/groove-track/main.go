// Command groove-track runs the onset extractor and groove detector over a
// WAV file and prints the detection result as JSON. It exists for tuning and
// regression work on recorded material; live hosts drive the packages
// directly.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/emotivekit/groove-engine/algorithms/onset"
	"github.com/emotivekit/groove-engine/groove"
	"github.com/emotivekit/groove-engine/logging"
)

type outRecord struct {
	FileName   string            `json:"file_name"`
	SampleRate int               `json:"sample_rate"`
	Channels   int               `json:"channels"`
	DurationMs float64           `json:"duration_ms"`
	PeakEvents []onset.PeakEvent `json:"peak_events"`
	Status     groove.Status     `json:"status"`
}

func main() {
	var (
		inPath     = flag.String("in", "", "input WAV file (required)")
		outPath    = flag.String("out", "", "output JSON file (default stdout)")
		windowSize = flag.Int("window", 1024, "FFT window size in samples")
		hopSize    = flag.Int("hop", 512, "hop size in samples")
		seedBPM    = flag.Float64("seed", 0, "optional expected tempo to bias the vote")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		logging.SetLevel(logging.DebugLevel)
	}

	record, err := analyzeFile(*inPath, *windowSize, *hopSize, *seedBPM)
	if err != nil {
		logging.Error(err, "analysis failed", logging.Fields{"file": *inPath})
		os.Exit(1)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		logging.Error(err, "encoding result failed")
		os.Exit(1)
	}
	data = append(data, '\n')

	if *outPath == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		logging.Error(err, "writing result failed", logging.Fields{"file": *outPath})
		os.Exit(1)
	}
}

func analyzeFile(path string, windowSize, hopSize int, seedBPM float64) (*outRecord, error) {
	samples, sampleRate, channels, err := readWavMono(path)
	if err != nil {
		return nil, err
	}

	cfg := onset.DefaultExtractorConfig()
	cfg.SampleRate = sampleRate
	cfg.WindowSize = windowSize
	cfg.HopSize = hopSize

	extractor := onset.NewExtractor(cfg)
	detector := groove.NewDetector(nil)
	detector.Reset(seedBPM)

	events := extractor.ProcessSamples(samples)
	for _, ev := range events {
		detector.ProcessPeak(ev.Strength, ev.TimeMs)
	}

	durationMs := float64(len(samples)) / float64(sampleRate) * 1000.0
	logging.Info("analysis complete", logging.Fields{
		"file":        path,
		"duration_ms": fmt.Sprintf("%.0f", durationMs),
		"peaks":       len(events),
		"bpm":         detector.BPM(),
	})

	return &outRecord{
		FileName:   path,
		SampleRate: sampleRate,
		Channels:   channels,
		DurationMs: durationMs,
		PeakEvents: events,
		Status:     detector.Status(),
	}, nil
}

// readWavMono decodes a WAV file into normalized mono float64 samples.
func readWavMono(path string) ([]float64, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("%s is not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decoding %s: %w", path, err)
	}

	channels := buf.Format.NumChannels
	return downmix(buf), buf.Format.SampleRate, channels, nil
}

// downmix averages interleaved channels into normalized mono.
func downmix(buf *audio.IntBuffer) []float64 {
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		samples[i] = sum / float64(channels) / scale
	}
	return samples
}

// Package groove implements a cascading beat/BPM detector. It ingests
// streaming onset events, votes across competing tempo hypotheses in a
// decaying histogram, resolves half/double-tempo ambiguity with a single
// bounded correction, and emits a stable BPM estimate plus a smoothed groove
// confidence that downstream animation polls to scale its intensity.
//
// The detector is single-threaded and synchronous: one owner drives it from
// an audio or animation loop, and every mutation completes within one
// ProcessPeak call.
package groove

import (
	"fmt"

	"github.com/emotivekit/groove-engine/logging"
)

// Detector is the tempo estimation state machine. Construct with
// NewDetector; the zero value is not usable.
type Detector struct {
	cfg    *DetectorConfig
	logger logging.Logger

	histogram   *voteHistogram
	intervals   []float64
	intervalCap int
	lastPeakAt  float64

	stage      LockStage
	lockedBPM  int
	currentBPM int
	confidence float64
	correction CorrectionType
	corrected  bool
	finalized  bool

	stage1LockAt  float64
	stage3EnterAt float64
	stableSince   float64
	microTune     float64

	evidence []bool
	smoother *grooveSmoother
	diag     *DiagnosticsBuffer

	peakCount        int
	skippedPeaks     int
	skippedIntervals int
	updates          int
}

// NewDetector creates a detector in the detecting state. A nil config uses
// the tuned defaults.
func NewDetector(cfg *DetectorConfig) *Detector {
	if cfg == nil {
		cfg = DefaultDetectorConfig()
	}
	d := &Detector{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "groove_detector",
		}),
		histogram: newVoteHistogram(cfg),
		smoother:  newGrooveSmoother(),
		diag:      newDiagnosticsBuffer(cfg.DiagnosticsCapacity),
	}
	d.Reset(0)
	return d
}

// ProcessPeak feeds one onset event into the detector. The time must come
// from a monotonic millisecond clock. Sub-threshold peaks and out-of-range
// intervals are counted and dropped; the steady-state path never fails.
func (d *Detector) ProcessPeak(strength, timeMs float64) {
	d.peakCount++
	if strength < d.cfg.MinPeakStrength {
		d.skippedPeaks++
		return
	}

	if d.lastPeakAt >= 0 {
		interval := timeMs - d.lastPeakAt
		if interval >= d.cfg.MinIntervalMs && interval <= d.cfg.MaxIntervalMs {
			d.pushInterval(interval)
			if !d.finalized {
				d.histogram.decay()
				d.histogram.cast(interval)
			}
		} else {
			d.skippedIntervals++
		}
	}
	d.lastPeakAt = timeMs

	d.updateBPM(timeMs)
}

// Reset returns the detector to the detecting state, the only backward
// transition. A positive seed biases the empty histogram toward an expected
// tempo without pre-locking.
func (d *Detector) Reset(seedBPM float64) {
	d.histogram.clear()
	d.intervals = nil
	d.intervalCap = d.cfg.MaxIntervals
	d.lastPeakAt = -1

	d.stage = StageDetecting
	d.lockedBPM = 0
	d.currentBPM = 0
	d.confidence = 0
	d.correction = CorrectionNone
	d.corrected = false
	d.finalized = false

	d.stage1LockAt = 0
	d.stage3EnterAt = 0
	d.stableSince = -1
	d.microTune = 0

	d.evidence = nil
	d.smoother.reset()

	d.peakCount = 0
	d.skippedPeaks = 0
	d.skippedIntervals = 0
	d.updates = 0

	if seedBPM > 0 {
		d.histogram.seed(seedBPM)
		d.currentBPM = d.histogram.foldToInt(seedBPM)
	}
}

// updateBPM re-derives the leading candidate and runs the stage machine.
// Evaluation order matters: subdivision evidence, then the correction check,
// then stage transitions.
func (d *Detector) updateBPM(now float64) {
	d.updates++
	defer d.maybeSnapshot(now)

	if d.finalized {
		d.smoother.update(d.stage, true)
		return
	}
	if d.histogram.size() == 0 {
		return
	}

	winner, _, ok := d.histogram.winner()
	if !ok {
		return
	}
	cluster := d.histogram.clusterVotes(winner)
	total := d.histogram.totalVotes()
	if total <= 0 {
		total = 1
	}
	d.currentBPM = winner
	d.confidence = cluster / total

	switch d.stage {
	case StageDetecting:
		d.tryInitialLock(now, winner, cluster)
	case StageInitialLock, StageRefinement:
		d.recordEvidence()
		d.maybeCorrect(now)
		d.advanceStage(now)
	case StageFinalLock:
		d.microTuneLock(now)
	}

	d.smoother.update(d.stage, d.finalized)
}

func (d *Detector) pushInterval(interval float64) {
	d.intervals = append(d.intervals, interval)
	if len(d.intervals) > d.intervalCap {
		d.intervals = d.intervals[1:]
	}
}

func (d *Detector) recentIntervals(n int) []float64 {
	if len(d.intervals) <= n {
		return d.intervals
	}
	return d.intervals[len(d.intervals)-n:]
}

func (d *Detector) maybeSnapshot(now float64) {
	if d.cfg.SnapshotEvery <= 0 || d.updates%d.cfg.SnapshotEvery != 0 {
		return
	}
	d.diag.add(fmt.Sprintf(
		"t=%.0fms stage=%s bpm=%d conf=%.2f groove=%.2f correction=%s votes=%d intervals=%d peaks=%d skipped=%d/%d",
		now, d.stage, d.BPM(), d.confidence, d.smoother.current(), d.correction,
		d.histogram.size(), len(d.intervals), d.peakCount,
		d.skippedPeaks, d.skippedIntervals))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

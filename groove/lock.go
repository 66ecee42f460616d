package groove

import (
	"math"

	"github.com/emotivekit/groove-engine/algorithms/common"
	"github.com/emotivekit/groove-engine/logging"
)

// LockStage tracks the staged convergence of the tempo lock. Progression is
// monotonic forward; only Reset moves backward.
type LockStage int

const (
	// StageDetecting collects intervals with no committed tempo yet.
	StageDetecting LockStage = iota
	// StageInitialLock is a fast provisional lock, still open to octave
	// correction.
	StageInitialLock
	// StageRefinement is the bounded window in which at most one octave
	// correction may land.
	StageRefinement
	// StageFinalLock micro-tunes the committed tempo and eventually sheds
	// its working memory.
	StageFinalLock
)

func (s LockStage) String() string {
	switch s {
	case StageDetecting:
		return "detecting"
	case StageInitialLock:
		return "initial-lock"
	case StageRefinement:
		return "refinement"
	case StageFinalLock:
		return "final-lock"
	default:
		return "unknown"
	}
}

const (
	// Faster tempi produce shorter, noisier intervals and need more samples
	// before a provisional lock.
	fastTempoBPM     = 120
	minIntervalsFast = 12
	minIntervalsSlow = 8

	lockMinClusterVotes  = 5.0
	lockMinConfidence    = 0.20
	lockMinConsistency   = 0.45
	consistencyTolerance = 0.15
	consistencyWindow    = 12

	// Refinement window exits.
	refinementMinChecks    = 6
	conclusiveChecks       = 12
	conclusiveMaxPositives = 3
	refinementTimeoutMs    = 10000.0

	// Final-stage micro-tuning and cleanup.
	microTuneDriftMax    = 0.05
	microTuneAlpha       = 0.10
	finalizeAfterMs      = 5000.0
	finalizeStableMs     = 3000.0
	cleanupKeepIntervals = 8
)

// tryInitialLock promotes the leading candidate to a provisional lock once
// enough consistent interval evidence has accumulated.
func (d *Detector) tryInitialLock(now float64, winner int, cluster float64) {
	need := minIntervalsSlow
	if winner > fastTempoBPM {
		need = minIntervalsFast
	}
	if len(d.intervals) < need {
		return
	}
	if cluster <= lockMinClusterVotes {
		return
	}
	if d.confidence <= lockMinConfidence {
		return
	}
	if d.intervalConsistency(winner) <= lockMinConsistency {
		return
	}

	d.lockedBPM = winner
	d.stage = StageInitialLock
	d.stage1LockAt = now
	d.logger.Debug("provisional tempo lock", logging.Fields{
		"bpm":        winner,
		"confidence": d.confidence,
		"intervals":  len(d.intervals),
	})
}

// intervalConsistency is the fraction of recent intervals matching the beat
// period, its subdivision, or its double, within tolerance.
func (d *Detector) intervalConsistency(bpm int) float64 {
	window := d.recentIntervals(consistencyWindow)
	if len(window) == 0 || bpm <= 0 {
		return 0
	}
	period := 60000.0 / float64(bpm)
	matched := 0
	for _, iv := range window {
		for _, p := range [3]float64{period, period / 2, period * 2} {
			if math.Abs(iv-p)/p <= consistencyTolerance {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(window))
}

// advanceStage runs the forward stage transitions. The correction check has
// already run for this update; a correction landing in the same tick as the
// refinement auto-entry therefore wins.
func (d *Detector) advanceStage(now float64) {
	if d.stage == StageInitialLock && len(d.evidence) >= refinementMinChecks {
		d.stage = StageRefinement
	}
	if d.stage != StageRefinement {
		return
	}

	positives := 0
	for _, p := range d.evidence {
		if p {
			positives++
		}
	}

	switch {
	case d.corrected:
		// Correction applied, nothing left to refine.
	case len(d.evidence) >= conclusiveChecks && positives < conclusiveMaxPositives:
		// Conclusively not a subdivision case.
	case now-d.stage1LockAt > refinementTimeoutMs:
		// Safety valve.
	default:
		return
	}

	d.stage = StageFinalLock
	d.stage3EnterAt = now
	d.stableSince = -1
	d.microTune = float64(d.lockedBPM)
	d.logger.Debug("tempo lock entering final stage", logging.Fields{
		"bpm":        d.lockedBPM,
		"correction": d.correction,
	})
}

// microTuneLock drifts the final lock by small increments while the input
// agrees, and runs the one-time memory cleanup once the lock has settled.
func (d *Detector) microTuneLock(now float64) {
	if inst := d.instantBPM(); inst > 0 && d.lockedBPM > 0 {
		drift := math.Abs(inst-float64(d.lockedBPM)) / float64(d.lockedBPM)
		if drift < microTuneDriftMax {
			d.microTune = common.EMA(d.microTune, inst, microTuneAlpha)
			d.lockedBPM = int(math.Round(d.microTune))
			if d.stableSince < 0 {
				d.stableSince = now
			}
		} else {
			// Larger drift usually means a track change; hold the lock.
			d.stableSince = -1
		}
	}

	if now-d.stage3EnterAt > finalizeAfterMs ||
		(d.stableSince >= 0 && now-d.stableSince > finalizeStableMs) {
		d.finalize()
	}
}

// finalize is the one-time cleanup into the terminal cheapest-memory state:
// only the lock and a short interval tail survive.
func (d *Detector) finalize() {
	if len(d.intervals) > cleanupKeepIntervals {
		d.intervals = append([]float64(nil), d.intervals[len(d.intervals)-cleanupKeepIntervals:]...)
	}
	d.intervalCap = cleanupKeepIntervals
	d.histogram.clear()
	d.evidence = nil
	d.finalized = true
	d.logger.Info("tempo lock finalized", logging.Fields{
		"bpm":        d.lockedBPM,
		"correction": d.correction,
	})
}

// instantBPM derives a tempo from the mean of the most recent intervals.
func (d *Detector) instantBPM() float64 {
	window := d.recentIntervals(cleanupKeepIntervals)
	if len(window) == 0 {
		return 0
	}
	mean := common.Mean(window)
	if mean <= 0 {
		return 0
	}
	return 60000.0 / mean
}

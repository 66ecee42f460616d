package groove

import (
	"math"

	"github.com/emotivekit/groove-engine/algorithms/common"
	"github.com/emotivekit/groove-engine/logging"
)

// CorrectionType records the single octave correction a session may apply.
type CorrectionType string

const (
	CorrectionNone    CorrectionType = "none"
	CorrectionHalved  CorrectionType = "halved"
	CorrectionDoubled CorrectionType = "doubled"
)

// Octave-correction thresholds, tuned on syncopated and fingerpicked source
// material. Changing any of these shifts which recordings self-correct.
const (
	evidenceWindow       = 8
	evidenceMinIntervals = 6
	maxEvidenceChecks    = 15

	alternatingScoreMin = 0.70
	pairSpreadMax       = 0.10

	patternMinChecks    = 10
	patternMinPositives = 7
	patternLockFloor    = 100

	voteRatioHalfMin  = 0.40
	voteLockFloorHalf = 150
	halfBandLow       = 65
	halfBandHigh      = 85

	steadyLockFloor    = 140
	steadyWindow       = 12
	steadyMinKept      = 8
	steadyMedianRatio  = 0.50
	steadyDeviationMax = 0.05

	doubleIntervalFloorMs = 900.0
	voteRatioDoubleMin    = 0.50
	doubleLockCeil        = 75
)

// alternatingScore returns the fraction of adjacent interval pairs that
// straddle the window mean, the long-short-long-short signature of a
// subdivided beat.
func alternatingScore(intervals []float64) float64 {
	if len(intervals) < 2 {
		return 0
	}
	mean := common.Mean(intervals)
	straddles := 0
	for i := 0; i+1 < len(intervals); i++ {
		if (intervals[i]-mean)*(intervals[i+1]-mean) < 0 {
			straddles++
		}
	}
	return float64(straddles) / float64(len(intervals)-1)
}

// pairSums sums disjoint adjacent interval pairs. When onsets subdivide the
// beat the pair sums are the real beat period.
func pairSums(intervals []float64) []float64 {
	sums := make([]float64, 0, len(intervals)/2)
	for i := 0; i+1 < len(intervals); i += 2 {
		sums = append(sums, intervals[i]+intervals[i+1])
	}
	return sums
}

// pairSpread is the relative spread of the pair sums. Low spread with a high
// alternating score marks a subdivision.
func pairSpread(intervals []float64) float64 {
	sums := pairSums(intervals)
	if len(sums) < 2 {
		return 1.0
	}
	return common.CoefficientOfVariation(sums)
}

// subdivisionCheck is one unit of pattern evidence over a recent window.
func subdivisionCheck(intervals []float64) bool {
	return alternatingScore(intervals) > alternatingScoreMin &&
		pairSpread(intervals) < pairSpreadMax
}

// recordEvidence appends one subdivision check to the rolling evidence
// buffer once enough intervals exist to judge.
func (d *Detector) recordEvidence() {
	window := d.recentIntervals(evidenceWindow)
	if len(window) < evidenceMinIntervals {
		return
	}
	d.evidence = append(d.evidence, subdivisionCheck(window))
	if len(d.evidence) > maxEvidenceChecks {
		d.evidence = d.evidence[1:]
	}
}

// maybeCorrect applies at most one octave correction per session, first
// halving trigger satisfied wins, then the doubling trigger.
func (d *Detector) maybeCorrect(now float64) {
	if d.corrected {
		return
	}
	if bpm, ok := d.halveTarget(); ok {
		d.applyCorrection(now, CorrectionHalved, bpm)
		return
	}
	if bpm, ok := d.doubleTarget(); ok {
		d.applyCorrection(now, CorrectionDoubled, bpm)
	}
}

// halveTarget evaluates the three independent halving triggers in order.
func (d *Detector) halveTarget() (int, bool) {
	// Pattern evidence: a sustained alternating long/short interval pattern
	// whose summed pairs are steady. The corrected tempo comes from the
	// pair-sum period itself, which stays right even when vote folding has
	// already pulled the raw tempo down an octave.
	if len(d.evidence) >= patternMinChecks && d.lockedBPM > patternLockFloor {
		positives := 0
		for _, p := range d.evidence {
			if p {
				positives++
			}
		}
		if positives >= patternMinPositives {
			if mean := common.Mean(pairSums(d.recentIntervals(evidenceWindow))); mean > 0 {
				return d.histogram.foldToInt(60000.0 / mean), true
			}
		}
	}

	half := int(math.Round(float64(d.lockedBPM) / 2))
	inBand := half >= halfBandLow && half <= halfBandHigh

	// Vote evidence: the half-tempo cluster rivals the winner.
	if d.lockedBPM > voteLockFloorHalf && inBand {
		if d.histogram.clusterVotes(half) > voteRatioHalfMin*d.histogram.clusterVotes(d.lockedBPM) {
			return half, true
		}
	}

	// Consistency evidence: suspiciously metronomic fast intervals, typical
	// of fingerpicked or arpeggiated audio being double-counted.
	if d.lockedBPM > steadyLockFloor && inBand {
		kept := common.FilterNearMedian(d.recentIntervals(steadyWindow), steadyMedianRatio)
		if len(kept) >= steadyMinKept {
			mean := common.Mean(kept)
			near := 0
			for _, v := range kept {
				if mean > 0 && math.Abs(v-mean)/mean < steadyDeviationMax {
					near++
				}
			}
			if near >= steadyMinKept {
				return half, true
			}
		}
	}

	return 0, false
}

// doubleTarget checks whether the onsets undershoot the real beat: slow raw
// intervals with the doubled tempo dominating the vote.
func (d *Detector) doubleTarget() (int, bool) {
	window := d.recentIntervals(evidenceWindow)
	if len(window) == 0 {
		return 0, false
	}
	avg := common.Mean(window)
	if avg <= doubleIntervalFloorMs {
		return 0, false
	}

	double := d.histogram.foldToInt(2 * 60000.0 / avg)

	// When vote folding already brought the slow raw tempo up an octave the
	// winning cluster is the doubled tempo itself.
	foldedUp := absInt(double-d.lockedBPM) <= 2
	if d.lockedBPM >= doubleLockCeil && !foldedUp {
		return 0, false
	}
	if d.histogram.clusterVotes(double) > voteRatioDoubleMin*d.histogram.clusterVotes(d.lockedBPM) {
		return double, true
	}
	return 0, false
}

func (d *Detector) applyCorrection(now float64, kind CorrectionType, bpm int) {
	previous := d.lockedBPM
	d.lockedBPM = bpm
	d.correction = kind
	d.corrected = true
	if d.stage == StageInitialLock {
		d.stage = StageRefinement
	}
	d.logger.Info("octave correction applied", logging.Fields{
		"correction": kind,
		"from":       previous,
		"to":         bpm,
		"at_ms":      now,
	})
}

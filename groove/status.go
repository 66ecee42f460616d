package groove

// Candidate is one ranked tempo hypothesis from the vote histogram.
type Candidate struct {
	BPM      int     `json:"bpm"`
	Score    float64 `json:"score"`
	Interval float64 `json:"interval_ms"`
}

// Status is a read-only snapshot of the detector. Taking it has no side
// effects; repeated calls without an intervening ProcessPeak are identical.
type Status struct {
	BPM              int            `json:"bpm"`
	Confidence       float64        `json:"confidence"`
	Locked           bool           `json:"locked"`
	LockStage        LockStage      `json:"lock_stage"`
	Correction       CorrectionType `json:"correction"`
	Finalized        bool           `json:"finalized"`
	GrooveConfidence float64        `json:"groove_confidence"`
	PeakCount        int            `json:"peak_count"`
	IntervalCount    int            `json:"interval_count"`
	SkippedPeaks     int            `json:"skipped_peaks"`
	SkippedIntervals int            `json:"skipped_intervals"`
	TopCandidates    []Candidate    `json:"top_candidates"`
}

// BPM returns the locked tempo once locked, the current leading estimate
// while detecting, or 0 before any evidence arrives.
func (d *Detector) BPM() int {
	if d.stage >= StageInitialLock {
		return d.lockedBPM
	}
	return d.currentBPM
}

// Locked reports whether a provisional or better lock exists.
func (d *Detector) Locked() bool {
	return d.stage >= StageInitialLock
}

// GrooveConfidence returns the smoothed animation-intensity scalar in
// [0.15, 1.0]. It never decreases within a session.
func (d *Detector) GrooveConfidence() float64 {
	return d.smoother.current()
}

// Stage returns the current lock stage.
func (d *Detector) Stage() LockStage {
	return d.stage
}

// Status snapshots the full observable state, including the top three tempo
// candidates.
func (d *Detector) Status() Status {
	return Status{
		BPM:              d.BPM(),
		Confidence:       d.confidence,
		Locked:           d.Locked(),
		LockStage:        d.stage,
		Correction:       d.correction,
		Finalized:        d.finalized,
		GrooveConfidence: d.smoother.current(),
		PeakCount:        d.peakCount,
		IntervalCount:    len(d.intervals),
		SkippedPeaks:     d.skippedPeaks,
		SkippedIntervals: d.skippedIntervals,
		TopCandidates:    d.TopCandidates(3),
	}
}

// TopCandidates returns up to n tempo hypotheses ranked by vote weight
// descending.
func (d *Detector) TopCandidates(n int) []Candidate {
	return d.histogram.topCandidates(n)
}

// DebugLog returns the accumulated diagnostic snapshots, oldest first.
func (d *Detector) DebugLog() string {
	return d.diag.String()
}

// ClearDebugLog discards all retained diagnostic snapshots.
func (d *Detector) ClearDebugLog() {
	d.diag.clear()
}

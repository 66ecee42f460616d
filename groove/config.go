package groove

// DetectorConfig holds the tunable surface of the detector. The corrector and
// lock-stage thresholds are deliberately fixed package constants: they were
// tuned together and changing one in isolation breaks the staged convergence.
type DetectorConfig struct {
	// Supported tempo band. Raw tempi outside it are octave-folded in.
	MinBPM int `json:"min_bpm"`
	MaxBPM int `json:"max_bpm"`

	// Accepted inter-peak interval range in milliseconds.
	MinIntervalMs float64 `json:"min_interval_ms"`
	MaxIntervalMs float64 `json:"max_interval_ms"`

	// Capacity of the interval ring before the final-lock cleanup.
	MaxIntervals int `json:"max_intervals"`

	// Peaks weaker than this are counted and dropped.
	MinPeakStrength float64 `json:"min_peak_strength"`

	// Vote histogram forgetting: every accepted interval decays all weights
	// by VoteDecay and prunes entries below VotePruneBelow.
	VoteDecay      float64 `json:"vote_decay"`
	VotePruneBelow float64 `json:"vote_prune_below"`

	// Relative overshoot tolerated at the band edges before a raw tempo is
	// octave-folded, so borderline tempi are not destroyed.
	FoldTolerance float64 `json:"fold_tolerance"`

	// Diagnostics: one snapshot every SnapshotEvery updates, kept in a ring
	// of DiagnosticsCapacity entries. SnapshotEvery <= 0 disables snapshots.
	SnapshotEvery       int `json:"snapshot_every"`
	DiagnosticsCapacity int `json:"diagnostics_capacity"`
}

// DefaultDetectorConfig returns the tuned defaults: a 60-180 BPM band fed by
// intervals between 250ms and 2s.
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		MinBPM:              60,
		MaxBPM:              180,
		MinIntervalMs:       250,
		MaxIntervalMs:       2000,
		MaxIntervals:        40,
		MinPeakStrength:     0.1,
		VoteDecay:           0.95,
		VotePruneBelow:      0.3,
		FoldTolerance:       0.05,
		SnapshotEvery:       16,
		DiagnosticsCapacity: 64,
	}
}

package groove

import "testing"

func newTestHistogram() *voteHistogram {
	return newVoteHistogram(DefaultDetectorConfig())
}

func TestFoldKeepsEveryIntervalInBand(t *testing.T) {
	h := newTestHistogram()
	for interval := 250.0; interval <= 2000.0; interval += 10 {
		bpm := h.foldToInt(60000.0 / interval)
		if bpm < 60 || bpm > 180 {
			t.Fatalf("interval %.0fms folded to %d, outside [60, 180]", interval, bpm)
		}
	}
}

func TestFoldBoundaryTolerance(t *testing.T) {
	h := newTestHistogram()
	cases := []struct {
		raw  float64
		want int
	}{
		{185, 180}, // within the 5% overshoot, clamped instead of halved
		{190, 95},  // past the overshoot, halved
		{58, 60},   // within the undershoot, clamped instead of doubled
		{56, 112},  // past the undershoot, doubled
		{120, 120},
		{240, 120},
		{480, 120},
		{30, 60},
	}
	for _, c := range cases {
		if got := h.foldToInt(c.raw); got != c.want {
			t.Errorf("foldToInt(%.0f) = %d, want %d", c.raw, got, c.want)
		}
	}
}

func TestCastBuildsCluster(t *testing.T) {
	h := newTestHistogram()
	h.cast(500) // 120 BPM

	if w := h.votes[120]; w != 1.0 {
		t.Errorf("center weight = %.2f, want 1.0", w)
	}
	if w := h.votes[119]; w != 0.6 {
		t.Errorf("neighbor weight = %.2f, want 0.6", w)
	}
	if w := h.votes[122]; w != 0.14 {
		t.Errorf("outer weight = %.2f, want 0.14", w)
	}
	if got := h.clusterVotes(120); got < 2.47 || got > 2.49 {
		t.Errorf("cluster votes = %.4f, want 2.48", got)
	}
}

func TestCastClipsAtBandEdge(t *testing.T) {
	h := newTestHistogram()
	h.cast(1000) // 60 BPM, lower edge

	if _, ok := h.votes[59]; ok {
		t.Error("votes must not land below MinBPM")
	}
	if _, ok := h.votes[58]; ok {
		t.Error("votes must not land below MinBPM")
	}
	if w := h.votes[60]; w != 1.0 {
		t.Errorf("edge center weight = %.2f, want 1.0", w)
	}
}

func TestDecayPrunesToEmpty(t *testing.T) {
	h := newTestHistogram()
	h.cast(500)

	for i := 0; i < 30; i++ {
		h.decay()
	}
	if h.size() != 0 {
		t.Errorf("histogram size = %d after sustained decay, want 0", h.size())
	}
}

func TestWinnerPrefersRecentVotes(t *testing.T) {
	h := newTestHistogram()
	for i := 0; i < 5; i++ {
		h.decay()
		h.cast(750) // 80 BPM
	}
	h.decay()
	h.cast(500) // one fresh 120 BPM vote

	winner, _, ok := h.winner()
	if !ok || winner != 80 {
		t.Errorf("winner = %d (ok=%v), want the accumulated 80", winner, ok)
	}
	if h.clusterVotes(80) <= h.clusterVotes(120) {
		t.Error("accumulated cluster should outweigh a single fresh cast")
	}
	if total := h.totalVotes(); total <= h.clusterVotes(80) {
		t.Errorf("total votes %.2f should exceed the winning cluster %.2f", total, h.clusterVotes(80))
	}
}

func TestTopCandidatesOrdering(t *testing.T) {
	h := newTestHistogram()
	h.cast(500) // 120
	h.cast(500)
	h.cast(750) // 80

	top := h.topCandidates(3)
	if len(top) != 3 {
		t.Fatalf("got %d candidates, want 3", len(top))
	}
	if top[0].BPM != 120 {
		t.Errorf("leading candidate = %d, want 120", top[0].BPM)
	}
	for i := 1; i < len(top); i++ {
		if top[i].Score > top[i-1].Score {
			t.Errorf("candidates not sorted by score: %+v", top)
		}
	}
	if top[0].Interval != 500 {
		t.Errorf("candidate interval = %.1f, want 500", top[0].Interval)
	}
}

func TestSeedBiasesWithoutLocking(t *testing.T) {
	h := newTestHistogram()
	h.seed(90)

	winner, weight, ok := h.winner()
	if !ok || winner != 90 {
		t.Fatalf("winner = %d (ok=%v), want 90", winner, ok)
	}
	if weight != seedVoteScale {
		t.Errorf("seed weight = %.2f, want %.2f", weight, seedVoteScale)
	}
}

package groove

import "testing"

func TestAlternatingScore(t *testing.T) {
	alternating := []float64{350, 400, 350, 400, 350, 400, 350, 400}
	if got := alternatingScore(alternating); got != 1.0 {
		t.Errorf("alternatingScore(long/short) = %.2f, want 1.0", got)
	}

	constant := []float64{500, 500, 500, 500, 500, 500, 500, 500}
	if got := alternatingScore(constant); got != 0.0 {
		t.Errorf("alternatingScore(constant) = %.2f, want 0.0", got)
	}

	if got := alternatingScore([]float64{500}); got != 0.0 {
		t.Errorf("alternatingScore(single) = %.2f, want 0.0", got)
	}
}

func TestPairSums(t *testing.T) {
	sums := pairSums([]float64{350, 400, 360, 390, 340, 410})
	want := []float64{750, 750, 750}
	if len(sums) != len(want) {
		t.Fatalf("got %d pair sums, want %d", len(sums), len(want))
	}
	for i := range want {
		if sums[i] != want[i] {
			t.Errorf("pair sum %d = %.1f, want %.1f", i, sums[i], want[i])
		}
	}
}

func TestPairSpread(t *testing.T) {
	subdivided := []float64{350, 400, 360, 390, 340, 410, 355, 395}
	if got := pairSpread(subdivided); got >= pairSpreadMax {
		t.Errorf("pairSpread(subdivided) = %.3f, want < %.2f", got, pairSpreadMax)
	}

	scattered := []float64{300, 900, 400, 1200, 350, 600, 500, 1500}
	if got := pairSpread(scattered); got <= pairSpreadMax {
		t.Errorf("pairSpread(scattered) = %.3f, want > %.2f", got, pairSpreadMax)
	}

	if got := pairSpread([]float64{350, 400}); got != 1.0 {
		t.Errorf("pairSpread with one pair = %.2f, want 1.0", got)
	}
}

func TestSubdivisionCheck(t *testing.T) {
	subdivided := []float64{350, 400, 350, 400, 350, 400, 350, 400}
	if !subdivisionCheck(subdivided) {
		t.Error("alternating window with steady pair sums must read as subdivided")
	}

	constant := []float64{500, 500, 500, 500, 500, 500, 500, 500}
	if subdivisionCheck(constant) {
		t.Error("constant window must not read as subdivided")
	}

	// Alternating shape but drifting pair sums.
	drifting := []float64{300, 350, 340, 420, 390, 480, 450, 560}
	if subdivisionCheck(drifting) {
		t.Error("drifting pair sums must not read as subdivided")
	}
}

func TestSingleCorrectionPerSession(t *testing.T) {
	d := NewDetector(nil)
	last := feedPattern(d, []float64{350, 400}, 0, 0.8, 30)
	if d.Status().Correction != CorrectionHalved {
		t.Fatalf("setup: correction = %s, want halved", d.Status().Correction)
	}
	bpm := d.BPM()

	// A slow tail that would satisfy the doubling trigger must be ignored
	// now that the session's one correction is spent.
	feedPeriodic(d, 1200, last+1200, 0.8, 12)

	st := d.Status()
	if st.Correction != CorrectionHalved {
		t.Errorf("correction changed to %s after the first one landed", st.Correction)
	}
	if st.BPM < bpm-3 || st.BPM > bpm+3 {
		t.Errorf("BPM moved from %d to %d after the correction window closed", bpm, st.BPM)
	}
}

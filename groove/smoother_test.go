package groove

import "testing"

func TestSmootherEasesTowardStageTarget(t *testing.T) {
	g := newGrooveSmoother()
	if g.current() != grooveFloor {
		t.Fatalf("initial value = %.3f, want %.2f", g.current(), grooveFloor)
	}

	prev := g.current()
	for i := 0; i < 200; i++ {
		v := g.update(StageInitialLock, false)
		if v < prev {
			t.Fatalf("value decreased from %.4f to %.4f", prev, v)
		}
		prev = v
	}
	target := grooveTargets[StageInitialLock]
	if prev < target-0.01 || prev > target {
		t.Errorf("settled at %.4f, want just under %.2f", prev, target)
	}
}

func TestSmootherIgnoresStageRegression(t *testing.T) {
	g := newGrooveSmoother()
	for i := 0; i < 100; i++ {
		g.update(StageRefinement, false)
	}
	settled := g.current()

	// A lower target must not pull the value back down.
	if v := g.update(StageDetecting, false); v < settled {
		t.Errorf("value dropped from %.4f to %.4f on a lower target", settled, v)
	}
}

func TestSmootherFinalizedReachesFull(t *testing.T) {
	g := newGrooveSmoother()
	for i := 0; i < 300; i++ {
		g.update(StageFinalLock, true)
	}
	if v := g.current(); v < 0.99 {
		t.Errorf("finalized value = %.4f, want ~1.0", v)
	}
}

func TestSmootherReset(t *testing.T) {
	g := newGrooveSmoother()
	for i := 0; i < 50; i++ {
		g.update(StageFinalLock, true)
	}
	g.reset()
	if g.current() != grooveFloor {
		t.Errorf("value after reset = %.3f, want %.2f", g.current(), grooveFloor)
	}
}

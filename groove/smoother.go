package groove

// Groove confidence targets per lock stage. The finalized lock eases all the
// way to full intensity.
var grooveTargets = [4]float64{0.15, 0.40, 0.65, 0.85}

const (
	grooveFloor     = 0.15
	grooveFinalized = 1.0
	grooveRate      = 0.08
)

// grooveSmoother eases the animation-intensity scalar toward the stage
// target. Updates apply only when they raise the value, so dependent
// animation never shows an energy dip while the stage machine hesitates.
type grooveSmoother struct {
	value float64
}

func newGrooveSmoother() *grooveSmoother {
	return &grooveSmoother{value: grooveFloor}
}

func (g *grooveSmoother) update(stage LockStage, finalized bool) float64 {
	target := grooveFinalized
	if !finalized {
		target = grooveTargets[stage]
	}
	next := g.value + (target-g.value)*grooveRate
	if next > g.value {
		g.value = next
	}
	return g.value
}

func (g *grooveSmoother) current() float64 {
	return g.value
}

func (g *grooveSmoother) reset() {
	g.value = grooveFloor
}

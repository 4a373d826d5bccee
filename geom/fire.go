package geom

// FireParams controls the ally-safety rules of a shot.
type FireParams struct {
	MinAttackAngle float64 // degrees; allies inside this cone and nearer the target block the shot
	BlastFactor    float64 // multiple of an ally's radius that counts as a near miss
}

// DefaultFireParams matches the stock tactics.
var DefaultFireParams = FireParams{MinAttackAngle: 10, BlastFactor: 1.5}

// LineOfFireClear reports whether firing from `from` at target endangers no
// ally. allies must already exclude the shooter and dead units.
//
// An ally blocks the shot when it sits within BlastFactor × its radius of the
// firing point, or when it is closer to the target than the firing point and
// the angle between (target − from) and (target − ally) is below
// MinAttackAngle. Degenerate geometry counts as blocked.
func LineOfFireClear(from, target Vec, allies []Circle, p FireParams) bool {
	shot := target.Sub(from)
	if shot.IsZero() {
		return false
	}
	shotLen := shot.Len()
	for _, a := range allies {
		if a.Center.Dist(from) < p.BlastFactor*a.Radius {
			return false
		}
		toAlly := target.Sub(a.Center)
		angle, err := AngleBetween(shot, toAlly)
		if err != nil {
			// ally sits on the target itself
			return false
		}
		if angle < p.MinAttackAngle && toAlly.Len() < shotLen {
			return false
		}
	}
	return true
}

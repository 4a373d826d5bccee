package geom

import (
	"errors"
	"math"
	"math/rand"
)

// ErrNoSafePosition means every ring and sampled angle around the enemy was
// either outside the field or endangered an ally.
var ErrNoSafePosition = errors.New("no safe attack position")

// SearchParams bounds the attack-position search.
type SearchParams struct {
	PreferredRange  float64 // first ring radius when the shooter is closer than this
	MinRange        float64 // innermost ring radius
	RingStep        float64 // radius decrement between rings
	Samples         int     // angular samples per ring
	MaxPerturbation float64 // degrees; widest rotation applied to the approach direction
	Margin          float64 // clearance kept from the field edges
}

// SearchAttackPosition scans concentric rings around enemy, from
// max(current distance, PreferredRange) down to MinRange, and returns the
// first sampled point that is strictly inside bounds and has a clear line of
// fire. Each sample rotates the shooter→enemy direction by a random angle
// whose spread widens with the sample index, so early samples stay close to
// the current approach.
//
// rng must not be nil; a fixed seed yields a fixed answer.
func SearchAttackPosition(shooter, enemy Vec, allies []Circle, bounds Rect, fp FireParams, sp SearchParams, rng *rand.Rand) (Vec, error) {
	dir, err := enemy.Sub(shooter).Normalize()
	if err != nil {
		// shooter stands on the enemy; any approach direction will do
		dir = Vec{X: 1}
	}
	samples := max(sp.Samples, 1)
	step := sp.RingStep
	if step <= 0 {
		step = math.Max(sp.PreferredRange-sp.MinRange, 1)
	}

	for r := math.Max(shooter.Dist(enemy), sp.PreferredRange); r >= sp.MinRange; r -= step {
		for k := range samples {
			spread := sp.MaxPerturbation * float64(k+1) / float64(samples)
			delta := (rng.Float64()*2 - 1) * spread
			p := enemy.Sub(dir.Rotate(delta).Scale(r))
			if !bounds.ContainsStrict(p, sp.Margin) {
				continue
			}
			if LineOfFireClear(p, enemy, allies, fp) {
				return p, nil
			}
		}
	}
	return Vec{}, ErrNoSafePosition
}

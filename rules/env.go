package rules

import (
	"math"

	"github.com/nstehr/vimy/drone-core/model"
)

// Env wraps one unit's status and the field, and exposes helper methods
// callable from expr conditions.
type Env struct {
	State   *model.Snapshot
	Self    model.Unit
	Tactics Tactics
}

func (e Env) HealthRatio() float64 {
	return clamp(e.Self.Health, 0, 1)
}

func (e Env) PayloadEmpty() bool {
	return e.Self.IsEmpty()
}

func (e Env) FillRatio() float64 {
	return e.Self.FillRatio()
}

// SearchRadius prefers the host's per-tick nearby radius over the configured one.
func (e Env) SearchRadius() float64 {
	if e.State != nil && e.State.NearbyRadius > 0 {
		return e.State.NearbyRadius
	}
	return e.Tactics.SearchRadius
}

func (e Env) EnemyWithin(radius float64) bool {
	_, ok := e.State.NearestEnemyWithin(e.Self.Pos, radius)
	return ok
}

func (e Env) EnemiesAlive() bool {
	return len(e.State.LiveEnemies()) > 0
}

func (e Env) EnemyBaseAlive() bool {
	return len(e.State.LiveEnemyBases()) > 0
}

func (e Env) ResourcesRemain() bool {
	return e.State.ResourcesRemain()
}

// DistanceHome is exposed for custom tactics conditions.
func (e Env) DistanceHome() float64 {
	if e.State == nil {
		return math.Inf(1)
	}
	return e.Self.Pos.Dist(e.State.Home.Pos)
}

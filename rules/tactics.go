package rules

import "github.com/nstehr/vimy/drone-core/geom"

// Tactics holds every tunable threshold of the decision core. Loaded from
// the [tactics] table of the config file; Validate clamps bad input.
type Tactics struct {
	RetreatHealth    float64 `toml:"retreat_health"`    // white flag at or below this health ratio
	SearchRadius     float64 `toml:"search_radius"`     // enemies inside this radius pull empty units into combat
	FullRatio        float64 `toml:"full_ratio"`        // head home once this full
	UnitCapacity     float64 `toml:"unit_capacity"`     // sizes per-source queues
	MinAttackAngle   float64 `toml:"min_attack_angle"`  // degrees
	BlastFactor      float64 `toml:"blast_factor"`      // × ally radius
	PreferredRange   float64 `toml:"preferred_range"`   // first search ring
	MinRange         float64 `toml:"min_range"`         // last search ring
	RingStep         float64 `toml:"ring_step"`         // ring decrement
	Samples          int     `toml:"samples"`           // angles per ring
	MaxPerturbation  float64 `toml:"max_perturbation"`  // degrees
	ArrivalRadius    float64 `toml:"arrival_radius"`    // slack when deciding "at base" / "at target"
	WaypointDistance float64 `toml:"waypoint_distance"` // half-way checkpoints beyond this; 0 disables
	Seed             int64   `toml:"seed"`              // 0 seeds from the clock
}

// DefaultTactics returns the stock thresholds.
func DefaultTactics() Tactics {
	return Tactics{
		RetreatHealth:   0.8,
		SearchRadius:    580,
		FullRatio:       0.9,
		UnitCapacity:    100,
		MinAttackAngle:  10,
		BlastFactor:     1.5,
		PreferredRange:  250,
		MinRange:        60,
		RingStep:        40,
		Samples:         12,
		MaxPerturbation: 30,
		ArrivalRadius:   20,
	}
}

// Validate clamps all values to their valid ranges.
func (t *Tactics) Validate() {
	t.RetreatHealth = clamp(t.RetreatHealth, 0, 1)
	t.SearchRadius = clamp(t.SearchRadius, 0, 1e5)
	t.FullRatio = clamp(t.FullRatio, 0.1, 1)
	t.UnitCapacity = clamp(t.UnitCapacity, 1, 1e6)
	t.MinAttackAngle = clamp(t.MinAttackAngle, 0, 90)
	t.BlastFactor = clamp(t.BlastFactor, 1, 5)
	t.MinRange = clamp(t.MinRange, 0, 1e5)
	t.PreferredRange = clamp(t.PreferredRange, t.MinRange, 1e5)
	t.RingStep = clamp(t.RingStep, 1, 1e5)
	t.Samples = clampInt(t.Samples, 1, 64)
	t.MaxPerturbation = clamp(t.MaxPerturbation, 0, 180)
	t.ArrivalRadius = clamp(t.ArrivalRadius, 0, 1e4)
	t.WaypointDistance = clamp(t.WaypointDistance, 0, 1e5)
}

func (t Tactics) FireParams() geom.FireParams {
	return geom.FireParams{MinAttackAngle: t.MinAttackAngle, BlastFactor: t.BlastFactor}
}

// SearchParams keeps margin clearance from the field edges, normally the
// shooter's radius.
func (t Tactics) SearchParams(margin float64) geom.SearchParams {
	return geom.SearchParams{
		PreferredRange:  t.PreferredRange,
		MinRange:        t.MinRange,
		RingStep:        t.RingStep,
		Samples:         t.Samples,
		MaxPerturbation: t.MaxPerturbation,
		Margin:          margin,
	}
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

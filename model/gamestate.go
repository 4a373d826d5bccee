package model

import "github.com/nstehr/vimy/drone-core/geom"

// Mode is the behavior variant a unit is currently running.
type Mode string

const (
	ModeHarvest Mode = "harvest"
	ModeRetreat Mode = "retreat" // white flag
	ModeCombat  Mode = "combat"
)

// TargetKind distinguishes the things a unit can move to, load from or shoot.
type TargetKind string

const (
	KindAsteroid TargetKind = "asteroid" // depletable resource source
	KindWreck    TargetKind = "wreck"    // destroyed unit with residual payload
	KindBase     TargetKind = "base"     // enemy base, alive or destroyed
	KindUnit     TargetKind = "unit"     // living enemy unit
)

// TargetRef identifies a target across snapshots.
type TargetRef struct {
	Kind TargetKind `json:"kind" yaml:"kind"`
	ID   int        `json:"id" yaml:"id"`
}

func (r TargetRef) IsZero() bool { return r.Kind == "" }

// Snapshot is the host's view of the field at the moment a unit event fires.
// It is read-only to the engine.
type Snapshot struct {
	Tick         int       `json:"tick" yaml:"tick"`
	Field        geom.Rect `json:"field" yaml:"field"`
	Home         Base      `json:"home" yaml:"home"`
	Units        []Unit    `json:"units" yaml:"units"` // allies, including the acting unit
	Enemies      []Unit    `json:"enemies" yaml:"enemies"`
	EnemyBases   []Base    `json:"enemyBases" yaml:"enemy_bases"`
	Sources      []Source  `json:"sources" yaml:"sources"`
	NearbyRadius float64   `json:"nearbyRadius" yaml:"nearby_radius"`
}

type Unit struct {
	ID       int      `json:"id" yaml:"id"`
	Pos      geom.Vec `json:"pos" yaml:"pos"`
	Health   float64  `json:"health" yaml:"health"` // fraction of max shield/hull, 0–1
	Payload  float64  `json:"payload" yaml:"payload"`
	Capacity float64  `json:"capacity" yaml:"capacity"`
	Radius   float64  `json:"radius" yaml:"radius"`
	Alive    bool     `json:"alive" yaml:"alive"`
}

func (u Unit) IsEmpty() bool { return u.Payload <= 0 }

// FillRatio is payload over capacity; zero-capacity units count as full.
func (u Unit) FillRatio() float64 {
	if u.Capacity <= 0 {
		return 1
	}
	return u.Payload / u.Capacity
}

// FreeSpace is how much more the unit can carry.
func (u Unit) FreeSpace() float64 {
	return max(u.Capacity-u.Payload, 0)
}

type Source struct {
	ID       int      `json:"id" yaml:"id"`
	Pos      geom.Vec `json:"pos" yaml:"pos"`
	Payload  float64  `json:"payload" yaml:"payload"`
	Radius   float64  `json:"radius" yaml:"radius"`
	Depleted bool     `json:"depleted" yaml:"depleted"`
}

func (s Source) IsEmpty() bool { return s.Depleted || s.Payload <= 0 }

type Base struct {
	ID      int      `json:"id" yaml:"id"`
	Pos     geom.Vec `json:"pos" yaml:"pos"`
	Payload float64  `json:"payload" yaml:"payload"`
	Radius  float64  `json:"radius" yaml:"radius"`
	Alive   bool     `json:"alive" yaml:"alive"`
}

// Target is anything a harvester can load from, flattened from the
// snapshot's sources, wrecks and destroyed bases.
type Target struct {
	Ref     TargetRef
	Pos     geom.Vec
	Payload float64
	Radius  float64
}

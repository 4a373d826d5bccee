package model

import (
	"math"

	"github.com/nstehr/vimy/drone-core/geom"
)

// Unit returns the allied unit with the given id.
func (s *Snapshot) Unit(id int) (Unit, bool) {
	for _, u := range s.Units {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// Allies returns living allied units other than exceptID.
func (s *Snapshot) Allies(exceptID int) []Unit {
	var out []Unit
	for _, u := range s.Units {
		if u.Alive && u.ID != exceptID {
			out = append(out, u)
		}
	}
	return out
}

// AllyCircles is Allies shaped for line-of-fire checks.
func (s *Snapshot) AllyCircles(exceptID int) []geom.Circle {
	allies := s.Allies(exceptID)
	out := make([]geom.Circle, len(allies))
	for i, u := range allies {
		out[i] = geom.Circle{Center: u.Pos, Radius: u.Radius}
	}
	return out
}

// AliveIDs is the set of living allied unit ids.
func (s *Snapshot) AliveIDs() map[int]bool {
	ids := make(map[int]bool, len(s.Units))
	for _, u := range s.Units {
		if u.Alive {
			ids[u.ID] = true
		}
	}
	return ids
}

func (s *Snapshot) LiveEnemies() []Unit {
	var out []Unit
	for _, e := range s.Enemies {
		if e.Alive {
			out = append(out, e)
		}
	}
	return out
}

func (s *Snapshot) LiveEnemyBases() []Base {
	var out []Base
	for _, b := range s.EnemyBases {
		if b.Alive {
			out = append(out, b)
		}
	}
	return out
}

// Harvestable lists every target that still holds payload: asteroids,
// wrecks of destroyed units on either side, and destroyed enemy bases.
func (s *Snapshot) Harvestable() []Target {
	var out []Target
	for _, src := range s.Sources {
		if src.IsEmpty() {
			continue
		}
		out = append(out, Target{Ref: TargetRef{KindAsteroid, src.ID}, Pos: src.Pos, Payload: src.Payload, Radius: src.Radius})
	}
	for _, list := range [][]Unit{s.Enemies, s.Units} {
		for _, u := range list {
			if u.Alive || u.Payload <= 0 {
				continue
			}
			out = append(out, Target{Ref: TargetRef{KindWreck, u.ID}, Pos: u.Pos, Payload: u.Payload, Radius: u.Radius})
		}
	}
	for _, b := range s.EnemyBases {
		if b.Alive || b.Payload <= 0 {
			continue
		}
		out = append(out, Target{Ref: TargetRef{KindBase, b.ID}, Pos: b.Pos, Payload: b.Payload, Radius: b.Radius})
	}
	return out
}

// ResourcesRemain reports whether anything on the field can still be harvested.
func (s *Snapshot) ResourcesRemain() bool {
	return len(s.Harvestable()) > 0
}

// Resolve finds the current state of a target. Harvest kinds resolve only
// while they still hold payload; combat kinds only while alive.
func (s *Snapshot) Resolve(ref TargetRef) (Target, bool) {
	switch ref.Kind {
	case KindUnit:
		for _, e := range s.Enemies {
			if e.ID == ref.ID && e.Alive {
				return Target{Ref: ref, Pos: e.Pos, Payload: e.Payload, Radius: e.Radius}, true
			}
		}
		return Target{}, false
	case KindBase:
		for _, b := range s.EnemyBases {
			if b.ID == ref.ID && (b.Alive || b.Payload > 0) {
				return Target{Ref: ref, Pos: b.Pos, Payload: b.Payload, Radius: b.Radius}, true
			}
		}
		return Target{}, false
	}
	for _, t := range s.Harvestable() {
		if t.Ref == ref {
			return t, true
		}
	}
	return Target{}, false
}

// ResolveHostile is Resolve restricted to things that can still be shot:
// living enemy units and living enemy bases.
func (s *Snapshot) ResolveHostile(ref TargetRef) (Target, bool) {
	switch ref.Kind {
	case KindUnit:
		return s.Resolve(ref)
	case KindBase:
		for _, b := range s.EnemyBases {
			if b.ID == ref.ID && b.Alive {
				return Target{Ref: ref, Pos: b.Pos, Payload: b.Payload, Radius: b.Radius}, true
			}
		}
	}
	return Target{}, false
}

// NearestEnemyWithin returns the closest living enemy unit within radius of pos.
func (s *Snapshot) NearestEnemyWithin(pos geom.Vec, radius float64) (Unit, bool) {
	var nearest Unit
	found := false
	best := math.MaxFloat64
	for _, e := range s.Enemies {
		if !e.Alive {
			continue
		}
		d := pos.Dist(e.Pos)
		if d <= radius && d < best {
			best = d
			nearest = e
			found = true
		}
	}
	return nearest, found
}

// NearestEnemy returns the closest living enemy unit anywhere on the field.
func (s *Snapshot) NearestEnemy(pos geom.Vec) (Unit, bool) {
	return s.NearestEnemyWithin(pos, math.Inf(1))
}

// NearestEnemyBase returns the closest living enemy base.
func (s *Snapshot) NearestEnemyBase(pos geom.Vec) (Base, bool) {
	var nearest Base
	found := false
	best := math.MaxFloat64
	for _, b := range s.EnemyBases {
		if !b.Alive {
			continue
		}
		if d := pos.Dist(b.Pos); d < best {
			best = d
			nearest = b
			found = true
		}
	}
	return nearest, found
}

// TeamEmpty reports whether every living ally has unloaded.
func (s *Snapshot) TeamEmpty() bool {
	for _, u := range s.Units {
		if u.Alive && !u.IsEmpty() {
			return false
		}
	}
	return true
}

// Near reports whether a is within tolerance of something at b with the
// given body radius.
func Near(a, b geom.Vec, radius, tolerance float64) bool {
	return a.Dist(b) <= radius+tolerance
}

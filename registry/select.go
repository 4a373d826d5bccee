package registry

import (
	"cmp"
	"slices"

	"github.com/nstehr/vimy/drone-core/model"
)

// Policy orders candidate targets.
type Policy int

const (
	// PolicyNearest picks the closest eligible target. Default everywhere.
	PolicyNearest Policy = iota
	// PolicyRichest picks the fullest eligible target. Used right after a
	// full unload, when throughput matters more than travel.
	PolicyRichest
	// PolicySpread prefers targets nobody is working yet, nearest first.
	// Used on spawn so a fresh team fans out across the field.
	PolicySpread
)

func (p Policy) String() string {
	switch p {
	case PolicyRichest:
		return "richest"
	case PolicySpread:
		return "spread"
	default:
		return "nearest"
	}
}

// eligible reports whether u could claim t right now.
func (r *Registry) eligible(u model.Unit, t model.Target) bool {
	if r.Holds(u.ID, t.Ref) {
		return true
	}
	switch t.Ref.Kind {
	case model.KindAsteroid:
		q, ok := r.queues[t.Ref.ID]
		if !ok {
			return r.maxQueue(t.Payload) > 0
		}
		return len(q.assignees) < q.maxQueue && q.future > 0
	case model.KindWreck:
		_, taken := r.occupied[t.Ref]
		return !taken
	case model.KindBase:
		return true
	}
	return false
}

// workers is how many units already work t, for the spread policy.
func (r *Registry) workers(t model.Target) int {
	switch t.Ref.Kind {
	case model.KindAsteroid:
		if q, ok := r.queues[t.Ref.ID]; ok {
			return len(q.assignees)
		}
	case model.KindWreck:
		if _, ok := r.occupied[t.Ref]; ok {
			return 1
		}
	}
	return 0
}

// Candidates returns every target u could claim, best first under policy.
// Ties are broken by target id ascending, then kind, so the order is stable.
func (r *Registry) Candidates(u model.Unit, snap *model.Snapshot, policy Policy) []model.Target {
	var out []model.Target
	for _, t := range snap.Harvestable() {
		if r.eligible(u, t) {
			out = append(out, t)
		}
	}

	byID := func(a, b model.Target) int {
		return cmp.Or(cmp.Compare(a.Ref.ID, b.Ref.ID), cmp.Compare(a.Ref.Kind, b.Ref.Kind))
	}
	byDistance := func(a, b model.Target) int {
		return cmp.Or(cmp.Compare(u.Pos.Dist(a.Pos), u.Pos.Dist(b.Pos)), byID(a, b))
	}

	switch policy {
	case PolicyRichest:
		slices.SortStableFunc(out, func(a, b model.Target) int {
			return cmp.Or(cmp.Compare(b.Payload, a.Payload), byID(a, b))
		})
	case PolicySpread:
		slices.SortStableFunc(out, func(a, b model.Target) int {
			return cmp.Or(cmp.Compare(r.workers(a), r.workers(b)), byDistance(a, b))
		})
	default:
		slices.SortStableFunc(out, byDistance)
	}
	return out
}

// Peek returns the best candidate without claiming it.
func (r *Registry) Peek(u model.Unit, snap *model.Snapshot, policy Policy) (model.Target, bool) {
	c := r.Candidates(u, snap, policy)
	if len(c) == 0 {
		return model.Target{}, false
	}
	return c[0], true
}

// Claim reserves t for u according to its kind. Destroyed bases are shared,
// so claiming one only releases whatever u held before.
func (r *Registry) Claim(u model.Unit, t model.Target) bool {
	switch t.Ref.Kind {
	case model.KindAsteroid:
		return r.ClaimResource(u, model.Source{ID: t.Ref.ID, Pos: t.Pos, Payload: t.Payload, Radius: t.Radius})
	case model.KindWreck:
		return r.ClaimExclusive(u, t.Ref)
	case model.KindBase:
		r.Release(u.ID)
		return true
	}
	return false
}

// Acquire claims the best target u can get under policy.
func (r *Registry) Acquire(u model.Unit, snap *model.Snapshot, policy Policy) (model.Target, bool) {
	for _, t := range r.Candidates(u, snap, policy) {
		if r.Claim(u, t) {
			return t, true
		}
	}
	return model.Target{}, false
}

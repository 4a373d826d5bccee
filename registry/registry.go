package registry

import (
	"log/slog"
	"math"
	"slices"

	"github.com/nstehr/vimy/drone-core/model"
)

// queue tracks the units working one asteroid. Each assignee carries the
// amount it reserved when it claimed (its free space at the time).
type queue struct {
	maxQueue  int
	observed  float64
	future    float64
	assignees map[int]float64
	order     []int // claim order; the newest claimers are evicted first
}

func (q *queue) remove(unitID int) (float64, bool) {
	reserved, ok := q.assignees[unitID]
	if !ok {
		return 0, false
	}
	delete(q.assignees, unitID)
	q.order = slices.DeleteFunc(q.order, func(id int) bool { return id == unitID })
	return reserved, true
}

func (q *queue) reserved() float64 {
	var sum float64
	for _, r := range q.assignees {
		sum += r
	}
	return sum
}

// QueueEntry is a read-only view of one asteroid's queue.
type QueueEntry struct {
	MaxQueue  int
	Observed  float64
	Future    float64 // projected payload after every assignee has loaded
	Assignees []int   // ascending
}

// Registry arbitrates which unit goes where. Asteroids are shared through
// bounded queues, wrecks are claimed exclusively, destroyed enemy bases are
// never claimed at all. A unit holds at most one claim at any time.
//
// Not safe for concurrent use; the host calls one handler at a time.
type Registry struct {
	capacity float64
	queues   map[int]*queue
	occupied map[model.TargetRef]int
	claims   map[int]model.TargetRef
}

// New creates a registry sizing queues for units of the given capacity.
func New(capacity float64) *Registry {
	if capacity <= 0 {
		capacity = 1
	}
	return &Registry{
		capacity: capacity,
		queues:   make(map[int]*queue),
		occupied: make(map[model.TargetRef]int),
		claims:   make(map[int]model.TargetRef),
	}
}

func (r *Registry) maxQueue(payload float64) int {
	if payload <= 0 {
		return 0
	}
	return int(math.Ceil(payload / r.capacity))
}

// upsert returns the queue for src, seeding it from this observation the
// first time the asteroid is seen.
func (r *Registry) upsert(src model.Source) *queue {
	if q, ok := r.queues[src.ID]; ok {
		return q
	}
	q := &queue{
		maxQueue:  r.maxQueue(src.Payload),
		observed:  src.Payload,
		future:    src.Payload,
		assignees: make(map[int]float64),
	}
	r.queues[src.ID] = q
	return q
}

// ClaimResource joins u to src's queue. It fails, leaving any existing claim
// in place, when the queue is full or the projected payload is exhausted.
// Claiming the source already held is a no-op success.
func (r *Registry) ClaimResource(u model.Unit, src model.Source) bool {
	ref := model.TargetRef{Kind: model.KindAsteroid, ID: src.ID}
	if held, ok := r.claims[u.ID]; ok && held == ref {
		return true
	}
	if src.IsEmpty() {
		return false
	}
	q := r.upsert(src)
	if len(q.assignees) >= q.maxQueue || q.future <= 0 {
		return false
	}

	r.Release(u.ID)
	reserve := u.FreeSpace()
	if u.Capacity <= 0 {
		reserve = max(r.capacity-u.Payload, 0)
	}
	q.assignees[u.ID] = reserve
	q.order = append(q.order, u.ID)
	q.future -= reserve
	r.claims[u.ID] = ref
	return true
}

// ClaimExclusive reserves a non-resource target (a wreck) for u alone.
// Enemy bases are shared objectives and are never claimed.
func (r *Registry) ClaimExclusive(u model.Unit, ref model.TargetRef) bool {
	if ref.Kind == model.KindBase || ref.Kind == model.KindAsteroid {
		return false
	}
	if holder, ok := r.occupied[ref]; ok {
		return holder == u.ID
	}
	r.Release(u.ID)
	r.occupied[ref] = u.ID
	r.claims[u.ID] = ref
	return true
}

// Release drops every claim held by the unit. Safe to call repeatedly.
func (r *Registry) Release(unitID int) {
	for _, q := range r.queues {
		if reserved, ok := q.remove(unitID); ok {
			q.future += reserved
		}
	}
	for ref, holder := range r.occupied {
		if holder == unitID {
			delete(r.occupied, ref)
		}
	}
	if ref, ok := r.claims[unitID]; ok {
		slog.Debug("claim released", "unit", unitID, "kind", ref.Kind, "target", ref.ID)
		delete(r.claims, unitID)
	}
}

// Refresh re-derives every queue from the latest snapshot. Queues are created
// on first sight, depleted or vanished asteroids are dropped with their
// assignees, dead units lose their claims, and queues that shrank below their
// assignee count evict the most recent claimers.
func (r *Registry) Refresh(snap *model.Snapshot) {
	alive := snap.AliveIDs()
	seen := make(map[int]bool, len(snap.Sources))

	for _, src := range snap.Sources {
		if src.IsEmpty() {
			continue
		}
		seen[src.ID] = true
		q := r.upsert(src)
		q.observed = src.Payload
		q.maxQueue = r.maxQueue(src.Payload)

		for id := range q.assignees {
			if !alive[id] {
				r.dropClaim(q, id, "assignee dead")
			}
		}
		for len(q.assignees) > q.maxQueue {
			r.dropClaim(q, q.order[len(q.order)-1], "queue shrank")
		}
		q.future = q.observed - q.reserved()
	}

	for id, q := range r.queues {
		if seen[id] {
			continue
		}
		for unitID := range q.assignees {
			r.dropClaim(q, unitID, "source gone")
		}
		delete(r.queues, id)
	}

	for ref, holder := range r.occupied {
		_, present := snap.Resolve(ref)
		if !alive[holder] || !present {
			delete(r.occupied, ref)
			delete(r.claims, holder)
			slog.Debug("stale exclusive claim dropped", "unit", holder, "kind", ref.Kind, "target", ref.ID)
		}
	}

	for id := range r.claims {
		if !alive[id] {
			r.Release(id)
		}
	}
}

func (r *Registry) dropClaim(q *queue, unitID int, reason string) {
	q.remove(unitID)
	delete(r.claims, unitID)
	slog.Debug("stale queue claim dropped", "unit", unitID, "reason", reason)
}

// ClaimOf returns the claim the unit currently holds, if any.
func (r *Registry) ClaimOf(unitID int) (model.TargetRef, bool) {
	ref, ok := r.claims[unitID]
	return ref, ok
}

// Holds reports whether unitID currently holds ref.
func (r *Registry) Holds(unitID int, ref model.TargetRef) bool {
	held, ok := r.claims[unitID]
	return ok && held == ref
}

// Entry returns a copy of an asteroid's queue state.
func (r *Registry) Entry(sourceID int) (QueueEntry, bool) {
	q, ok := r.queues[sourceID]
	if !ok {
		return QueueEntry{}, false
	}
	ids := make([]int, 0, len(q.assignees))
	for id := range q.assignees {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return QueueEntry{MaxQueue: q.maxQueue, Observed: q.observed, Future: q.future, Assignees: ids}, true
}

// OccupiedBy returns the unit holding an exclusive target.
func (r *Registry) OccupiedBy(ref model.TargetRef) (int, bool) {
	id, ok := r.occupied[ref]
	return id, ok
}

// OccupiedCount is the size of the occupied set.
func (r *Registry) OccupiedCount() int { return len(r.occupied) }

package agent

import (
	"fmt"
	"slices"

	"github.com/nstehr/vimy/drone-core/model"
)

// EventKind identifies a change on the field detected by diffing
// consecutive snapshots.
type EventKind string

const (
	EventUnitLost           EventKind = "unit_lost"
	EventSourceDepleted     EventKind = "source_depleted"
	EventEnemyBaseDestroyed EventKind = "enemy_base_destroyed"
	EventFirstContact       EventKind = "first_contact"
)

// Event is a significant field change. Events are logged and traced; a lost
// unit also has its claims released on the spot.
type Event struct {
	Session string    `json:"session,omitempty"`
	Kind    EventKind `json:"kind"`
	Tick    int       `json:"tick"`
	ID      int       `json:"id,omitempty"` // unit, source or base the event is about
	Detail  string    `json:"detail"`
}

// fieldDigest captures the diffable parts of a snapshot.
type fieldDigest struct {
	allies     map[int]bool // living allied unit ids
	sources    map[int]bool // asteroids still holding payload
	enemyBases map[int]bool // living enemy bases
	contact    bool         // a living enemy is within the nearby radius of an ally
}

func takeDigest(s *model.Snapshot, radius float64) fieldDigest {
	d := fieldDigest{
		allies:     s.AliveIDs(),
		sources:    make(map[int]bool, len(s.Sources)),
		enemyBases: make(map[int]bool, len(s.EnemyBases)),
	}
	for _, src := range s.Sources {
		if !src.IsEmpty() {
			d.sources[src.ID] = true
		}
	}
	for _, b := range s.LiveEnemyBases() {
		d.enemyBases[b.ID] = true
	}
	for _, u := range s.Units {
		if !u.Alive {
			continue
		}
		if _, ok := s.NearestEnemyWithin(u.Pos, radius); ok {
			d.contact = true
			break
		}
	}
	return d
}

// detectEvents compares the snapshot against the previous digest and
// returns any triggered events, ordered by kind then id. Returns nil if prev
// is nil (first snapshot).
func detectEvents(s *model.Snapshot, radius float64, prev *fieldDigest) []Event {
	if prev == nil {
		return nil
	}

	var events []Event
	cur := takeDigest(s, radius)

	// 1. unit_lost: an ally alive last time is dead or gone
	for _, id := range missing(prev.allies, cur.allies) {
		events = append(events, Event{
			Kind:   EventUnitLost,
			Tick:   s.Tick,
			ID:     id,
			Detail: fmt.Sprintf("Lost unit %d", id),
		})
	}

	// 2. source_depleted
	for _, id := range missing(prev.sources, cur.sources) {
		events = append(events, Event{
			Kind:   EventSourceDepleted,
			Tick:   s.Tick,
			ID:     id,
			Detail: fmt.Sprintf("Asteroid %d depleted", id),
		})
	}

	// 3. enemy_base_destroyed
	for _, id := range missing(prev.enemyBases, cur.enemyBases) {
		events = append(events, Event{
			Kind:   EventEnemyBaseDestroyed,
			Tick:   s.Tick,
			ID:     id,
			Detail: fmt.Sprintf("Enemy base %d destroyed", id),
		})
	}

	// 4. first_contact: an enemy came within range of an ally after none was
	if !prev.contact && cur.contact {
		events = append(events, Event{
			Kind:   EventFirstContact,
			Tick:   s.Tick,
			Detail: fmt.Sprintf("Contact: %d enemies alive", len(s.LiveEnemies())),
		})
	}

	return events
}

// missing returns the ids in prev absent from cur, ascending.
func missing(prev, cur map[int]bool) []int {
	var out []int
	for id := range prev {
		if !cur[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

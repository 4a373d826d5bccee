package agent

import (
	"testing"

	"github.com/nstehr/vimy/drone-core/geom"
)

const radius = 580

func findEvent(events []Event, kind EventKind) (Event, bool) {
	for _, e := range events {
		if e.Kind == kind {
			return e, true
		}
	}
	return Event{}, false
}

func TestDetectEvents_NoEvents(t *testing.T) {
	s := field()
	prev := takeDigest(s, radius)

	// Same field next tick: no events
	s.Tick = 2
	events := detectEvents(s, radius, &prev)
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d: %+v", len(events), events)
	}
}

func TestDetectEvents_NilPrev(t *testing.T) {
	events := detectEvents(field(), radius, nil)
	if events != nil {
		t.Errorf("expected nil events for nil prev, got %+v", events)
	}
}

func TestDetectEvents_UnitLost(t *testing.T) {
	s := field()
	prev := takeDigest(s, radius)

	s.Tick = 2
	s.Units[1].Alive = false
	events := detectEvents(s, radius, &prev)
	e, ok := findEvent(events, EventUnitLost)
	if !ok || e.ID != 11 || e.Tick != 2 {
		t.Errorf("expected unit_lost for unit 11, got %+v", events)
	}
}

func TestDetectEvents_UnitVanished(t *testing.T) {
	s := field()
	prev := takeDigest(s, radius)

	// removed from the roster entirely rather than flagged dead
	s.Units = s.Units[:1]
	if _, ok := findEvent(detectEvents(s, radius, &prev), EventUnitLost); !ok {
		t.Error("expected unit_lost for a unit missing from the snapshot")
	}
}

func TestDetectEvents_SourceDepleted(t *testing.T) {
	s := field()
	prev := takeDigest(s, radius)

	s.Sources[1].Payload = 0
	e, ok := findEvent(detectEvents(s, radius, &prev), EventSourceDepleted)
	if !ok || e.ID != 101 {
		t.Errorf("expected source_depleted for 101, got %+v", e)
	}
}

func TestDetectEvents_EnemyBaseDestroyed(t *testing.T) {
	s := field()
	prev := takeDigest(s, radius)

	s.EnemyBases[0].Alive = false
	e, ok := findEvent(detectEvents(s, radius, &prev), EventEnemyBaseDestroyed)
	if !ok || e.ID != 2 {
		t.Errorf("expected enemy_base_destroyed for 2, got %+v", e)
	}
}

func TestDetectEvents_FirstContact(t *testing.T) {
	s := field()
	prev := takeDigest(s, radius)
	if prev.contact {
		t.Fatal("setup: enemy should start out of range")
	}

	s.Enemies[0].Pos = geom.Vec{X: 400, Y: 300}
	if _, ok := findEvent(detectEvents(s, radius, &prev), EventFirstContact); !ok {
		t.Error("expected first_contact once an enemy is in range")
	}

	// still in contact next tick: no repeat
	again := takeDigest(s, radius)
	if _, ok := findEvent(detectEvents(s, radius, &again), EventFirstContact); ok {
		t.Error("first_contact repeated while contact persists")
	}
}

func TestDetectEvents_Ordering(t *testing.T) {
	s := field()
	prev := takeDigest(s, radius)

	s.Units[0].Alive = false
	s.Units[1].Alive = false
	events := detectEvents(s, radius, &prev)
	if len(events) != 2 || events[0].ID != 10 || events[1].ID != 11 {
		t.Errorf("expected unit_lost 10 then 11, got %+v", events)
	}
}

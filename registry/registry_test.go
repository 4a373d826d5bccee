package registry

import (
	"testing"

	"github.com/nstehr/vimy/drone-core/geom"
	"github.com/nstehr/vimy/drone-core/model"
)

func drone(id int, x, y, payload float64) model.Unit {
	return model.Unit{ID: id, Pos: geom.Vec{X: x, Y: y}, Health: 1, Payload: payload, Capacity: 100, Radius: 22, Alive: true}
}

func asteroid(id int, x, y, payload float64) model.Source {
	return model.Source{ID: id, Pos: geom.Vec{X: x, Y: y}, Payload: payload, Radius: 30}
}

func snapshot(units []model.Unit, sources ...model.Source) *model.Snapshot {
	return &model.Snapshot{
		Field:   geom.Rect{Width: 1200, Height: 900},
		Units:   units,
		Sources: sources,
	}
}

// assertQueueBounds checks the queue-size invariant for every source.
func assertQueueBounds(t *testing.T, r *Registry, snap *model.Snapshot) {
	t.Helper()
	for _, src := range snap.Sources {
		e, ok := r.Entry(src.ID)
		if !ok {
			continue
		}
		if len(e.Assignees) > e.MaxQueue {
			t.Errorf("source %d: %d assignees exceed max queue %d", src.ID, len(e.Assignees), e.MaxQueue)
		}
	}
}

// assertSingleClaim checks that no unit appears in two places.
func assertSingleClaim(t *testing.T, r *Registry, unitIDs ...int) {
	t.Helper()
	for _, id := range unitIDs {
		n := 0
		for _, q := range r.queues {
			if _, ok := q.assignees[id]; ok {
				n++
			}
		}
		for _, holder := range r.occupied {
			if holder == id {
				n++
			}
		}
		if n > 1 {
			t.Errorf("unit %d holds %d claims", id, n)
		}
	}
}

func TestClaimResourceQueueLimit(t *testing.T) {
	r := New(100)
	src := asteroid(1, 300, 300, 250)

	for id := 1; id <= 3; id++ {
		if !r.ClaimResource(drone(id, 0, 0, 0), src) {
			t.Fatalf("claim %d should succeed", id)
		}
	}
	e, _ := r.Entry(1)
	if e.MaxQueue != 3 {
		t.Fatalf("max queue = %d, want 3", e.MaxQueue)
	}
	if r.ClaimResource(drone(4, 0, 0, 0), src) {
		t.Error("fourth claim should fail")
	}
	if _, ok := r.ClaimOf(4); ok {
		t.Error("failed claim must not leave a claim behind")
	}
}

func TestClaimResourceFuturePayload(t *testing.T) {
	r := New(100)
	src := asteroid(1, 300, 300, 250)

	prev := 250.0
	for id, load := range []float64{0, 40, 70} {
		if !r.ClaimResource(drone(id+1, 0, 0, load), src) {
			t.Fatalf("claim by unit %d failed", id+1)
		}
		e, _ := r.Entry(1)
		if e.Future > prev {
			t.Errorf("future payload rose from %v to %v", prev, e.Future)
		}
		prev = e.Future
	}
	// 250 - 100 - 60 - 30
	if prev != 60 {
		t.Errorf("future payload = %v, want 60", prev)
	}
}

func TestClaimResourceExhaustedFuture(t *testing.T) {
	r := New(100)
	src := asteroid(1, 300, 300, 150) // max queue 2
	if !r.ClaimResource(drone(1, 0, 0, 0), src) {
		t.Fatal("first claim failed")
	}
	// A second empty unit would reserve another 100 of the remaining 50: allowed,
	// future goes negative, and then nothing more fits.
	if !r.ClaimResource(drone(2, 0, 0, 0), src) {
		t.Fatal("second claim failed")
	}
	e, _ := r.Entry(1)
	if e.Future > 0 {
		t.Errorf("future = %v, want <= 0", e.Future)
	}
}

func TestClaimSwitchReleasesPrevious(t *testing.T) {
	r := New(100)
	u := drone(1, 0, 0, 0)
	r.ClaimResource(u, asteroid(1, 100, 100, 200))
	r.ClaimResource(u, asteroid(2, 200, 200, 200))

	if e, _ := r.Entry(1); len(e.Assignees) != 0 || e.Future != 200 {
		t.Errorf("old source still holds the unit: %+v", e)
	}
	if ref, _ := r.ClaimOf(1); ref != (model.TargetRef{Kind: model.KindAsteroid, ID: 2}) {
		t.Errorf("claim = %+v, want asteroid 2", ref)
	}

	if !r.ClaimExclusive(u, model.TargetRef{Kind: model.KindWreck, ID: 50}) {
		t.Fatal("exclusive claim failed")
	}
	if e, _ := r.Entry(2); len(e.Assignees) != 0 {
		t.Errorf("queue membership survived an exclusive claim: %+v", e)
	}
	assertSingleClaim(t, r, 1)
}

func TestClaimSameSourceTwice(t *testing.T) {
	r := New(100)
	u := drone(1, 0, 0, 0)
	src := asteroid(1, 100, 100, 100)
	if !r.ClaimResource(u, src) || !r.ClaimResource(u, src) {
		t.Fatal("re-claiming the held source should succeed")
	}
	if e, _ := r.Entry(1); len(e.Assignees) != 1 || e.Future != 0 {
		t.Errorf("double claim double-counted: %+v", e)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	r := New(100)
	u := drone(1, 0, 0, 0)
	r.ClaimResource(u, asteroid(1, 100, 100, 200))

	for range 3 {
		r.Release(1)
		if _, ok := r.ClaimOf(1); ok {
			t.Fatal("claim survived release")
		}
		e, _ := r.Entry(1)
		if len(e.Assignees) != 0 || e.Future != 200 {
			t.Fatalf("entry after release: %+v", e)
		}
	}

	r.ClaimExclusive(u, model.TargetRef{Kind: model.KindWreck, ID: 9})
	r.Release(1)
	r.Release(1)
	if r.OccupiedCount() != 0 {
		t.Error("occupied set not emptied by release")
	}
}

func TestClaimExclusive(t *testing.T) {
	r := New(100)
	wreck := model.TargetRef{Kind: model.KindWreck, ID: 7}

	if !r.ClaimExclusive(drone(1, 0, 0, 0), wreck) {
		t.Fatal("first exclusive claim failed")
	}
	if r.ClaimExclusive(drone(2, 0, 0, 0), wreck) {
		t.Error("second unit must not share an exclusive target")
	}
	if !r.ClaimExclusive(drone(1, 0, 0, 0), wreck) {
		t.Error("holder re-claiming should succeed")
	}
	if holder, _ := r.OccupiedBy(wreck); holder != 1 {
		t.Errorf("holder = %d, want 1", holder)
	}
}

func TestClaimExclusiveRejectsBases(t *testing.T) {
	r := New(100)
	base := model.TargetRef{Kind: model.KindBase, ID: 2}
	if r.ClaimExclusive(drone(1, 0, 0, 0), base) {
		t.Error("enemy bases must never be claimed exclusively")
	}
	if _, ok := r.OccupiedBy(base); ok {
		t.Error("base entered the occupied set")
	}
}

func TestRefreshDropsDeadAndDepleted(t *testing.T) {
	r := New(100)
	a, b := drone(1, 0, 0, 0), drone(2, 0, 0, 0)
	r.ClaimResource(a, asteroid(1, 100, 100, 300))
	r.ClaimResource(b, asteroid(2, 200, 200, 300))
	r.ClaimExclusive(drone(3, 0, 0, 0), model.TargetRef{Kind: model.KindWreck, ID: 40})

	b.Alive = false
	snap := snapshot([]model.Unit{a, b, drone(3, 0, 0, 0)},
		asteroid(1, 100, 100, 0), // depleted
		asteroid(2, 200, 200, 300),
	)
	r.Refresh(snap)

	if _, ok := r.Entry(1); ok {
		t.Error("depleted source should be removed")
	}
	if _, ok := r.ClaimOf(1); ok {
		t.Error("claim on depleted source should be dropped")
	}
	if e, _ := r.Entry(2); len(e.Assignees) != 0 || e.Future != 300 {
		t.Errorf("dead assignee not dropped: %+v", e)
	}
	// wreck 40 is not in the snapshot any more
	if r.OccupiedCount() != 0 {
		t.Error("claim on vanished wreck should be dropped")
	}
}

func TestRefreshShrinksQueue(t *testing.T) {
	r := New(100)
	src := asteroid(1, 100, 100, 250)
	units := []model.Unit{drone(1, 0, 0, 0), drone(2, 0, 0, 0), drone(3, 0, 0, 0)}
	for _, u := range units {
		r.ClaimResource(u, src)
	}

	src.Payload = 150 // first unit loaded 100
	snap := snapshot(units, src)
	r.Refresh(snap)

	e, _ := r.Entry(1)
	if e.MaxQueue != 2 || len(e.Assignees) != 2 {
		t.Fatalf("entry after shrink: %+v", e)
	}
	if _, ok := r.ClaimOf(3); ok {
		t.Error("newest claimer should be evicted first")
	}
	if e.Future != 150-200 {
		t.Errorf("future = %v, want %v", e.Future, 150-200.0)
	}
	assertQueueBounds(t, r, snap)
}

func TestRefreshPreservesAssignees(t *testing.T) {
	r := New(100)
	units := []model.Unit{drone(1, 0, 0, 0)}
	src := asteroid(1, 100, 100, 400)
	r.ClaimResource(units[0], src)

	r.Refresh(snapshot(units, src))
	r.Refresh(snapshot(units, src))

	e, _ := r.Entry(1)
	if len(e.Assignees) != 1 || e.Assignees[0] != 1 || e.Future != 300 {
		t.Errorf("refresh changed a healthy queue: %+v", e)
	}
}

func TestQueueBoundsUnderChurn(t *testing.T) {
	r := New(100)
	sources := []model.Source{asteroid(1, 100, 100, 250), asteroid(2, 600, 400, 120)}
	var units []model.Unit
	for id := 1; id <= 8; id++ {
		units = append(units, drone(id, float64(id*50), 100, float64(id%3)*20))
	}
	snap := snapshot(units, sources...)

	for round := range 4 {
		for _, u := range units {
			r.Acquire(u, snap, Policy(round%3))
			assertQueueBounds(t, r, snap)
			assertSingleClaim(t, r, u.ID)
		}
		r.Release(units[round].ID)
		r.Refresh(snap)
		assertQueueBounds(t, r, snap)
	}
}

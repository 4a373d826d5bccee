package agent

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/nstehr/vimy/drone-core/behavior"
	"github.com/nstehr/vimy/drone-core/geom"
	"github.com/nstehr/vimy/drone-core/ipc"
	"github.com/nstehr/vimy/drone-core/model"
	"github.com/nstehr/vimy/drone-core/registry"
	"github.com/nstehr/vimy/drone-core/rules"
)

// Recorder receives decision and event records. trace.Writer satisfies it.
type Recorder interface {
	Write(v any) error
}

// Decision is the trace record of one handled unit event.
type Decision struct {
	Session  string          `json:"session,omitempty"`
	Team     string          `json:"team"`
	Tick     int             `json:"tick"`
	Unit     int             `json:"unit"`
	Event    string          `json:"event"`
	Mode     model.Mode      `json:"mode"`
	Rule     string          `json:"rule"`
	Target   model.TargetRef `json:"target"`
	Attack   model.TargetRef `json:"attack"`
	Commands []string        `json:"commands"`
}

// Team is the arena shared by every unit of one side: the target registry,
// the transition rules and each unit's memory. Handlers run one at a time;
// Team is not safe for concurrent use.
type Team struct {
	Name     string
	Registry *registry.Registry
	Engine   *rules.Engine
	Tactics  rules.Tactics

	rng      *rand.Rand
	units    map[int]*behavior.UnitState
	prev     *fieldDigest
	stats    *TravelStats
	finished bool

	recorder Recorder
	session  string
}

// NewTeam builds an arena. A zero tactics seed seeds from the clock.
func NewTeam(name string, engine *rules.Engine, tactics rules.Tactics) *Team {
	tactics.Validate()
	seed := tactics.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Team{
		Name:     name,
		Registry: registry.New(tactics.UnitCapacity),
		Engine:   engine,
		Tactics:  tactics,
		rng:      rand.New(rand.NewSource(seed)),
		units:    make(map[int]*behavior.UnitState),
		stats:    newTravelStats(tactics.FullRatio),
	}
}

// SetRecorder sends every decision and field event to r, tagged with session.
func (t *Team) SetRecorder(r Recorder, session string) {
	t.recorder = r
	t.session = session
}

// State returns the memory of a unit, if the team has seen it.
func (t *Team) State(unitID int) (behavior.UnitState, bool) {
	st, ok := t.units[unitID]
	if !ok {
		return behavior.UnitState{}, false
	}
	return *st, true
}

func (t *Team) Stats() TravelStats { return *t.stats }

// OnSpawn plans a fresh unit's first trip, preferring targets nobody works yet.
func (t *Team) OnSpawn(unitID int, snap *model.Snapshot, cmd behavior.Commander) {
	t.handle(ipc.EventSpawn, unitID, snap, cmd, registry.PolicySpread, func(b behavior.Behavior, c *behavior.Context) {
		b.DecideMovement(c)
	})
}

// OnMovementStopped acts wherever the unit came to rest.
func (t *Team) OnMovementStopped(unitID int, snap *model.Snapshot, cmd behavior.Commander) {
	t.handle(ipc.EventMovementStopped, unitID, snap, cmd, registry.PolicyNearest, func(b behavior.Behavior, c *behavior.Context) {
		b.DecideAction(c)
	})
}

// OnLoadComplete frees the source the unit just loaded from and moves on.
func (t *Team) OnLoadComplete(unitID int, snap *model.Snapshot, cmd behavior.Commander) {
	t.handle(ipc.EventLoadComplete, unitID, snap, cmd, registry.PolicyNearest, func(b behavior.Behavior, c *behavior.Context) {
		t.Registry.Release(c.Unit.ID)
		c.State.Target = model.TargetRef{}
		b.DecideMovement(c)
	})
}

// OnUnloadComplete sends the emptied unit to the richest target.
func (t *Team) OnUnloadComplete(unitID int, snap *model.Snapshot, cmd behavior.Commander) {
	t.handle(ipc.EventUnloadComplete, unitID, snap, cmd, registry.PolicyRichest, func(b behavior.Behavior, c *behavior.Context) {
		b.DecideMovement(c)
	})
}

// OnWake is the periodic health check. It only issues commands when the
// transition rules move the unit to another behavior or target.
func (t *Team) OnWake(unitID int, snap *model.Snapshot, cmd behavior.Commander) {
	t.handle(ipc.EventWake, unitID, snap, cmd, registry.PolicyNearest, nil)
}

// Dispatch routes a host event kind to its handler.
func (t *Team) Dispatch(kind string, unitID int, snap *model.Snapshot, cmd behavior.Commander) error {
	switch kind {
	case ipc.EventSpawn:
		t.OnSpawn(unitID, snap, cmd)
	case ipc.EventMovementStopped:
		t.OnMovementStopped(unitID, snap, cmd)
	case ipc.EventLoadComplete:
		t.OnLoadComplete(unitID, snap, cmd)
	case ipc.EventUnloadComplete:
		t.OnUnloadComplete(unitID, snap, cmd)
	case ipc.EventWake:
		t.OnWake(unitID, snap, cmd)
	default:
		return fmt.Errorf("unknown unit event %q", kind)
	}
	return nil
}

// handle is the shared handler body: world bookkeeping, transition, the
// event's own step on the current behavior, then the transition again.
// A nil step only reacts to transitions.
func (t *Team) handle(event string, unitID int, snap *model.Snapshot, cmd behavior.Commander,
	policy registry.Policy, step func(behavior.Behavior, *behavior.Context)) {

	defer func() {
		if r := recover(); r != nil {
			slog.Error("unit handler failed", "team", t.Name, "unit", unitID, "event", event, "panic", r)
			if b, ok := cmd.(interface{ Reset() }); ok {
				b.Reset()
			}
			t.Registry.Release(unitID)
			if st, ok := t.units[unitID]; ok {
				st.ClearHarvest()
				st.AttackTarget = model.TargetRef{}
			}
			cmd.Halt()
		}
	}()

	t.observe(snap)

	u, ok := snap.Unit(unitID)
	if !ok || !u.Alive {
		slog.Debug("event for unknown or dead unit", "unit", unitID, "event", event)
		t.forget(unitID)
		return
	}

	st, ok := t.units[unitID]
	if !ok {
		st = &behavior.UnitState{}
		t.units[unitID] = st
	}

	tracked := &trackedCommander{Commander: cmd, unit: u, stats: t.stats}
	c := &behavior.Context{
		Unit:     u,
		World:    snap,
		Registry: t.Registry,
		Cmd:      tracked,
		State:    st,
		Tactics:  t.Tactics,
		Rand:     t.rng,
		Policy:   policy,
	}

	changed := t.transition(c)
	if step != nil {
		step(behavior.For(st.Mode), c)
	} else if changed {
		behavior.For(st.Mode).DecideMovement(c)
	}
	if step != nil && t.transition(c) {
		behavior.For(st.Mode).DecideMovement(c)
	}

	t.record(Decision{
		Session:  t.session,
		Team:     t.Name,
		Tick:     snap.Tick,
		Unit:     unitID,
		Event:    event,
		Mode:     st.Mode,
		Rule:     st.Rule,
		Target:   st.Target,
		Attack:   st.AttackTarget,
		Commands: tracked.issued,
	})
}

// transition evaluates the rules for c's unit and applies the result to its
// memory and claims. It reports whether the behavior or the locked attack
// target changed.
func (t *Team) transition(c *behavior.Context) bool {
	next := t.Engine.Evaluate(rules.Env{State: c.World, Self: c.Unit, Tactics: t.Tactics})
	st := c.State

	changed := next.Mode != st.Mode || next.Target != st.AttackTarget
	if next.Mode != st.Mode {
		slog.Debug("unit transition", "unit", c.Unit.ID, "from", st.Mode, "to", next.Mode, "rule", next.Rule)
	}
	st.Mode, st.Rule = next.Mode, next.Rule

	switch next.Mode {
	case model.ModeRetreat:
		t.Registry.Release(c.Unit.ID)
		st.ClearHarvest()
		st.AttackTarget = model.TargetRef{}
	case model.ModeCombat:
		t.Registry.Release(c.Unit.ID)
		st.ClearHarvest()
		st.AttackTarget = next.Target
	default:
		st.AttackTarget = model.TargetRef{}
	}
	return changed
}

// observe brings the shared bookkeeping up to date with snap.
func (t *Team) observe(snap *model.Snapshot) {
	radius := t.Tactics.SearchRadius
	if snap.NearbyRadius > 0 {
		radius = snap.NearbyRadius
	}
	for _, ev := range detectEvents(snap, radius, t.prev) {
		slog.Info("field event", "team", t.Name, "tick", ev.Tick, "kind", ev.Kind, "detail", ev.Detail)
		if ev.Kind == EventUnitLost {
			t.forget(ev.ID)
		}
		ev.Session = t.session
		t.record(ev)
	}
	d := takeDigest(snap, radius)
	t.prev = &d

	t.Registry.Refresh(snap)

	if !t.finished && len(snap.Units) > 0 && !snap.ResourcesRemain() && snap.TeamEmpty() {
		t.finished = true
		s := t.stats
		slog.Info("harvest finished",
			"team", t.Name,
			"tick", snap.Tick,
			"travelFull", fmt.Sprintf("%.0f", s.Full),
			"travelEmpty", fmt.Sprintf("%.0f", s.Empty),
			"travelPartial", fmt.Sprintf("%.0f", s.Partial),
			"moves", s.Moves,
		)
	}
}

// forget drops a unit's claims and memory.
func (t *Team) forget(unitID int) {
	t.Registry.Release(unitID)
	delete(t.units, unitID)
}

func (t *Team) record(v any) {
	if t.recorder == nil {
		return
	}
	if err := t.recorder.Write(v); err != nil {
		slog.Warn("trace write failed", "error", err)
	}
}

// trackedCommander forwards commands while feeding travel statistics and
// the trace.
type trackedCommander struct {
	behavior.Commander
	unit   model.Unit
	stats  *TravelStats
	issued []string
}

func (c *trackedCommander) MoveTo(p geom.Vec) {
	c.stats.add(c.unit, c.unit.Pos.Dist(p))
	c.issued = append(c.issued, ipc.CmdMoveTo)
	c.Commander.MoveTo(p)
}

func (c *trackedCommander) TurnTo(p geom.Vec) {
	c.issued = append(c.issued, ipc.CmdTurnTo)
	c.Commander.TurnTo(p)
}

func (c *trackedCommander) BeginLoad(ref model.TargetRef) {
	c.issued = append(c.issued, ipc.CmdBeginLoad)
	c.Commander.BeginLoad(ref)
}

func (c *trackedCommander) BeginUnload(baseID int) {
	c.issued = append(c.issued, ipc.CmdBeginUnload)
	c.Commander.BeginUnload(baseID)
}

func (c *trackedCommander) Fire(ref model.TargetRef) {
	c.issued = append(c.issued, ipc.CmdFire)
	c.Commander.Fire(ref)
}

func (c *trackedCommander) Halt() {
	c.issued = append(c.issued, ipc.CmdHalt)
	c.Commander.Halt()
}

// Package behavior holds the three behavior variants a unit can run. Each
// variant turns the current snapshot into host commands; none of them decide
// when to switch variant, that is the rules engine's job.
package behavior

import (
	"math/rand"

	"github.com/nstehr/vimy/drone-core/geom"
	"github.com/nstehr/vimy/drone-core/model"
	"github.com/nstehr/vimy/drone-core/registry"
	"github.com/nstehr/vimy/drone-core/rules"
)

// Commander receives the commands a behavior issues for its unit. Commands
// are fire-and-forget; the host reports progress through later unit events.
type Commander interface {
	MoveTo(p geom.Vec)
	TurnTo(p geom.Vec)
	BeginLoad(ref model.TargetRef)
	BeginUnload(baseID int)
	Fire(ref model.TargetRef)
	Halt()
}

// Behavior is one variant of the unit state machine.
type Behavior interface {
	Mode() model.Mode
	// DecideMovement picks where the unit should go next.
	DecideMovement(c *Context)
	// DecideAction runs once the unit has stopped moving.
	DecideAction(c *Context)
}

// For returns the behavior implementing mode. Unknown modes harvest.
func For(mode model.Mode) Behavior {
	switch mode {
	case model.ModeRetreat:
		return Retreat{}
	case model.ModeCombat:
		return Combat{}
	default:
		return Harvest{}
	}
}

// UnitState is what a unit remembers between events.
type UnitState struct {
	Mode model.Mode
	Rule string // rule that selected Mode

	// Target is the harvest target the unit is heading to or loading from.
	// Asteroids and wrecks are also claimed in the registry.
	Target model.TargetRef
	// Next is the peeked follow-up target. It is never claimed until the
	// unit actually sets off for it.
	Next model.TargetRef
	// AttackTarget is the locked enemy unit or base in combat.
	AttackTarget model.TargetRef
}

// ClearHarvest forgets harvest targets. Registry claims are released separately.
func (s *UnitState) ClearHarvest() {
	s.Target = model.TargetRef{}
	s.Next = model.TargetRef{}
}

// Context is everything a behavior needs for one decision.
type Context struct {
	Unit     model.Unit
	World    *model.Snapshot
	Registry *registry.Registry
	Cmd      Commander
	State    *UnitState
	Tactics  rules.Tactics
	Rand     *rand.Rand
	Policy   registry.Policy // resource ordering for this decision
}

// AtHome reports whether the unit is parked at its mothership.
func (c *Context) AtHome() bool {
	home := c.World.Home
	return model.Near(c.Unit.Pos, home.Pos, home.Radius, c.Tactics.ArrivalRadius)
}

func (c *Context) at(t model.Target) bool {
	return model.Near(c.Unit.Pos, t.Pos, t.Radius, c.Tactics.ArrivalRadius)
}

// goHome heads for the mothership, or halts when already there so an idle
// unit does not bounce between stop events.
func (c *Context) goHome() {
	if c.AtHome() {
		c.Cmd.Halt()
		return
	}
	c.Cmd.MoveTo(c.World.Home.Pos)
}

// dropClaims releases every registry claim and forgets harvest targets.
func (c *Context) dropClaims() {
	c.Registry.Release(c.Unit.ID)
	c.State.ClearHarvest()
}

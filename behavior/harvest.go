package behavior

import (
	"log/slog"

	"github.com/nstehr/vimy/drone-core/model"
	"github.com/nstehr/vimy/drone-core/registry"
)

// Harvest shuttles between resource targets and the mothership.
type Harvest struct{}

func (Harvest) Mode() model.Mode { return model.ModeHarvest }

// DecideMovement heads home when full or when nothing is left to claim,
// otherwise toward the claimed target.
func (Harvest) DecideMovement(c *Context) {
	c.State.AttackTarget = model.TargetRef{}

	if c.Unit.FillRatio() >= c.Tactics.FullRatio {
		c.Registry.Release(c.Unit.ID)
		c.State.Target = model.TargetRef{}
		c.goHome()
		return
	}

	t, ok := c.currentTarget()
	if !ok {
		t, ok = c.acquire()
	}
	if !ok {
		slog.Debug("nothing to harvest", "unit", c.Unit.ID, "policy", c.Policy)
		c.dropClaims()
		c.goHome()
		return
	}
	c.moveToward(t)
}

// DecideAction loads at the target, unloads at home, and otherwise
// re-plans from wherever the unit stopped.
func (h Harvest) DecideAction(c *Context) {
	c.State.AttackTarget = model.TargetRef{}

	if t, ok := c.currentTarget(); ok && c.at(t) && c.Unit.FillRatio() < c.Tactics.FullRatio {
		c.Cmd.BeginLoad(t.Ref)
		// face home so the unit leaves as soon as the load completes
		c.Cmd.TurnTo(c.World.Home.Pos)
		if n, ok := c.peekNext(registry.PolicyNearest); ok {
			c.State.Next = n.Ref
		}
		return
	}

	if c.AtHome() && !c.Unit.IsEmpty() {
		c.Cmd.BeginUnload(c.World.Home.ID)
		// Turn only. The richest target is what the unit will pick once
		// empty, but claiming it now would hold a queue slot for the
		// whole unload.
		if n, ok := c.peekNext(registry.PolicyRichest); ok {
			c.State.Next = n.Ref
			c.Cmd.TurnTo(n.Pos)
		}
		return
	}

	h.DecideMovement(c)
}

// harvestable resolves ref as something that can be loaded from.
func (c *Context) harvestable(ref model.TargetRef) (model.Target, bool) {
	switch ref.Kind {
	case model.KindAsteroid, model.KindWreck, model.KindBase:
	default:
		return model.Target{}, false
	}
	if _, alive := c.World.ResolveHostile(ref); alive {
		return model.Target{}, false
	}
	return c.World.Resolve(ref)
}

// currentTarget returns the unit's harvest target while it still holds
// payload and the unit still holds the claim on it.
func (c *Context) currentTarget() (model.Target, bool) {
	ref := c.State.Target
	if ref.IsZero() {
		return model.Target{}, false
	}
	t, ok := c.harvestable(ref)
	if !ok {
		return model.Target{}, false
	}
	if ref.Kind != model.KindBase && !c.Registry.Holds(c.Unit.ID, ref) {
		return model.Target{}, false
	}
	return t, true
}

// acquire claims the peeked next target if it is still available, and
// otherwise the best target under the context's policy.
func (c *Context) acquire() (model.Target, bool) {
	if next := c.State.Next; !next.IsZero() {
		c.State.Next = model.TargetRef{}
		if t, ok := c.harvestable(next); ok && c.Registry.Claim(c.Unit, t) {
			c.State.Target = t.Ref
			return t, true
		}
	}
	t, ok := c.Registry.Acquire(c.Unit, c.World, c.Policy)
	if !ok {
		return model.Target{}, false
	}
	c.State.Target = t.Ref
	return t, true
}

// peekNext looks at the best target other than the current one, without
// claiming anything.
func (c *Context) peekNext(policy registry.Policy) (model.Target, bool) {
	for _, t := range c.Registry.Candidates(c.Unit, c.World, policy) {
		if t.Ref != c.State.Target {
			return t, true
		}
	}
	return model.Target{}, false
}

// moveToward sends the unit at t, stopping half way first when t is
// farther than the waypoint distance.
func (c *Context) moveToward(t model.Target) {
	if wp := c.Tactics.WaypointDistance; wp > 0 && c.Unit.Pos.Dist(t.Pos) > wp {
		c.Cmd.MoveTo(c.Unit.Pos.Midpoint(t.Pos))
		return
	}
	c.Cmd.MoveTo(t.Pos)
}

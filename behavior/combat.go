package behavior

import (
	"errors"
	"log/slog"

	"github.com/nstehr/vimy/drone-core/geom"
	"github.com/nstehr/vimy/drone-core/model"
)

// Combat attacks the locked target. Movement and action are the same
// decision: shoot if the line is clear, otherwise reposition.
type Combat struct{}

func (Combat) Mode() model.Mode { return model.ModeCombat }

func (b Combat) DecideMovement(c *Context) { b.engage(c) }

func (b Combat) DecideAction(c *Context) { b.engage(c) }

// engage never leaves the unit without a command. When the target is gone
// or no safe firing point exists it clears the lock and halts, and the
// controller's transition pass picks what comes next.
func (Combat) engage(c *Context) {
	// a fighter never holds resource claims
	c.dropClaims()

	target, ok := c.World.ResolveHostile(c.State.AttackTarget)
	if !ok {
		slog.Debug("attack target gone", "unit", c.Unit.ID, "target", c.State.AttackTarget)
		c.State.AttackTarget = model.TargetRef{}
		c.Cmd.Halt()
		return
	}

	allies := c.World.AllyCircles(c.Unit.ID)
	fp := c.Tactics.FireParams()
	if geom.LineOfFireClear(c.Unit.Pos, target.Pos, allies, fp) {
		c.Cmd.TurnTo(target.Pos)
		c.Cmd.Fire(target.Ref)
		return
	}

	pos, err := geom.SearchAttackPosition(c.Unit.Pos, target.Pos, allies, c.World.Field,
		fp, c.Tactics.SearchParams(c.Unit.Radius), c.Rand)
	if err != nil {
		if !errors.Is(err, geom.ErrNoSafePosition) {
			slog.Warn("attack position search failed", "unit", c.Unit.ID, "error", err)
		} else {
			slog.Debug("no safe attack position", "unit", c.Unit.ID, "target", target.Ref)
		}
		c.State.AttackTarget = model.TargetRef{}
		c.Cmd.Halt()
		return
	}
	c.Cmd.MoveTo(pos)
}

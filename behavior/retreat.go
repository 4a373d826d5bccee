package behavior

import "github.com/nstehr/vimy/drone-core/model"

// Retreat is the white flag: drop everything and go home. It holds until
// health recovers above the retreat threshold.
type Retreat struct{}

func (Retreat) Mode() model.Mode { return model.ModeRetreat }

func (r Retreat) DecideMovement(c *Context) { r.fallBack(c) }

func (r Retreat) DecideAction(c *Context) { r.fallBack(c) }

func (Retreat) fallBack(c *Context) {
	c.dropClaims()
	c.State.AttackTarget = model.TargetRef{}
	c.goHome()
}

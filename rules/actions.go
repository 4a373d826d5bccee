package rules

import "github.com/nstehr/vimy/drone-core/model"

// ActionRetreat raises the white flag. The behavior itself drops claims.
func ActionRetreat(env Env) (Transition, bool) {
	return Transition{Mode: model.ModeRetreat}, true
}

// ActionEngageNearest locks the closest living enemy inside the search radius.
func ActionEngageNearest(env Env) (Transition, bool) {
	e, ok := env.State.NearestEnemyWithin(env.Self.Pos, env.SearchRadius())
	if !ok {
		return Transition{}, false
	}
	return Transition{Mode: model.ModeCombat, Target: model.TargetRef{Kind: model.KindUnit, ID: e.ID}}, true
}

// ActionSiege goes after the nearest living enemy base once the field is
// picked clean. With every base down it hunts the nearest enemy unit instead.
func ActionSiege(env Env) (Transition, bool) {
	if b, ok := env.State.NearestEnemyBase(env.Self.Pos); ok {
		return Transition{Mode: model.ModeCombat, Target: model.TargetRef{Kind: model.KindBase, ID: b.ID}}, true
	}
	if e, ok := env.State.NearestEnemy(env.Self.Pos); ok {
		return Transition{Mode: model.ModeCombat, Target: model.TargetRef{Kind: model.KindUnit, ID: e.ID}}, true
	}
	return Transition{}, false
}

func ActionHarvest(env Env) (Transition, bool) {
	return Transition{Mode: model.ModeHarvest}, true
}

package rules

import (
	"testing"

	"github.com/nstehr/vimy/drone-core/geom"
	"github.com/nstehr/vimy/drone-core/model"
)

func TestActionEngageNearest(t *testing.T) {
	s := baseState()
	s.Enemies = append(s.Enemies,
		model.Unit{ID: 21, Pos: geom.Vec{X: 260, Y: 150}, Alive: true},
		model.Unit{ID: 22, Pos: geom.Vec{X: 200, Y: 150}, Alive: false},
		model.Unit{ID: 23, Pos: geom.Vec{X: 300, Y: 150}, Alive: true},
	)
	env := Env{State: s, Self: s.Units[0], Tactics: DefaultTactics()}

	tr, ok := ActionEngageNearest(env)
	if !ok {
		t.Fatal("expected a target")
	}
	want := model.TargetRef{Kind: model.KindUnit, ID: 21}
	if tr.Mode != model.ModeCombat || tr.Target != want {
		t.Errorf("got %+v, want combat on %+v", tr, want)
	}

	s.NearbyRadius = 50
	if _, ok := ActionEngageNearest(env); ok {
		t.Error("engaged an enemy outside the nearby radius")
	}
}

func TestActionSiege(t *testing.T) {
	s := baseState()
	s.EnemyBases = append(s.EnemyBases, model.Base{ID: 3, Pos: geom.Vec{X: 600, Y: 150}, Alive: true})
	env := Env{State: s, Self: s.Units[0]}

	tr, ok := ActionSiege(env)
	if !ok || tr.Target != (model.TargetRef{Kind: model.KindBase, ID: 3}) {
		t.Errorf("got %+v, want nearest base 3", tr)
	}

	for i := range s.EnemyBases {
		s.EnemyBases[i].Alive = false
	}
	tr, ok = ActionSiege(env)
	if !ok || tr.Target != (model.TargetRef{Kind: model.KindUnit, ID: 20}) {
		t.Errorf("got %+v, want enemy unit 20 once bases are down", tr)
	}

	s.Enemies[0].Alive = false
	if _, ok := ActionSiege(env); ok {
		t.Error("siege with nothing left to shoot")
	}
}

func TestActionRetreatAndHarvest(t *testing.T) {
	env := Env{State: baseState()}
	if tr, ok := ActionRetreat(env); !ok || tr.Mode != model.ModeRetreat || !tr.Target.IsZero() {
		t.Errorf("retreat = %+v", tr)
	}
	if tr, ok := ActionHarvest(env); !ok || tr.Mode != model.ModeHarvest || !tr.Target.IsZero() {
		t.Errorf("harvest = %+v", tr)
	}
}

package rules

import (
	"math"
	"testing"

	"github.com/expr-lang/expr"
	"github.com/nstehr/vimy/drone-core/geom"
	"github.com/nstehr/vimy/drone-core/model"
)

func TestHealthRatioClamps(t *testing.T) {
	tests := []struct {
		health float64
		want   float64
	}{
		{0.5, 0.5},
		{1.4, 1},
		{-0.2, 0},
	}
	for _, tt := range tests {
		env := Env{Self: model.Unit{Health: tt.health}}
		if got := env.HealthRatio(); got != tt.want {
			t.Errorf("HealthRatio(%v) = %v, want %v", tt.health, got, tt.want)
		}
	}
}

func TestSearchRadius(t *testing.T) {
	s := baseState()
	env := Env{State: s, Tactics: DefaultTactics()}
	if got := env.SearchRadius(); got != DefaultTactics().SearchRadius {
		t.Errorf("SearchRadius = %v, want configured %v", got, DefaultTactics().SearchRadius)
	}

	s.NearbyRadius = 120
	if got := env.SearchRadius(); got != 120 {
		t.Errorf("SearchRadius = %v, want host override 120", got)
	}
}

func TestEnemyHelpers(t *testing.T) {
	s := baseState()
	env := Env{State: s, Self: s.Units[0], Tactics: DefaultTactics()}

	if env.EnemyWithin(100) {
		t.Error("enemy at ~1000 reported within 100")
	}
	if !env.EnemyWithin(2000) {
		t.Error("enemy not found within 2000")
	}
	if !env.EnemiesAlive() || !env.EnemyBaseAlive() {
		t.Error("expected living enemies and base")
	}

	s.Enemies[0].Alive = false
	s.EnemyBases[0].Alive = false
	if env.EnemyWithin(2000) || env.EnemiesAlive() || env.EnemyBaseAlive() {
		t.Error("dead enemies still reported")
	}
}

func TestResourcesRemainCountsWrecks(t *testing.T) {
	s := baseState()
	s.Sources[0].Payload = 0
	env := Env{State: s, Self: s.Units[0]}
	if env.ResourcesRemain() {
		t.Fatal("empty asteroid counted as a resource")
	}

	s.Enemies[0].Alive = false
	s.Enemies[0].Payload = 30
	if !env.ResourcesRemain() {
		t.Error("enemy wreck with payload not counted")
	}
}

func TestDistanceHome(t *testing.T) {
	s := baseState()
	env := Env{State: s, Self: model.Unit{Pos: geom.Vec{X: 90, Y: 190}}}
	if got := env.DistanceHome(); got != 100 {
		t.Errorf("DistanceHome = %v, want 100", got)
	}
	if got := (Env{}).DistanceHome(); !math.IsInf(got, 1) {
		t.Errorf("DistanceHome without state = %v, want +Inf", got)
	}
}

// Custom tactics conditions run against the same Env as the stock table.
func TestEnvHelpersCallableFromExpr(t *testing.T) {
	s := baseState()
	s.Units[0].Payload = 60
	env := Env{State: s, Self: s.Units[0], Tactics: DefaultTactics()}

	conditions := []struct {
		src  string
		want bool
	}{
		{`FillRatio() >= 0.6`, true},
		{`PayloadEmpty()`, false},
		{`DistanceHome() < 100.0`, true},
		{`HealthRatio() < 0.5 || EnemyWithin(SearchRadius())`, false},
		{`ResourcesRemain() && EnemyBaseAlive()`, true},
	}
	for _, c := range conditions {
		prog, err := expr.Compile(c.src, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			t.Fatalf("compile %q: %v", c.src, err)
		}
		got, err := expr.Run(prog, env)
		if err != nil {
			t.Fatalf("run %q: %v", c.src, err)
		}
		if got.(bool) != c.want {
			t.Errorf("%s = %v, want %v", c.src, got, c.want)
		}
	}
}

package rules

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/vimy/drone-core/model"
)

// fallback is used when no rule matches, which only happens if every
// condition errored out. Harvest is the safe idle state.
var fallback = Transition{Rule: "fallback", Mode: model.ModeHarvest}

// Engine is the transition function: a fixed, priority-ordered rule table.
// It holds no per-unit state, so one engine serves every unit of a team and
// Evaluate may be called from any goroutine.
type Engine struct {
	rules []*Rule
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// Evaluate returns the behavior the unit described by env should be in.
func (e *Engine) Evaluate(env Env) Transition {
	for _, r := range e.rules {
		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "unit", env.Self.ID, "error", err)
			continue
		}
		if match, ok := result.(bool); !ok || !match {
			continue
		}
		t, ok := r.Action(env)
		if !ok {
			slog.Debug("rule matched without a target", "rule", r.Name, "unit", env.Self.ID)
			continue
		}
		t.Rule = r.Name
		return t
	}
	return fallback
}

// Names lists the rules in evaluation order.
func (e *Engine) Names() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}

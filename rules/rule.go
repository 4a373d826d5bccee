package rules

import (
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/vimy/drone-core/model"
)

// ActionFunc resolves what a matched rule means for the unit: the behavior
// to switch to and, for combat, the target to lock. Returning false lets the
// engine fall through to the next rule.
type ActionFunc func(env Env) (Transition, bool)

// Rule is one row of the transition table: a condition → next-behavior pair.
// The engine evaluates rules by descending priority and the first match wins.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	ConditionSrc string      // expr source (preserved for logging)
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}

// Transition is the outcome of evaluating the rule table for one unit.
type Transition struct {
	Rule   string
	Mode   model.Mode
	Target model.TargetRef // attack target in combat, zero otherwise
}

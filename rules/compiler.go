package rules

import "fmt"

// CompileTactics generates the transition table from the tactics thresholds.
// Conditions are built via fmt.Sprintf with interpolated values; floats are
// always printed with a decimal point so expr types them as float64.
func CompileTactics(t Tactics) []*Rule {
	t.Validate()

	return []*Rule{
		{
			// Survival dominates everything else.
			Name:         "white-flag",
			Priority:     400,
			ConditionSrc: fmt.Sprintf(`HealthRatio() <= %.4f`, t.RetreatHealth),
			Action:       ActionRetreat,
		},
		{
			Name:         "engage-nearby",
			Priority:     300,
			ConditionSrc: `PayloadEmpty() && EnemyWithin(SearchRadius())`,
			Action:       ActionEngageNearest,
		},
		{
			Name:         "siege-base",
			Priority:     200,
			ConditionSrc: `PayloadEmpty() && !ResourcesRemain() && (EnemyBaseAlive() || EnemiesAlive())`,
			Action:       ActionSiege,
		},
		{
			Name:         "harvest",
			Priority:     100,
			ConditionSrc: `true`,
			Action:       ActionHarvest,
		},
	}
}

// DefaultEngine compiles the stock tactics. It cannot fail for valid
// tactics; an error here means a condition template is broken.
func DefaultEngine() (*Engine, error) {
	return NewEngine(CompileTactics(DefaultTactics()))
}

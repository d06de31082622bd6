package unlock

import (
	"fmt"

	"github.com/pastrypath/pastrypath/internal/catalog"
	"github.com/pastrypath/pastrypath/internal/progress"
)

// Policy holds the thresholds of the gates attached to modules by type and
// difficulty. A zero threshold disables its gate.
type Policy struct {
	AdvancedMinScore       float64 `mapstructure:"advanced_min_score"`
	LongModuleMinutes      int     `mapstructure:"long_module_minutes"`
	LongModuleTimeFraction float64 `mapstructure:"long_module_time_fraction"`
	QuizMinAttempts        int     `mapstructure:"quiz_min_attempts"`
}

// DefaultPolicy returns the standard gate thresholds.
func DefaultPolicy() Policy {
	return Policy{
		AdvancedMinScore:       80,
		LongModuleMinutes:      60,
		LongModuleTimeFraction: 0.5,
		QuizMinAttempts:        1,
	}
}

// conditions returns the policy gates for module m of path p. The score and
// attempt gates look at the modules before m in path order, so the first
// module of a path never gets them. The time gate counts time anywhere in
// the path and applies at every position.
func (pol Policy) conditions(p catalog.Path, m catalog.Module, pos int, prog ProgressReader) []Condition {
	var (
		bestScore float64
		scored    bool
		attempts  int
	)
	hasPrior := pos > 0
	for _, prior := range p.Modules[:max(pos, 0)] {
		rec, ok := prog.ModuleProgress(prior.ID)
		if !ok {
			continue
		}
		attempts += rec.Attempts
		if rec.Score != nil && (!scored || *rec.Score > bestScore) {
			bestScore = *rec.Score
			scored = true
		}
	}

	var conds []Condition

	if hasPrior && m.Difficulty == catalog.LevelAdvanced && pol.AdvancedMinScore > 0 {
		conds = append(conds, Condition{
			Type:        ConditionScoreThreshold,
			Value:       pol.AdvancedMinScore,
			Actual:      bestScore,
			IsMet:       scored && bestScore >= pol.AdvancedMinScore,
			Description: fmt.Sprintf("Score at least %.0f on an earlier module", pol.AdvancedMinScore),
		})
	}

	if pol.LongModuleMinutes > 0 && m.EstimatedMinutes > pol.LongModuleMinutes {
		need := float64(m.EstimatedMinutes) * pol.LongModuleTimeFraction
		spent := 0
		for _, rec := range prog.ModulesForPath(p.ID) {
			spent += rec.TimeSpentMinutes
		}
		conds = append(conds, Condition{
			Type:        ConditionTimeSpent,
			Value:       need,
			Actual:      float64(spent),
			IsMet:       float64(spent) >= need,
			Description: fmt.Sprintf("Spend at least %.0f minutes in this path", need),
		})
	}

	if hasPrior && m.Type == catalog.ModuleQuiz && pol.QuizMinAttempts > 0 {
		conds = append(conds, Condition{
			Type:        ConditionAttempts,
			Value:       float64(pol.QuizMinAttempts),
			Actual:      float64(attempts),
			IsMet:       attempts >= pol.QuizMinAttempts,
			Description: fmt.Sprintf("Attempt earlier modules at least %d time(s)", pol.QuizMinAttempts),
		})
	}

	return conds
}

// ProgressReader is the view of progress the resolver evaluates against.
// *progress.Store satisfies it.
type ProgressReader interface {
	ModuleProgress(moduleID string) (progress.ModuleProgress, bool)
	ModulesForPath(pathID string) []progress.ModuleProgress
	PathCompletionPercentage(pathID string) float64
}

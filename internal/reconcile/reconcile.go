// internal/reconcile/reconcile.go
package reconcile

import (
	"math"

	"nutriplan/internal/models"
)

// Energy densities in kcal per gram, per the Atwater factors.
const (
	KcalPerGramProtein = 4
	KcalPerGramCarb    = 4
	KcalPerGramFat     = 9
)

// Resolve returns the daily summary to use for a plan. Parsed data wins:
// when the extracted summary carries a positive kcal value it is returned
// unchanged, even if the targets disagree. A missing or zero summary is
// recomputed from the patient's target calories and macro percentages.
// When the targets are absent or incomplete the all-zero summary is
// returned; values are never substituted with a fabricated minimum, since
// a zero summary is detectable downstream and a made-up one is not.
func Resolve(parsed models.DailySummary, targets *models.PatientTargets) models.DailySummary {
	if parsed.Kcal > 0 {
		return parsed
	}
	if targets == nil || targets.TargetKcal == nil || targets.MacroDistribution == nil {
		return models.DailySummary{}
	}

	kcal := *targets.TargetKcal
	dist := targets.MacroDistribution
	return models.DailySummary{
		Kcal:     roundHalfUp(kcal),
		Proteins: roundHalfUp(kcal * dist.ProteinPerc / 100 / KcalPerGramProtein),
		Fats:     roundHalfUp(kcal * dist.FatPerc / 100 / KcalPerGramFat),
		Carbs:    roundHalfUp(kcal * dist.CarbPerc / 100 / KcalPerGramCarb),
	}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

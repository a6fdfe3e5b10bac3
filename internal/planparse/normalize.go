// internal/planparse/normalize.go
package planparse

import (
	"math"
	"strings"

	"nutriplan/internal/models"
)

// Normalize maps a validated wire document onto the internal shape:
// external macro names become the short internal ones (protein->p,
// fat->f, carb->c), every nutrition value is rounded half-up to a whole
// unit, and text fields are trimmed. The input is not mutated; absent
// fields normalize to their zero value.
func Normalize(doc *Document) models.MealPlanDocument {
	out := models.MealPlanDocument{}
	if doc == nil {
		return out
	}

	if sum := doc.DailySummary; sum != nil {
		out.Summary = models.DailySummary{
			Kcal:     roundHalfUp(deref(sum.Kcal)),
			Proteins: roundHalfUp(deref(sum.Proteins)),
			Fats:     roundHalfUp(deref(sum.Fats)),
			Carbs:    roundHalfUp(deref(sum.Carbs)),
		}
	}

	out.Meals = make([]models.Meal, 0, len(doc.Meals))
	for _, meal := range doc.Meals {
		m := models.Meal{
			Name:        strings.TrimSpace(derefStr(meal.Name)),
			Ingredients: strings.TrimSpace(derefStr(meal.Ingredients)),
			Preparation: strings.TrimSpace(derefStr(meal.Preparation)),
		}
		if sum := meal.Summary; sum != nil {
			m.Summary = models.MealSummary{
				Kcal: roundHalfUp(deref(sum.Kcal)),
				P:    roundHalfUp(deref(sum.Protein)),
				F:    roundHalfUp(deref(sum.Fat)),
				C:    roundHalfUp(deref(sum.Carb)),
			}
		}
		out.Meals = append(out.Meals, m)
	}
	return out
}

// roundHalfUp rounds to the nearest whole unit, ties away from zero
// toward positive infinity. Nutrition values are non-negative once
// validated, so floor(v+0.5) is exact.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

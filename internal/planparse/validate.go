// internal/planparse/validate.go
package planparse

import (
	"fmt"
	"strings"
)

// ValidationError reports one violated constraint at a dotted field path,
// e.g. "meals[1].name".
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks the structural contract of an extracted document and
// returns every violation found. It never short-circuits: all meals are
// checked even after a failure, so a document with K independent problems
// yields exactly K errors. An empty result means the document is valid.
func Validate(doc *Document) []ValidationError {
	var errs []ValidationError
	add := func(field, message string) {
		errs = append(errs, ValidationError{Field: field, Message: message})
	}

	if doc == nil {
		add("", "document is missing")
		return errs
	}

	if doc.DailySummary == nil {
		add("daily_summary", "daily summary is missing")
	} else {
		sum := doc.DailySummary
		if sum.Kcal == nil || *sum.Kcal <= 0 {
			add("daily_summary.kcal", "kcal must be a positive number")
		}
		checkNonNegative(add, "daily_summary.proteins", sum.Proteins)
		checkNonNegative(add, "daily_summary.fats", sum.Fats)
		checkNonNegative(add, "daily_summary.carbs", sum.Carbs)
	}

	if len(doc.Meals) == 0 {
		add("meals", "plan must contain at least one meal")
		return errs
	}

	for i, meal := range doc.Meals {
		path := fmt.Sprintf("meals[%d]", i)
		if meal.Name == nil || strings.TrimSpace(*meal.Name) == "" {
			add(path+".name", "meal name must not be empty")
		}
		if meal.Ingredients == nil {
			add(path+".ingredients", "ingredients are missing")
		}
		if meal.Preparation == nil {
			add(path+".preparation", "preparation is missing")
		}
		if meal.Summary == nil {
			add(path+".summary", "meal summary is missing")
			continue
		}
		sum := meal.Summary
		if sum.Kcal == nil || *sum.Kcal <= 0 {
			add(path+".summary.kcal", "kcal must be a positive number")
		}
		checkNonNegative(add, path+".summary.protein", sum.Protein)
		checkNonNegative(add, path+".summary.fat", sum.Fat)
		checkNonNegative(add, path+".summary.carb", sum.Carb)
	}

	return errs
}

func checkNonNegative(add func(field, message string), field string, v *float64) {
	if v != nil && *v < 0 {
		add(field, "value must not be negative")
	}
}

// internal/planparse/validate_test.go
package planparse

import (
	"testing"
)

func fptr(v float64) *float64 { return &v }
func sptr(s string) *string   { return &s }

func validDoc() *Document {
	return &Document{
		DailySummary: &DailySummary{
			Kcal: fptr(2000), Proteins: fptr(150), Fats: fptr(56), Carbs: fptr(225),
		},
		Meals: []Meal{
			{
				Name:        sptr("Breakfast bowl"),
				Ingredients: sptr("oats, milk"),
				Preparation: sptr("cook"),
				Summary:     &MealSummary{Kcal: fptr(500), Protein: fptr(20), Fat: fptr(12), Carb: fptr(80)},
			},
		},
	}
}

func TestValidate_ValidDocument(t *testing.T) {
	if errs := Validate(validDoc()); len(errs) != 0 {
		t.Fatalf("valid document produced errors: %v", errs)
	}
}

func TestValidate_NilDocument(t *testing.T) {
	errs := Validate(nil)
	if len(errs) != 1 {
		t.Fatalf("errors: got %d, want 1", len(errs))
	}
}

// Validation is exhaustive: K independent violations yield exactly K
// errors with distinct field paths.
func TestValidate_Totality(t *testing.T) {
	doc := validDoc()
	doc.Meals = append(doc.Meals, doc.Meals[0], doc.Meals[0])
	doc.Meals[1].Name = sptr("   ")
	doc.Meals[2].Name = nil

	errs := Validate(doc)
	if len(errs) != 2 {
		t.Fatalf("errors: got %d, want 2: %v", len(errs), errs)
	}
	if errs[0].Field != "meals[1].name" {
		t.Errorf("first field: got %q, want meals[1].name", errs[0].Field)
	}
	if errs[1].Field != "meals[2].name" {
		t.Errorf("second field: got %q, want meals[2].name", errs[1].Field)
	}
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
		field  string
	}{
		{"missing summary container", func(d *Document) { d.DailySummary = nil }, "daily_summary"},
		{"zero daily kcal", func(d *Document) { d.DailySummary.Kcal = fptr(0) }, "daily_summary.kcal"},
		{"missing daily kcal", func(d *Document) { d.DailySummary.Kcal = nil }, "daily_summary.kcal"},
		{"negative proteins", func(d *Document) { d.DailySummary.Proteins = fptr(-1) }, "daily_summary.proteins"},
		{"negative fats", func(d *Document) { d.DailySummary.Fats = fptr(-3) }, "daily_summary.fats"},
		{"negative carbs", func(d *Document) { d.DailySummary.Carbs = fptr(-2) }, "daily_summary.carbs"},
		{"empty meal name", func(d *Document) { d.Meals[0].Name = sptr("  ") }, "meals[0].name"},
		{"missing ingredients", func(d *Document) { d.Meals[0].Ingredients = nil }, "meals[0].ingredients"},
		{"missing preparation", func(d *Document) { d.Meals[0].Preparation = nil }, "meals[0].preparation"},
		{"missing meal summary", func(d *Document) { d.Meals[0].Summary = nil }, "meals[0].summary"},
		{"zero meal kcal", func(d *Document) { d.Meals[0].Summary.Kcal = fptr(0) }, "meals[0].summary.kcal"},
		{"negative meal protein", func(d *Document) { d.Meals[0].Summary.Protein = fptr(-5) }, "meals[0].summary.protein"},
		{"negative meal fat", func(d *Document) { d.Meals[0].Summary.Fat = fptr(-5) }, "meals[0].summary.fat"},
		{"negative meal carb", func(d *Document) { d.Meals[0].Summary.Carb = fptr(-5) }, "meals[0].summary.carb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(doc)
			errs := Validate(doc)
			if len(errs) != 1 {
				t.Fatalf("errors: got %d, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.field {
				t.Errorf("field: got %q, want %q", errs[0].Field, tt.field)
			}
		})
	}
}

func TestValidate_EmptyMeals(t *testing.T) {
	doc := validDoc()
	doc.Meals = nil
	errs := Validate(doc)
	if len(errs) != 1 {
		t.Fatalf("errors: got %d, want 1: %v", len(errs), errs)
	}
	if errs[0].Field != "meals" {
		t.Errorf("field: got %q, want meals", errs[0].Field)
	}
}

func TestValidate_MissingMacrosAreAllowed(t *testing.T) {
	doc := validDoc()
	doc.DailySummary.Proteins = nil
	doc.Meals[0].Summary.Carb = nil
	if errs := Validate(doc); len(errs) != 0 {
		t.Fatalf("absent macros should not be violations: %v", errs)
	}
}

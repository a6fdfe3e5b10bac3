// internal/models/plan.go
package models

import (
    "time"
)

// MealPlanDocument is the normalized internal form of one day's plan:
// a daily nutrition summary plus an ordered, non-empty list of meals.
type MealPlanDocument struct {
    Summary DailySummary `json:"daily_summary"`
    Meals   []Meal       `json:"meals"`
}

// DailySummary holds whole-unit daily totals.
type DailySummary struct {
    Kcal     int `json:"kcal"`
    Proteins int `json:"proteins"`
    Fats     int `json:"fats"`
    Carbs    int `json:"carbs"`
}

type Meal struct {
    Name        string      `json:"name"`
    Ingredients string      `json:"ingredients"`
    Preparation string      `json:"preparation"`
    Summary     MealSummary `json:"summary"`
}

// MealSummary uses the internal short macro names, decoupled from
// whatever the source document calls them.
type MealSummary struct {
    Kcal int `json:"kcal"`
    P    int `json:"p"`
    F    int `json:"f"`
    C    int `json:"c"`
}

// PatientTargets is the intake-form input used to reconcile a missing or
// zero daily summary. The core never mutates it.
type PatientTargets struct {
    TargetKcal        *float64           `json:"target_kcal"`
    MacroDistribution *MacroDistribution `json:"macro_distribution"`
}

// MacroDistribution is the target macro split in percent of daily kcal.
type MacroDistribution struct {
    ProteinPerc float64 `json:"p_perc"`
    FatPerc     float64 `json:"f_perc"`
    CarbPerc    float64 `json:"c_perc"`
}

// PatientProfile carries the intake fields the prompt builder uses.
// Zero-value fields are simply left out of the prompt.
type PatientProfile struct {
    Name          string   `json:"name,omitempty"`
    Age           int      `json:"age,omitempty"`
    Gender        string   `json:"gender,omitempty"`
    WeightKg      float64  `json:"weight_kg,omitempty"`
    HeightCm      float64  `json:"height_cm,omitempty"`
    Goal          string   `json:"goal,omitempty"`
    ActivityLevel string   `json:"activity_level,omitempty"`
    DietType      string   `json:"diet_type,omitempty"`
    Allergies     []string `json:"allergies,omitempty"`
    Dislikes      []string `json:"dislikes,omitempty"`
}

// MealPlan is a persisted plan: the normalized document plus metadata.
type MealPlan struct {
    ID        string           `json:"id"`
    Document  MealPlanDocument `json:"document"`
    Comments  string           `json:"comments,omitempty"`
    Source    string           `json:"source"` // "generated", "parsed"
    CreatedAt time.Time        `json:"created_at"`
    UpdatedAt time.Time        `json:"updated_at"`
}

const (
    SourceGenerated = "generated"
    SourceParsed    = "parsed"
)

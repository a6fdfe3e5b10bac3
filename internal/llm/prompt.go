// internal/llm/prompt.go
package llm

import (
	"fmt"
	"strings"

	"nutriplan/internal/models"
)

// PlanSystemPrompt pins the reply contract to the canonical JSON wire
// shape the plan codec expects.
const PlanSystemPrompt = `You are a professional nutritionist creating daily meal plans.

IMPORTANT: Always respond with valid JSON in this exact format:
{
  "meal_plan": {
    "daily_summary": {
      "kcal": [number],
      "proteins": [number],
      "fats": [number],
      "carbs": [number]
    },
    "meals": [
      {
        "name": "meal name",
        "ingredients": "ingredient list with quantities",
        "preparation": "preparation steps",
        "summary": {
          "kcal": [number],
          "protein": [number],
          "fat": [number],
          "carb": [number]
        }
      }
    ]
  },
  "comments": "short commentary for the patient"
}

Per-meal summaries must add up to the daily summary. Use whole numbers
for all nutrition values.`

// ChatSystemPrompt is used on the conversational websocket channel,
// where replies may but need not contain a plan document.
const ChatSystemPrompt = `You are a professional nutritionist assisting with meal planning.
When the user asks for a full daily plan, embed it as a JSON object with a
top-level "meal_plan" key ({"daily_summary": ..., "meals": [...]}) and put
any commentary in a sibling "comments" string. For everything else, answer
in plain text.`

// BuildPlanPrompt assembles the patient profile and targets into the
// user prompt for plan generation. Zero-value profile fields are left
// out rather than sent as empty lines.
func BuildPlanPrompt(profile *models.PatientProfile, targets *models.PatientTargets) string {
	var b strings.Builder
	b.WriteString("Create a daily meal plan for this patient.\n\nPATIENT PROFILE:\n")

	if profile != nil {
		if profile.Name != "" {
			fmt.Fprintf(&b, "- Name: %s\n", profile.Name)
		}
		if profile.Age > 0 {
			fmt.Fprintf(&b, "- Age: %d years\n", profile.Age)
		}
		if profile.Gender != "" {
			fmt.Fprintf(&b, "- Gender: %s\n", profile.Gender)
		}
		if profile.WeightKg > 0 {
			fmt.Fprintf(&b, "- Weight: %.1f kg\n", profile.WeightKg)
		}
		if profile.HeightCm > 0 {
			fmt.Fprintf(&b, "- Height: %.0f cm\n", profile.HeightCm)
		}
		if profile.Goal != "" {
			fmt.Fprintf(&b, "- Goal: %s\n", profile.Goal)
		}
		if profile.ActivityLevel != "" {
			fmt.Fprintf(&b, "- Activity level: %s\n", profile.ActivityLevel)
		}
		if profile.DietType != "" {
			fmt.Fprintf(&b, "- Diet type: %s\n", profile.DietType)
		}
		if len(profile.Allergies) > 0 {
			fmt.Fprintf(&b, "- Allergies: %s\n", strings.Join(profile.Allergies, ", "))
		}
		if len(profile.Dislikes) > 0 {
			fmt.Fprintf(&b, "- Dislikes: %s\n", strings.Join(profile.Dislikes, ", "))
		}
	}

	if targets != nil {
		b.WriteString("\nNUTRITION TARGETS:\n")
		if targets.TargetKcal != nil {
			fmt.Fprintf(&b, "- Daily calories: %.0f kcal\n", *targets.TargetKcal)
		}
		if dist := targets.MacroDistribution; dist != nil {
			fmt.Fprintf(&b, "- Macro split: %.0f%% protein, %.0f%% fat, %.0f%% carbs\n",
				dist.ProteinPerc, dist.FatPerc, dist.CarbPerc)
		}
	}

	b.WriteString("\nProvide realistic portions and make the per-meal summaries consistent with the daily summary.")
	return b.String()
}

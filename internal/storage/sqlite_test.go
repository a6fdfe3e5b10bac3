// internal/storage/sqlite_test.go
package storage

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"nutriplan/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	stor, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "plans.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { stor.Close() })
	return stor
}

func samplePlan(id string, createdAt time.Time) *models.MealPlan {
	return &models.MealPlan{
		ID: id,
		Document: models.MealPlanDocument{
			Summary: models.DailySummary{Kcal: 2000, Proteins: 150, Fats: 56, Carbs: 225},
			Meals: []models.Meal{
				{
					Name:        "Porridge",
					Ingredients: "oats, milk",
					Preparation: "cook",
					Summary:     models.MealSummary{Kcal: 500, P: 20, F: 12, C: 80},
				},
				{
					Name:        "Chicken and rice",
					Ingredients: "chicken, rice",
					Preparation: "grill and boil",
					Summary:     models.MealSummary{Kcal: 700, P: 60, F: 18, C: 75},
				},
			},
		},
		Comments:  "stay hydrated",
		Source:    models.SourceGenerated,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestSaveAndGetPlan(t *testing.T) {
	stor := newTestStorage(t)
	now := time.Now().UTC().Truncate(time.Second)
	plan := samplePlan("plan-1", now)

	if err := stor.SavePlan(plan); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	got, err := stor.GetPlan("plan-1")
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if got.ID != plan.ID || got.Source != plan.Source || got.Comments != plan.Comments {
		t.Errorf("metadata: got %+v", got)
	}
	if !got.CreatedAt.Equal(plan.CreatedAt) {
		t.Errorf("created_at: got %v, want %v", got.CreatedAt, plan.CreatedAt)
	}
	if !reflect.DeepEqual(got.Document, plan.Document) {
		t.Errorf("document:\n got %+v\nwant %+v", got.Document, plan.Document)
	}
}

func TestGetPlan_NotFound(t *testing.T) {
	stor := newTestStorage(t)
	if _, err := stor.GetPlan("missing"); err != ErrNotFound {
		t.Errorf("GetPlan: got %v, want ErrNotFound", err)
	}
}

func TestGetPlans_OrderAndLimit(t *testing.T) {
	stor := newTestStorage(t)
	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"old", "mid", "new"} {
		plan := samplePlan(id, base.Add(time.Duration(i)*time.Hour))
		if err := stor.SavePlan(plan); err != nil {
			t.Fatalf("SavePlan %s: %v", id, err)
		}
	}

	plans, err := stor.GetPlans("", "", 2)
	if err != nil {
		t.Fatalf("GetPlans: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("plans: got %d, want 2", len(plans))
	}
	if plans[0].ID != "new" || plans[1].ID != "mid" {
		t.Errorf("order: got %s, %s", plans[0].ID, plans[1].ID)
	}
	if len(plans[0].Document.Meals) != 2 {
		t.Errorf("meals not loaded: got %d", len(plans[0].Document.Meals))
	}
}

func TestGetPlans_DateRange(t *testing.T) {
	stor := newTestStorage(t)
	day := func(s string) time.Time {
		ts, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatal(err)
		}
		return ts
	}
	for id, d := range map[string]string{
		"jan": "2026-01-10",
		"feb": "2026-02-10",
		"mar": "2026-03-10",
	} {
		if err := stor.SavePlan(samplePlan(id, day(d))); err != nil {
			t.Fatalf("SavePlan %s: %v", id, err)
		}
	}

	plans, err := stor.GetPlans("2026-02-01", "2026-02-28", 10)
	if err != nil {
		t.Fatalf("GetPlans: %v", err)
	}
	if len(plans) != 1 || plans[0].ID != "feb" {
		t.Errorf("range query: got %+v", plans)
	}
}

func TestDeletePlan(t *testing.T) {
	stor := newTestStorage(t)
	if err := stor.SavePlan(samplePlan("gone", time.Now().UTC())); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	if err := stor.DeletePlan("gone"); err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if _, err := stor.GetPlan("gone"); err != ErrNotFound {
		t.Errorf("GetPlan after delete: got %v, want ErrNotFound", err)
	}
	if err := stor.DeletePlan("gone"); err != ErrNotFound {
		t.Errorf("DeletePlan twice: got %v, want ErrNotFound", err)
	}

	// Meal rows must go with the plan, not linger as orphans.
	var orphans int
	if err := stor.db.QueryRow("SELECT COUNT(*) FROM meals WHERE plan_id = ?", "gone").Scan(&orphans); err != nil {
		t.Fatalf("count meals: %v", err)
	}
	if orphans != 0 {
		t.Errorf("orphan meals: got %d, want 0", orphans)
	}
}

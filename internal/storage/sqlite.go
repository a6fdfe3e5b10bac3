// internal/storage/sqlite.go
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"nutriplan/internal/models"
)

// ErrNotFound is returned when a plan id does not exist.
var ErrNotFound = errors.New("meal plan not found")

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS plans (
        id TEXT PRIMARY KEY,
        source TEXT NOT NULL,
        comments TEXT NOT NULL,
        kcal INTEGER NOT NULL,
        proteins INTEGER NOT NULL,
        fats INTEGER NOT NULL,
        carbs INTEGER NOT NULL,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS meals (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        plan_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        name TEXT NOT NULL,
        ingredients TEXT NOT NULL,
        preparation TEXT NOT NULL,
        kcal INTEGER NOT NULL,
        p INTEGER NOT NULL,
        f INTEGER NOT NULL,
        c INTEGER NOT NULL,
        FOREIGN KEY (plan_id) REFERENCES plans(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at);
    CREATE INDEX IF NOT EXISTS idx_meals_plan_id ON meals(plan_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) SavePlan(plan *models.MealPlan) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	planQuery := `
        INSERT INTO plans (id, source, comments, kcal, proteins, fats, carbs, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	sum := plan.Document.Summary
	_, err = tx.Exec(planQuery,
		plan.ID, plan.Source, plan.Comments,
		sum.Kcal, sum.Proteins, sum.Fats, sum.Carbs,
		plan.CreatedAt.UTC().Format(time.RFC3339), plan.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	mealQuery := `
        INSERT INTO meals (plan_id, position, name, ingredients, preparation, kcal, p, f, c)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	for i, meal := range plan.Document.Meals {
		_, err = tx.Exec(mealQuery,
			plan.ID, i, meal.Name, meal.Ingredients, meal.Preparation,
			meal.Summary.Kcal, meal.Summary.P, meal.Summary.F, meal.Summary.C)
		if err != nil {
			return fmt.Errorf("failed to insert meal: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStorage) GetPlans(startDate, endDate string, limit int) ([]*models.MealPlan, error) {
	query := `
        SELECT id, source, comments, kcal, proteins, fats, carbs, created_at, updated_at
        FROM plans
        WHERE 1=1
    `
	args := []interface{}{}

	if startDate != "" {
		query += " AND DATE(created_at) >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		query += " AND DATE(created_at) <= ?"
		args = append(args, endDate)
	}

	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.MealPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}

	for _, plan := range plans {
		if err := s.loadMealsForPlan(plan); err != nil {
			return nil, fmt.Errorf("failed to load meals for plan %s: %w", plan.ID, err)
		}
	}

	return plans, nil
}

func (s *SQLiteStorage) GetPlan(id string) (*models.MealPlan, error) {
	query := `
        SELECT id, source, comments, kcal, proteins, fats, carbs, created_at, updated_at
        FROM plans
        WHERE id = ?
    `
	rows, err := s.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNotFound
	}
	plan, err := scanPlan(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	if err := s.loadMealsForPlan(plan); err != nil {
		return nil, fmt.Errorf("failed to load meals for plan %s: %w", plan.ID, err)
	}
	return plan, nil
}

func (s *SQLiteStorage) DeletePlan(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM plans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM meals WHERE plan_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete plan meals: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func scanPlan(rows *sql.Rows) (*models.MealPlan, error) {
	plan := &models.MealPlan{}
	var createdAtStr, updatedAtStr string

	err := rows.Scan(
		&plan.ID, &plan.Source, &plan.Comments,
		&plan.Document.Summary.Kcal, &plan.Document.Summary.Proteins,
		&plan.Document.Summary.Fats, &plan.Document.Summary.Carbs,
		&createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to scan plan: %w", err)
	}

	if plan.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if plan.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return plan, nil
}

func (s *SQLiteStorage) loadMealsForPlan(plan *models.MealPlan) error {
	query := `
        SELECT name, ingredients, preparation, kcal, p, f, c
        FROM meals
        WHERE plan_id = ?
        ORDER BY position
    `

	rows, err := s.db.Query(query, plan.ID)
	if err != nil {
		return fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	var meals []models.Meal
	for rows.Next() {
		meal := models.Meal{}
		err := rows.Scan(
			&meal.Name, &meal.Ingredients, &meal.Preparation,
			&meal.Summary.Kcal, &meal.Summary.P, &meal.Summary.F, &meal.Summary.C)
		if err != nil {
			return fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate meals: %w", err)
	}

	plan.Document.Meals = meals
	return nil
}

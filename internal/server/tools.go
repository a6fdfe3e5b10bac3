// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/google/uuid"

	"nutriplan/internal/llm"
	"nutriplan/internal/models"
	"nutriplan/internal/planparse"
	"nutriplan/internal/reconcile"
)

type GeneratePlanParams struct {
	Profile *models.PatientProfile `json:"profile,omitempty" description:"Patient intake profile used to build the prompt"`
	Targets *models.PatientTargets `json:"targets,omitempty" description:"Target calories and macro distribution"`
}

type ParsePlanParams struct {
	RawMessage string                 `json:"raw_message" description:"Assistant message to parse"`
	Targets    *models.PatientTargets `json:"targets,omitempty" description:"Targets used to reconcile a missing daily summary"`
}

type GetPlansParams struct {
	StartDate string `json:"start_date,omitempty" description:"Start date for plan query (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" description:"End date for plan query (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" description:"Maximum number of plans to return"`
}

type PlanIDParams struct {
	ID string `json:"id" description:"Plan identifier"`
}

// ParseOutcome is the result of running one assistant message through
// the extract/validate/normalize/reconcile pipeline.
type ParseOutcome struct {
	// Status: found, invalid, not_found or syntax_error.
	Status     string                      `json:"status"`
	Plan       *models.MealPlanDocument    `json:"plan,omitempty"`
	Errors     []planparse.ValidationError `json:"errors,omitempty"`
	Comments   string                      `json:"comments,omitempty"`
	Fallback   *models.MealPlanDocument    `json:"fallback,omitempty"`
	Diagnostic string                      `json:"diagnostic,omitempty"`
}

const (
	OutcomeFound       = "found"
	OutcomeInvalid     = "invalid"
	OutcomeNotFound    = "not_found"
	OutcomeSyntaxError = "syntax_error"
)

// registerTools wires the tool names the HTTP dispatcher accepts.
func (s *PlanServer) registerTools() {
	s.tools = map[string]toolHandler{
		"generate_meal_plan": s.handleGeneratePlan,
		"parse_meal_plan":    s.handleParsePlan,
		"get_meal_plans":     s.handleGetPlans,
		"get_meal_plan":      s.handleGetPlan,
		"delete_meal_plan":   s.handleDeletePlan,
	}
	for name := range s.tools {
		s.log.Debug().Str("tool", name).Msg("registered tool")
	}
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal parameters: %w", err)
	}

	return nil
}

// processMessage runs the pure core over one assistant message.
// Comments are extracted independently, so they survive a plan that is
// absent or fails validation. Daily-summary violations are forgiven when
// reconciliation against the targets produced a usable summary.
func (s *PlanServer) processMessage(raw string, targets *models.PatientTargets) ParseOutcome {
	comments, _ := s.codec.ExtractComments(raw)

	ext := s.codec.Extract(raw)
	switch ext.Status {
	case planparse.StatusSyntaxError:
		return ParseOutcome{Status: OutcomeSyntaxError, Diagnostic: ext.Err, Comments: comments}
	case planparse.StatusNotFound:
		fallback := ext.FallbackDocument()
		return ParseOutcome{Status: OutcomeNotFound, Fallback: &fallback, Comments: comments}
	}

	errs := planparse.Validate(ext.Doc)
	doc := planparse.Normalize(ext.Doc)
	resolved := reconcile.Resolve(doc.Summary, targets)
	// Forgive daily_summary violations only when reconciliation actually
	// replaced the summary. A parsed summary with positive kcal wins
	// reconciliation unchanged, so its violations must stand.
	if doc.Summary.Kcal <= 0 && resolved.Kcal > 0 {
		errs = dropSummaryErrors(errs)
	}
	doc.Summary = resolved

	if len(errs) > 0 {
		return ParseOutcome{Status: OutcomeInvalid, Errors: errs, Comments: comments}
	}
	return ParseOutcome{Status: OutcomeFound, Plan: &doc, Comments: comments}
}

// dropSummaryErrors removes daily_summary violations that reconciliation
// has already repaired. Meal-level errors always stand.
func dropSummaryErrors(errs []planparse.ValidationError) []planparse.ValidationError {
	var kept []planparse.ValidationError
	for _, e := range errs {
		if strings.HasPrefix(e.Field, "daily_summary") {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// handleGeneratePlan builds the prompt, calls the completion gateway,
// parses the reply and persists the plan when it is usable.
func (s *PlanServer) handleGeneratePlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GeneratePlanParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	userPrompt := llm.BuildPlanPrompt(params.Profile, params.Targets)
	content, err := s.completer.Complete(ctx, llm.PlanSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	outcome := s.processMessage(content, params.Targets)
	if outcome.Status != OutcomeFound {
		s.log.Warn().Str("status", outcome.Status).Msg("generated reply did not yield a valid plan")
		return s.createJSONResponse(outcome)
	}

	now := time.Now()
	plan := &models.MealPlan{
		ID:        uuid.NewString(),
		Document:  *outcome.Plan,
		Comments:  outcome.Comments,
		Source:    models.SourceGenerated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.SavePlan(plan); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	return s.createJSONResponse(map[string]interface{}{
		"status":   outcome.Status,
		"plan_id":  plan.ID,
		"plan":     plan.Document,
		"comments": plan.Comments,
	})
}

// handleParsePlan runs the parsing core over a supplied message without
// calling the LLM or persisting anything.
func (s *PlanServer) handleParsePlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ParsePlanParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.RawMessage == "" {
		return nil, fmt.Errorf("raw_message is required")
	}

	return s.createJSONResponse(s.processMessage(params.RawMessage, params.Targets))
}

// handleGetPlans retrieves stored plans by date range.
func (s *PlanServer) handleGetPlans(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetPlansParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Limit <= 0 {
		params.Limit = 20
	}

	plans, err := s.storage.GetPlans(params.StartDate, params.EndDate, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve plans: %w", err)
	}

	return s.createJSONResponse(plans)
}

func (s *PlanServer) handleGetPlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params PlanIDParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.ID == "" {
		return nil, fmt.Errorf("plan id is required")
	}

	plan, err := s.storage.GetPlan(params.ID)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(plan)
}

func (s *PlanServer) handleDeletePlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params PlanIDParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.ID == "" {
		return nil, fmt.Errorf("plan id is required")
	}

	if err := s.storage.DeletePlan(params.ID); err != nil {
		return nil, err
	}
	return s.createJSONResponse(map[string]string{"deleted": params.ID})
}

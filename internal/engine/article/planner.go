package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	// ErrEmptyPlanResponse is returned when the model answers with nothing.
	ErrEmptyPlanResponse = errors.New("empty plan response")
	// ErrInvalidPlanJSON is returned when no JSON object can be decoded.
	ErrInvalidPlanJSON = errors.New("plan response is not valid JSON")
)

// DefaultTargetWords is the article length asked for when a run gives none.
const DefaultTargetWords = 3500

// Completer sends a prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PlanRequest describes the article to plan.
type PlanRequest struct {
	Transcript  string // timestamped text
	Instruction string
	TargetWords int
	MaxImages   int // <= 0: model decides
}

// Planner builds article plans with a language model.
type Planner struct {
	llm    Completer
	logger *slog.Logger
}

// NewPlanner creates a Planner.
func NewPlanner(llm Completer, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{llm: llm, logger: logger}
}

// BuildPrompt renders the planning prompt.
func BuildPrompt(req PlanRequest) string {
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		instruction = DefaultInstruction
	}
	words := req.TargetWords
	if words <= 0 {
		words = DefaultTargetWords
	}
	limit := imageLimitOpen
	if req.MaxImages > 0 {
		limit = fmt.Sprintf(imageLimitCapped, req.MaxImages)
	}
	return fmt.Sprintf(planPrompt, words, limit, instruction, req.Transcript)
}

// Plan asks the model for a plan and normalizes it.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*Plan, error) {
	text, err := p.llm.Complete(ctx, BuildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("plan completion: %w", err)
	}
	raw, err := DecodePlan(text)
	if err != nil {
		p.logger.Warn("plan decode failed", slog.Int("response_len", len(text)), slog.Any("error", err))
		return nil, err
	}
	plan := NormalizePlan(raw, req.MaxImages)
	p.logger.Debug("plan ready",
		slog.String("title", plan.Title),
		slog.Int("sections", len(plan.Sections)),
		slog.Int("images", plan.ImageCount()))
	return &plan, nil
}

package intent

import (
	"context"
	"fmt"
	"log/slog"

	"meetbot/internal/domain"
)

// Advisor asks the text-understanding provider whether an unmatched
// participant looks like a real business contact worth recording as a
// registry entry.
type Advisor struct {
	provider domain.Provider
	logger   *slog.Logger
}

type AdvisorConfig struct {
	Provider domain.Provider
	Logger   *slog.Logger
}

func NewAdvisor(cfg AdvisorConfig) *Advisor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Advisor{provider: cfg.Provider, logger: cfg.Logger}
}

type advicePayload struct {
	ShouldCreate  bool   `json:"should_create"`
	Reason        string `json:"reason"`
	SuggestedType string `json:"suggested_type"`
}

const adviceSystemPrompt = `You are a business development assistant.
Based on the company information provided, decide if we should record a new lead in our database.
Consider:
- Is this likely a real company?
- Does the email domain match the company name?
- Is this a business email (not gmail, hotmail, etc.)?

Answer with a single JSON object using exactly these keys:
  should_create (boolean), reason (string), suggested_type ("customer" or "lead")`

// Assess implements domain.LeadAdvisor.
func (a *Advisor) Assess(ctx context.Context, companyName, email string) (*domain.LeadAdvice, error) {
	resp, err := a.provider.Complete(ctx, domain.CompletionRequest{
		System:      adviceSystemPrompt,
		Prompt:      fmt.Sprintf("Company: %s\nEmail: %s", companyName, email),
		MaxTokens:   1024,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("lead assessment: %w", err)
	}

	var payload advicePayload
	if err := decodeObject(resp.Content, &payload); err != nil {
		return nil, fmt.Errorf("lead assessment: %w", err)
	}

	kind := domain.MatchLead
	if payload.SuggestedType == "customer" {
		kind = domain.MatchCustomer
	}

	a.logger.Info("lead assessment",
		"company", companyName,
		"should_create", payload.ShouldCreate,
		"suggested", kind,
	)
	return &domain.LeadAdvice{
		ShouldCreate: payload.ShouldCreate,
		Reason:       payload.Reason,
		Kind:         kind,
	}, nil
}

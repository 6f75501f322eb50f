package intent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"meetbot/internal/domain"
)

// Extractor asks a text-understanding provider to map a free-form bilingual
// request onto the fixed intent schema. All datetime anchoring is driven by
// the request's reference time; the extractor never reads the clock itself.
type Extractor struct {
	provider domain.Provider
	loc      *time.Location
	logger   *slog.Logger
}

type ExtractorConfig struct {
	Provider domain.Provider
	Location *time.Location
	Logger   *slog.Logger
}

func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Extractor{
		provider: cfg.Provider,
		loc:      cfg.Location,
		logger:   cfg.Logger,
	}
}

// extractionPayload is the schema the service must return. Any field may be
// absent; absent fields stay zero and become validation gaps downstream.
type extractionPayload struct {
	Title         string `json:"title"`
	AttendeeEmail string `json:"attendee_email"`
	Datetime      string `json:"datetime"`
	Duration      int    `json:"duration"`
	Language      string `json:"language"`
	Notes         string `json:"notes"`
}

const extractionSystemPrompt = `You are a bilingual (French/English) meeting scheduling assistant.
Extract the following from the meeting request and answer with a single JSON object using exactly these keys:
  title, attendee_email, datetime, duration, language, notes

Rules:
- Omit or null any field that is not present in the request. NEVER invent a value.
- attendee_email: any email address found anywhere in the text.
- datetime: ISO 8601 in the %s timezone. Times must be EXACTLY as the user said them, with no adjustment: "14h30" is 14:30, "2pm" is 14:00.
- Current time in %s: %s. "tomorrow"/"demain" is %s. A bare weekday name means its next occurrence after the current time.
- duration: minutes, integer. Omit when not stated.
- language: "en" or "fr", the language of the request.
- notes: the stated purpose or agenda, verbatim, if any.

The request may be in French or English; always return the same JSON keys.

Example:
Input: "Réunion demain à 14h30 avec vincent@keerok.tech"
Output: {"title": "Réunion", "attendee_email": "vincent@keerok.tech", "datetime": "%sT14:30:00", "duration": null, "language": "fr", "notes": null}`

func (e *Extractor) systemPrompt(ref time.Time) string {
	local := ref.In(e.loc)
	tomorrow := local.AddDate(0, 0, 1).Format("2006-01-02")
	return fmt.Sprintf(extractionSystemPrompt,
		e.loc.String(),
		e.loc.String(),
		local.Format("Monday 2006-01-02 15:04"),
		tomorrow,
		tomorrow,
	)
}

// Extract implements domain.Extractor. It is pure in (req.Text,
// req.ReferenceTime) up to the service's own determinism (temperature 0).
func (e *Extractor) Extract(ctx context.Context, req domain.RawRequest) (*domain.IntentCandidate, error) {
	if req.Text == "" {
		return nil, &domain.ExtractionError{Reason: "empty request text"}
	}

	resp, err := e.provider.Complete(ctx, domain.CompletionRequest{
		System:      e.systemPrompt(req.ReferenceTime),
		Prompt:      req.Text,
		MaxTokens:   1024,
		Temperature: 0,
	})
	if err != nil {
		return nil, &domain.ExtractionError{Reason: "text-understanding service unreachable", Err: err}
	}

	var payload extractionPayload
	if err := decodeObject(resp.Content, &payload); err != nil {
		e.logger.Error("unparsable extraction response", "content", resp.Content, "err", err)
		return nil, &domain.ExtractionError{Reason: "unparsable service response", Err: err}
	}

	cand := &domain.IntentCandidate{
		Title:            payload.Title,
		ParticipantEmail: payload.AttendeeEmail,
		DurationMinutes:  payload.Duration,
		NotesContext:     payload.Notes,
	}

	if payload.Datetime != "" {
		t, err := Canonicalize(payload.Datetime, req.ReferenceTime, e.loc)
		if err != nil {
			// An unusable datetime string is a gap, not a fatal failure:
			// the validator reports it and interactive mode can clarify.
			e.logger.Warn("datetime not canonicalizable", "raw", payload.Datetime, "err", err)
		} else {
			cand.StartTime = &t
		}
	}

	if lang, ok := canonicalLanguage(payload.Language); ok {
		cand.Language = lang
	} else {
		cand.Language = detectLanguage(req.Text)
	}

	e.logger.Info("intent extracted",
		"email", cand.ParticipantEmail,
		"has_time", cand.StartTime != nil,
		"language", cand.Language,
		"tokens", resp.Usage.TotalTokens,
	)
	return cand, nil
}

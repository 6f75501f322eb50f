package intent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"meetbot/internal/domain"
)

// Terminal prompts the operator once per gap on the terminal and parses the
// answer with the same extraction rules as the original request.
type Terminal struct {
	extractor domain.Extractor
	in        *bufio.Scanner
	out       io.Writer
	logger    *slog.Logger
}

type TerminalConfig struct {
	Extractor domain.Extractor
	In        io.Reader
	Out       io.Writer
	Logger    *slog.Logger
}

func NewTerminal(cfg TerminalConfig) *Terminal {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stderr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Terminal{
		extractor: cfg.Extractor,
		in:        bufio.NewScanner(cfg.In),
		out:       cfg.Out,
		logger:    cfg.Logger,
	}
}

var clarifyPrompts = map[string]map[domain.Language]string{
	"participant_email": {
		domain.LangEnglish: "What is the attendee's email?",
		domain.LangFrench:  "Quel est l'email du participant ?",
	},
	"start_time": {
		domain.LangEnglish: "When should the meeting take place?",
		domain.LangFrench:  "Quand la réunion doit-elle avoir lieu ?",
	},
	"duration": {
		domain.LangEnglish: "How long should the meeting be (in minutes)?",
		domain.LangFrench:  "Quelle est la durée de la réunion (en minutes) ?",
	},
}

// Clarify asks one question for the gap, re-extracts the free-text answer,
// and merges the extracted fields into the candidate. It does not loop: the
// caller re-validates, and a second failure on the same field is final.
func (t *Terminal) Clarify(ctx context.Context, req domain.RawRequest, cand *domain.IntentCandidate, gap *domain.ValidationError) (*domain.IntentCandidate, error) {
	question := promptFor(gap.Field, cand.Language)
	fmt.Fprintf(t.out, "\n%s\n> ", question)

	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return nil, fmt.Errorf("read answer: %w", err)
		}
		return nil, gap // EOF: treat as unanswered
	}
	answer := strings.TrimSpace(t.in.Text())
	if answer == "" {
		return nil, gap
	}

	t.logger.Info("clarification answered", "field", gap.Field)

	extracted, err := t.extractor.Extract(ctx, domain.RawRequest{
		Text:          answer,
		ReferenceTime: req.ReferenceTime,
	})
	if err != nil {
		return nil, err
	}

	// The gapped field may hold an invalid value (e.g. a past time), not just
	// be absent; clear it so the answer can replace it.
	cleared := *cand
	switch gap.Field {
	case "participant_email":
		cleared.ParticipantEmail = ""
	case "start_time":
		cleared.StartTime = nil
	case "duration":
		cleared.DurationMinutes = 0
	}

	return merge(&cleared, extracted), nil
}

func promptFor(field string, lang domain.Language) string {
	byLang, ok := clarifyPrompts[field]
	if !ok {
		if lang == domain.LangFrench {
			return fmt.Sprintf("Information manquante : %s ?", field)
		}
		return fmt.Sprintf("Missing information: %s?", field)
	}
	if q, ok := byLang[lang]; ok {
		return q
	}
	return byLang[domain.LangEnglish]
}

// merge fills each gap in base with the value extracted from the answer.
// Fields base already holds are kept; clarification only adds, never rewrites.
func merge(base, answer *domain.IntentCandidate) *domain.IntentCandidate {
	merged := *base
	if merged.ParticipantEmail == "" {
		merged.ParticipantEmail = answer.ParticipantEmail
	}
	if merged.StartTime == nil {
		merged.StartTime = answer.StartTime
	}
	if merged.DurationMinutes == 0 {
		merged.DurationMinutes = answer.DurationMinutes
	}
	if merged.Title == "" {
		merged.Title = answer.Title
	}
	if merged.NotesContext == "" {
		merged.NotesContext = answer.NotesContext
	}
	return &merged
}

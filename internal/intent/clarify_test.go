package intent

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"meetbot/internal/domain"
)

// mockExtractor returns a fixed candidate and records the answer text.
type mockExtractor struct {
	cand     *domain.IntentCandidate
	err      error
	lastText string
	lastRef  time.Time
}

func (m *mockExtractor) Extract(_ context.Context, req domain.RawRequest) (*domain.IntentCandidate, error) {
	m.lastText = req.Text
	m.lastRef = req.ReferenceTime
	if m.err != nil {
		return nil, m.err
	}
	return m.cand, nil
}

func TestTerminal_FillsGapFromAnswer(t *testing.T) {
	ref := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	answered := ref.Add(26 * time.Hour)
	extractor := &mockExtractor{cand: &domain.IntentCandidate{StartTime: &answered}}

	var out bytes.Buffer
	term := NewTerminal(TerminalConfig{
		Extractor: extractor,
		In:        strings.NewReader("tomorrow at 11am\n"),
		Out:       &out,
		Logger:    testLogger(),
	})

	base := &domain.IntentCandidate{ParticipantEmail: "a@b.com", Language: domain.LangEnglish}
	gap := &domain.ValidationError{Field: "start_time", Message: "missing or ambiguous meeting time"}

	merged, err := term.Clarify(context.Background(), domain.RawRequest{ReferenceTime: ref}, base, gap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.StartTime == nil || !merged.StartTime.Equal(answered) {
		t.Errorf("expected answered time, got %v", merged.StartTime)
	}
	if merged.ParticipantEmail != "a@b.com" {
		t.Errorf("existing fields must survive the merge, got %q", merged.ParticipantEmail)
	}
	if extractor.lastText != "tomorrow at 11am" {
		t.Errorf("answer should be re-extracted, got %q", extractor.lastText)
	}
	if !extractor.lastRef.Equal(ref) {
		t.Errorf("answer must anchor to the original reference time, got %s", extractor.lastRef)
	}
	if !strings.Contains(out.String(), "When should the meeting take place?") {
		t.Errorf("expected english prompt, got %q", out.String())
	}
}

func TestTerminal_FrenchPrompt(t *testing.T) {
	extractor := &mockExtractor{cand: &domain.IntentCandidate{ParticipantEmail: "v@k.fr"}}
	var out bytes.Buffer
	term := NewTerminal(TerminalConfig{
		Extractor: extractor,
		In:        strings.NewReader("v@k.fr\n"),
		Out:       &out,
		Logger:    testLogger(),
	})

	base := &domain.IntentCandidate{Language: domain.LangFrench}
	gap := &domain.ValidationError{Field: "participant_email", Message: "missing participant email"}
	if _, err := term.Clarify(context.Background(), domain.RawRequest{}, base, gap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Quel est l'email du participant ?") {
		t.Errorf("expected french prompt, got %q", out.String())
	}
}

func TestTerminal_EOFReturnsGap(t *testing.T) {
	term := NewTerminal(TerminalConfig{
		Extractor: &mockExtractor{},
		In:        strings.NewReader(""),
		Out:       &bytes.Buffer{},
		Logger:    testLogger(),
	})
	gap := &domain.ValidationError{Field: "participant_email", Message: "missing participant email"}
	_, err := term.Clarify(context.Background(), domain.RawRequest{}, &domain.IntentCandidate{}, gap)
	if err != gap {
		t.Errorf("expected the gap back on EOF, got %v", err)
	}
}

func TestTerminal_BlankAnswerReturnsGap(t *testing.T) {
	term := NewTerminal(TerminalConfig{
		Extractor: &mockExtractor{},
		In:        strings.NewReader("   \n"),
		Out:       &bytes.Buffer{},
		Logger:    testLogger(),
	})
	gap := &domain.ValidationError{Field: "start_time", Message: "missing or ambiguous meeting time"}
	_, err := term.Clarify(context.Background(), domain.RawRequest{}, &domain.IntentCandidate{}, gap)
	if err != gap {
		t.Errorf("expected the gap back on blank answer, got %v", err)
	}
}

func TestTerminal_InvalidValueReplaced(t *testing.T) {
	ref := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	past := ref.Add(-48 * time.Hour)
	answered := ref.Add(24 * time.Hour)
	extractor := &mockExtractor{cand: &domain.IntentCandidate{StartTime: &answered}}

	term := NewTerminal(TerminalConfig{
		Extractor: extractor,
		In:        strings.NewReader("tomorrow at 9\n"),
		Out:       &bytes.Buffer{},
		Logger:    testLogger(),
	})

	// The candidate holds a past time, not a missing one; the answer must
	// replace it rather than being discarded by the merge.
	base := &domain.IntentCandidate{ParticipantEmail: "a@b.com", StartTime: &past}
	gap := &domain.ValidationError{Field: "start_time", Message: "meeting time is not in the future"}

	merged, err := term.Clarify(context.Background(), domain.RawRequest{ReferenceTime: ref}, base, gap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.StartTime == nil || !merged.StartTime.Equal(answered) {
		t.Errorf("expected replaced time %s, got %v", answered, merged.StartTime)
	}
}

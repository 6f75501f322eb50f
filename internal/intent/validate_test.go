package intent

import (
	"errors"
	"testing"
	"time"

	"meetbot/internal/domain"
)

var validateRef = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func futureTime() *time.Time {
	ts := validateRef.Add(24 * time.Hour)
	return &ts
}

func TestValidate_Complete(t *testing.T) {
	v := NewValidator(30 * time.Minute)
	intent, err := v.Validate(&domain.IntentCandidate{
		Title:            "First call",
		ParticipantEmail: "john@company.com",
		StartTime:        futureTime(),
		DurationMinutes:  45,
		Language:         domain.LangEnglish,
		NotesContext:     "  discuss onboarding  ",
	}, validateRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Duration != 45*time.Minute {
		t.Errorf("expected 45m duration, got %s", intent.Duration)
	}
	if intent.NotesContext != "discuss onboarding" {
		t.Errorf("expected trimmed notes, got %q", intent.NotesContext)
	}
}

func TestValidate_MissingEmail(t *testing.T) {
	v := NewValidator(0)
	_, err := v.Validate(&domain.IntentCandidate{StartTime: futureTime()}, validateRef)
	assertGap(t, err, "participant_email")
}

func TestValidate_MalformedEmail(t *testing.T) {
	v := NewValidator(0)
	for _, email := range []string{"not-an-email", "john@", "john@localhost", "a b@x.com"} {
		_, err := v.Validate(&domain.IntentCandidate{
			ParticipantEmail: email,
			StartTime:        futureTime(),
		}, validateRef)
		assertGap(t, err, "participant_email")
	}
}

func TestValidate_MissingTime(t *testing.T) {
	v := NewValidator(0)
	_, err := v.Validate(&domain.IntentCandidate{ParticipantEmail: "a@b.com"}, validateRef)
	assertGap(t, err, "start_time")
}

func TestValidate_PastTime(t *testing.T) {
	v := NewValidator(0)
	past := validateRef.Add(-time.Hour)
	_, err := v.Validate(&domain.IntentCandidate{
		ParticipantEmail: "a@b.com",
		StartTime:        &past,
	}, validateRef)
	assertGap(t, err, "start_time")
}

func TestValidate_EmailGapBeforeTimeGap(t *testing.T) {
	v := NewValidator(0)
	_, err := v.Validate(&domain.IntentCandidate{}, validateRef)
	assertGap(t, err, "participant_email")
}

func TestValidate_DefaultDuration(t *testing.T) {
	v := NewValidator(30 * time.Minute)
	intent, err := v.Validate(&domain.IntentCandidate{
		ParticipantEmail: "a@b.com",
		StartTime:        futureTime(),
	}, validateRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Duration != 30*time.Minute {
		t.Errorf("expected default 30m, got %s", intent.Duration)
	}
}

func TestValidate_NegativeDuration(t *testing.T) {
	v := NewValidator(0)
	_, err := v.Validate(&domain.IntentCandidate{
		ParticipantEmail: "a@b.com",
		StartTime:        futureTime(),
		DurationMinutes:  -15,
	}, validateRef)
	assertGap(t, err, "duration")
}

func TestValidate_DefaultTitle(t *testing.T) {
	v := NewValidator(0)

	intent, err := v.Validate(&domain.IntentCandidate{
		ParticipantEmail: "john@company.com",
		StartTime:        futureTime(),
	}, validateRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Title != "Meeting with john" {
		t.Errorf("unexpected title: %q", intent.Title)
	}

	intent, err = v.Validate(&domain.IntentCandidate{
		ParticipantEmail: "vincent@keerok.tech",
		StartTime:        futureTime(),
		Language:         domain.LangFrench,
	}, validateRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Title != "Réunion avec vincent" {
		t.Errorf("unexpected title: %q", intent.Title)
	}
}

func TestValidate_LanguageDefaultsToEnglish(t *testing.T) {
	v := NewValidator(0)
	intent, err := v.Validate(&domain.IntentCandidate{
		ParticipantEmail: "a@b.com",
		StartTime:        futureTime(),
	}, validateRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Language != domain.LangEnglish {
		t.Errorf("expected en, got %q", intent.Language)
	}
}

func assertGap(t *testing.T, err error, field string) {
	t.Helper()
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *domain.ValidationError, got %T (%v)", err, err)
	}
	if verr.Field != field {
		t.Errorf("expected field %q, got %q", field, verr.Field)
	}
}

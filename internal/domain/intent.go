package domain

import (
	"context"
	"time"
)

// Language is the detected request locale. It drives every generated string:
// prompts, notes templates, and the final operator summary.
type Language string

const (
	LangEnglish Language = "en"
	LangFrench  Language = "fr"
)

// RawRequest is the immutable input of one scheduling run. ReferenceTime is
// the invocation wall-clock instant, supplied explicitly so relative phrases
// ("tomorrow", "demain") resolve deterministically.
type RawRequest struct {
	Text          string
	ReferenceTime time.Time
}

// IntentCandidate is the unvalidated extraction output. Any field may be
// absent; the extraction service never fabricates values.
type IntentCandidate struct {
	Title            string
	ParticipantEmail string
	StartTime        *time.Time
	DurationMinutes  int // 0 = unspecified
	Language         Language
	NotesContext     string
}

// MeetingIntent is a complete, validated scheduling intent. Instances only
// exist after validation succeeded; partially-filled intents never reach a
// gateway.
type MeetingIntent struct {
	Title            string
	ParticipantEmail string
	StartTime        time.Time
	Duration         time.Duration
	Language         Language
	NotesContext     string
}

// Domain returns the domain part of the participant email, or "" when the
// address has no @.
func (m MeetingIntent) Domain() string {
	return EmailDomain(m.ParticipantEmail)
}

// EmailDomain extracts the domain part of an email address.
func EmailDomain(email string) string {
	for i := len(email) - 1; i >= 0; i-- {
		if email[i] == '@' {
			return email[i+1:]
		}
	}
	return ""
}

// Extractor turns free text into a candidate intent anchored at the request's
// reference time.
type Extractor interface {
	Extract(ctx context.Context, req RawRequest) (*IntentCandidate, error)
}

// Clarifier resolves a validation gap by asking the operator. Implementations
// must ask at most once per gap. Non-interactive runs carry no Clarifier at
// all; the orchestrator fails on the first gap when it holds a nil one.
type Clarifier interface {
	Clarify(ctx context.Context, req RawRequest, cand *IntentCandidate, gap *ValidationError) (*IntentCandidate, error)
}

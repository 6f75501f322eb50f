package domain

import (
	"context"
	"time"
)

// EventRequest is the calendar gateway input.
type EventRequest struct {
	Title         string
	Start         time.Time
	Duration      time.Duration
	AttendeeEmail string
}

// CreatedEvent is the calendar gateway output. ConferenceLink is a real
// conferencing URL generated during event creation, never a placeholder.
type CreatedEvent struct {
	EventRef       string
	ConferenceLink string
}

// CalendarGateway creates a calendar event with an attached video conference.
type CalendarGateway interface {
	CreateEvent(ctx context.Context, req EventRequest) (*CreatedEvent, error)
}

// NotesPageRequest is the notes gateway input. Body is the rendered template
// in the request language; it already embeds the conference link.
type NotesPageRequest struct {
	Title       string
	MeetingTime time.Time
	Language    Language
	Body        string
	Match       OrganizationMatch
}

// NotesGateway creates a structured meeting-notes page and returns its
// reference.
type NotesGateway interface {
	CreatePage(ctx context.Context, req NotesPageRequest) (string, error)
}

// TaskRequest is the follow-up task gateway input. NotesPageRef links the
// task back to the notes page created in the previous step.
type TaskRequest struct {
	Title        string
	NotesPageRef string
	Due          time.Time
	Language     Language
}

// TaskGateway creates a follow-up task linked to a notes page and returns its
// reference.
type TaskGateway interface {
	CreateTask(ctx context.Context, req TaskRequest) (string, error)
}

// Registry is one organization membership registry (customers or leads).
// Lookups return "" when no record matches; that is not an error. Create
// records a new organization entry and returns its reference.
type Registry interface {
	Kind() MatchKind
	FindByDomain(ctx context.Context, domain string) (string, error)
	FindByEmail(ctx context.Context, email string) (string, error)
	Create(ctx context.Context, companyName, email string) (string, error)
}

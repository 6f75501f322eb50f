package domain

import "context"

// MatchKind classifies the participant's organization membership.
type MatchKind string

const (
	MatchCustomer MatchKind = "customer"
	MatchLead     MatchKind = "lead"
	MatchUnknown  MatchKind = "unknown"
)

// OrganizationMatch is the result of resolving the participant against the
// customer and lead registries. RecordRef is empty when Kind is unknown.
// Matches are recomputed each run, never stored.
type OrganizationMatch struct {
	Kind      MatchKind
	RecordRef string
}

// OrganizationResolver classifies a participant email. Resolution never fails
// a run: registry errors degrade to MatchUnknown.
type OrganizationResolver interface {
	Resolve(ctx context.Context, email string) OrganizationMatch
}

// LeadAdvice is the model's recommendation on recording an unmatched
// participant as a new registry entry.
type LeadAdvice struct {
	ShouldCreate bool
	Reason       string
	Kind         MatchKind
}

// LeadAdvisor judges whether an unmatched participant looks like a real
// business contact worth recording.
type LeadAdvisor interface {
	Assess(ctx context.Context, companyName, email string) (*LeadAdvice, error)
}

// LeadIntake offers to record an unmatched participant as a new lead. It
// never fails a run: declined, unanswered, or errored proposals all come back
// as MatchUnknown and the pipeline continues.
type LeadIntake interface {
	Propose(ctx context.Context, intent MeetingIntent) OrganizationMatch
}

// SchedulingResult is the output bundle of a completed run. It is assembled
// only after all side-effecting steps succeeded.
type SchedulingResult struct {
	EventRef       string
	ConferenceLink string
	NotesPageRef   string
	TaskRef        string
	Intent         MeetingIntent
	Match          OrganizationMatch
}

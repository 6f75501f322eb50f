package domain

import (
	"fmt"
	"strings"
)

// Step names a side-effecting pipeline step for error reporting.
type Step string

const (
	StepEvent    Step = "event"
	StepNotes    Step = "notes"
	StepFollowUp Step = "follow-up"
)

// ExtractionError means the text-understanding service was unreachable or
// returned a response that could not be parsed into the intent schema.
// Fatal, never retried, and never shown verbatim to the operator.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction: %s: %v", e.Reason, e.Err)
	}
	return "extraction: " + e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ValidationError is a structurally clean, field-identified gap in the
// intent. It is the one error shown verbatim to the operator. In interactive
// mode it is recoverable through a single clarification round.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Artifact records a resource that was already created before a later step
// failed, so the operator can reconcile manually.
type Artifact struct {
	Step Step
	Kind string
	Ref  string
}

// GatewayError means one of the event/notes/follow-up creation steps failed.
// There is no rollback; Created lists the artifacts that exist and must be
// reconciled by the operator.
type GatewayError struct {
	Step    Step
	Created []Artifact
	Err     error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s creation failed: %v", e.Step, e.Err)
	if len(e.Created) == 0 {
		return msg
	}
	refs := make([]string, 0, len(e.Created))
	for _, a := range e.Created {
		refs = append(refs, fmt.Sprintf("%s %s", a.Kind, a.Ref))
	}
	return fmt.Sprintf("%s (already created: %s)", msg, strings.Join(refs, ", "))
}

func (e *GatewayError) Unwrap() error { return e.Err }

// ResolutionDegraded reports a registry lookup failure that did not abort the
// run. It is logged, never returned up the pipeline: resolution degrades to
// an unknown classification and the run continues.
type ResolutionDegraded struct {
	Registry MatchKind
	Err      error
}

func (e *ResolutionDegraded) Error() string {
	return fmt.Sprintf("%s registry lookup degraded: %v", e.Registry, e.Err)
}

func (e *ResolutionDegraded) Unwrap() error { return e.Err }

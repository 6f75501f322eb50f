package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestEmailDomain(t *testing.T) {
	cases := map[string]string{
		"jane@acme.com":   "acme.com",
		"a@b@c.io":        "c.io",
		"no-at-sign":      "",
		"":                "",
		"trailing@":       "",
		"v@keerok.tech":   "keerok.tech",
	}
	for in, want := range cases {
		if got := EmailDomain(in); got != want {
			t.Errorf("EmailDomain(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "start_time", Message: "missing or ambiguous meeting time"}
	if err.Error() != "start_time: missing or ambiguous meeting time" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestGatewayError_ListsCreatedArtifacts(t *testing.T) {
	err := &GatewayError{
		Step: StepNotes,
		Created: []Artifact{
			{Step: StepEvent, Kind: "event", Ref: "evt-1"},
		},
		Err: errors.New("notion 500"),
	}
	msg := err.Error()
	if !strings.Contains(msg, "notes creation failed") {
		t.Errorf("message must name the step: %q", msg)
	}
	if !strings.Contains(msg, "already created: event evt-1") {
		t.Errorf("message must list orphaned artifacts: %q", msg)
	}

	bare := &GatewayError{Step: StepEvent, Err: errors.New("calendar 403")}
	if strings.Contains(bare.Error(), "already created") {
		t.Errorf("no artifact list when nothing was created: %q", bare.Error())
	}
}

func TestExtractionError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ExtractionError{Reason: "text-understanding service unreachable", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("extraction error must unwrap to its cause")
	}
}

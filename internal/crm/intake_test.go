package crm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"meetbot/internal/domain"
)

type mockAdvisor struct {
	advice      *domain.LeadAdvice
	err         error
	lastCompany string
	lastEmail   string
}

func (m *mockAdvisor) Assess(_ context.Context, companyName, email string) (*domain.LeadAdvice, error) {
	m.lastCompany = companyName
	m.lastEmail = email
	if m.err != nil {
		return nil, m.err
	}
	return m.advice, nil
}

func intakeIntent(email string, lang domain.Language) domain.MeetingIntent {
	return domain.MeetingIntent{ParticipantEmail: email, Language: lang}
}

func TestPropose_ConfirmedCreatesLead(t *testing.T) {
	advisor := &mockAdvisor{advice: &domain.LeadAdvice{ShouldCreate: true, Reason: "business domain"}}
	leads := &mockRegistry{kind: domain.MatchLead, createRef: "lead-42"}
	var out bytes.Buffer
	in := NewIntake(IntakeConfig{
		Advisor: advisor,
		Leads:   leads,
		In:      strings.NewReader("yes\n"),
		Out:     &out,
		Logger:  testLogger(),
	})

	match := in.Propose(context.Background(), intakeIntent("vincent@keerok.tech", domain.LangEnglish))
	if match.Kind != domain.MatchLead || match.RecordRef != "lead-42" {
		t.Fatalf("expected lead lead-42, got %+v", match)
	}
	if len(leads.created) != 1 || leads.created[0] != "Keerok" {
		t.Errorf("expected a lead named after the email domain, got %v", leads.created)
	}
	if advisor.lastCompany != "Keerok" || advisor.lastEmail != "vincent@keerok.tech" {
		t.Errorf("advisor saw %q / %q", advisor.lastCompany, advisor.lastEmail)
	}
	if !strings.Contains(out.String(), "Would you like to create the entry? (yes/no):") {
		t.Errorf("missing confirmation prompt in output: %q", out.String())
	}
}

func TestPropose_DeclinedStaysUnknown(t *testing.T) {
	leads := &mockRegistry{kind: domain.MatchLead, createRef: "lead-42"}
	in := NewIntake(IntakeConfig{
		Advisor: &mockAdvisor{advice: &domain.LeadAdvice{ShouldCreate: true}},
		Leads:   leads,
		In:      strings.NewReader("no\n"),
		Out:     &bytes.Buffer{},
		Logger:  testLogger(),
	})

	match := in.Propose(context.Background(), intakeIntent("vincent@keerok.tech", domain.LangEnglish))
	if match.Kind != domain.MatchUnknown {
		t.Errorf("declined proposals must stay unknown, got %+v", match)
	}
	if len(leads.created) != 0 {
		t.Error("nothing may be created after a decline")
	}
}

func TestPropose_ShortAffirmativesAccepted(t *testing.T) {
	for _, answer := range []string{"y", "o", "OUI", "Yes"} {
		leads := &mockRegistry{kind: domain.MatchLead, createRef: "lead-1"}
		in := NewIntake(IntakeConfig{
			Advisor: &mockAdvisor{advice: &domain.LeadAdvice{ShouldCreate: true}},
			Leads:   leads,
			In:      strings.NewReader(answer + "\n"),
			Out:     &bytes.Buffer{},
			Logger:  testLogger(),
		})
		match := in.Propose(context.Background(), intakeIntent("a@b.com", domain.LangEnglish))
		if match.Kind != domain.MatchLead {
			t.Errorf("answer %q should confirm, got %+v", answer, match)
		}
	}
}

func TestPropose_AdvisorDeclineSkipsPrompt(t *testing.T) {
	var out bytes.Buffer
	in := NewIntake(IntakeConfig{
		Advisor: &mockAdvisor{advice: &domain.LeadAdvice{ShouldCreate: false, Reason: "freemail address"}},
		Leads:   &mockRegistry{kind: domain.MatchLead},
		In:      strings.NewReader("yes\n"),
		Out:     &out,
		Logger:  testLogger(),
	})

	match := in.Propose(context.Background(), intakeIntent("someone@gmail.com", domain.LangEnglish))
	if match.Kind != domain.MatchUnknown {
		t.Errorf("expected unknown, got %+v", match)
	}
	if out.Len() != 0 {
		t.Errorf("no prompt expected when the advisor declines, got %q", out.String())
	}
}

func TestPropose_AdvisorFailureDegrades(t *testing.T) {
	in := NewIntake(IntakeConfig{
		Advisor: &mockAdvisor{err: errors.New("service unavailable")},
		Leads:   &mockRegistry{kind: domain.MatchLead},
		In:      strings.NewReader("yes\n"),
		Out:     &bytes.Buffer{},
		Logger:  testLogger(),
	})

	match := in.Propose(context.Background(), intakeIntent("vincent@keerok.tech", domain.LangEnglish))
	if match.Kind != domain.MatchUnknown {
		t.Errorf("advisor failure must degrade to unknown, got %+v", match)
	}
}

func TestPropose_EOFIsADecline(t *testing.T) {
	in := NewIntake(IntakeConfig{
		Advisor: &mockAdvisor{advice: &domain.LeadAdvice{ShouldCreate: true}},
		Leads:   &mockRegistry{kind: domain.MatchLead},
		In:      strings.NewReader(""),
		Out:     &bytes.Buffer{},
		Logger:  testLogger(),
	})

	match := in.Propose(context.Background(), intakeIntent("vincent@keerok.tech", domain.LangEnglish))
	if match.Kind != domain.MatchUnknown {
		t.Errorf("unanswered proposals must stay unknown, got %+v", match)
	}
}

func TestPropose_CreateFailureDegrades(t *testing.T) {
	in := NewIntake(IntakeConfig{
		Advisor: &mockAdvisor{advice: &domain.LeadAdvice{ShouldCreate: true}},
		Leads:   &mockRegistry{kind: domain.MatchLead, createErr: errors.New("notion 500")},
		In:      strings.NewReader("yes\n"),
		Out:     &bytes.Buffer{},
		Logger:  testLogger(),
	})

	match := in.Propose(context.Background(), intakeIntent("vincent@keerok.tech", domain.LangEnglish))
	if match.Kind != domain.MatchUnknown {
		t.Errorf("a failed creation must not fail the run, got %+v", match)
	}
}

func TestPropose_FrenchPrompt(t *testing.T) {
	var out bytes.Buffer
	in := NewIntake(IntakeConfig{
		Advisor: &mockAdvisor{advice: &domain.LeadAdvice{ShouldCreate: true, Reason: "domaine professionnel"}},
		Leads:   &mockRegistry{kind: domain.MatchLead, createRef: "lead-8"},
		In:      strings.NewReader("oui\n"),
		Out:     &out,
		Logger:  testLogger(),
	})

	match := in.Propose(context.Background(), intakeIntent("vincent@keerok.tech", domain.LangFrench))
	if match.Kind != domain.MatchLead {
		t.Fatalf("expected lead, got %+v", match)
	}
	if !strings.Contains(out.String(), "Voulez-vous créer l'entrée ? (oui/non) :") {
		t.Errorf("missing French prompt in output: %q", out.String())
	}
}

func TestPropose_NoUsableEmailStaysUnknown(t *testing.T) {
	advisor := &mockAdvisor{advice: &domain.LeadAdvice{ShouldCreate: true}}
	in := NewIntake(IntakeConfig{
		Advisor: advisor,
		Leads:   &mockRegistry{kind: domain.MatchLead},
		In:      strings.NewReader("yes\n"),
		Out:     &bytes.Buffer{},
		Logger:  testLogger(),
	})

	match := in.Propose(context.Background(), intakeIntent("not-an-email", domain.LangEnglish))
	if match.Kind != domain.MatchUnknown {
		t.Errorf("expected unknown, got %+v", match)
	}
	if advisor.lastEmail != "" {
		t.Error("advisor must not be consulted without a usable email domain")
	}
}

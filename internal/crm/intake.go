package crm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"meetbot/internal/domain"
)

// Intake offers to record an unmatched participant as a new lead. An advisor
// judges whether the participant looks like a real business contact; when it
// says yes, the operator is asked on the terminal before anything is written.
// Every failure path degrades to an unknown match, never to a failed run.
type Intake struct {
	advisor domain.LeadAdvisor
	leads   domain.Registry
	in      *bufio.Scanner
	out     io.Writer
	logger  *slog.Logger
}

type IntakeConfig struct {
	Advisor domain.LeadAdvisor
	Leads   domain.Registry
	In      io.Reader
	Out     io.Writer
	Logger  *slog.Logger
}

func NewIntake(cfg IntakeConfig) *Intake {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stderr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Intake{
		advisor: cfg.Advisor,
		leads:   cfg.Leads,
		in:      bufio.NewScanner(cfg.In),
		out:     cfg.Out,
		logger:  cfg.Logger,
	}
}

// Propose implements domain.LeadIntake.
func (i *Intake) Propose(ctx context.Context, intent domain.MeetingIntent) domain.OrganizationMatch {
	unknown := domain.OrganizationMatch{Kind: domain.MatchUnknown}

	companyName := companyFromEmail(intent.ParticipantEmail)
	if companyName == "" {
		return unknown
	}

	advice, err := i.advisor.Assess(ctx, companyName, intent.ParticipantEmail)
	if err != nil {
		i.logger.Warn("lead assessment failed, keeping participant unclassified", "err", err)
		return unknown
	}
	if !advice.ShouldCreate {
		i.logger.Info("lead not suggested", "company", companyName, "reason", advice.Reason)
		return unknown
	}

	if !i.confirm(intent.Language, companyName, advice.Reason) {
		i.logger.Info("lead creation declined", "company", companyName)
		return unknown
	}

	ref, err := i.leads.Create(ctx, companyName, intent.ParticipantEmail)
	if err != nil {
		i.logger.Warn("lead creation failed, keeping participant unclassified", "err", err)
		return unknown
	}

	i.logger.Info("lead created", "company", companyName, "ref", ref)
	if intent.Language == domain.LangFrench {
		fmt.Fprintf(i.out, "Entrée créée pour %s.\n", companyName)
	} else {
		fmt.Fprintf(i.out, "Created entry for %s.\n", companyName)
	}
	return domain.OrganizationMatch{Kind: domain.MatchLead, RecordRef: ref}
}

func (i *Intake) confirm(lang domain.Language, companyName, reason string) bool {
	if lang == domain.LangFrench {
		fmt.Fprintf(i.out, "\n%s n'est pas dans le registre. Suggestion : l'ajouter comme lead.\n", companyName)
		if reason != "" {
			fmt.Fprintf(i.out, "Raison : %s\n", reason)
		}
		fmt.Fprint(i.out, "Voulez-vous créer l'entrée ? (oui/non) : ")
	} else {
		fmt.Fprintf(i.out, "\n%s is not in the registry. Suggestion: add it as a lead.\n", companyName)
		if reason != "" {
			fmt.Fprintf(i.out, "Reason: %s\n", reason)
		}
		fmt.Fprint(i.out, "Would you like to create the entry? (yes/no): ")
	}

	if !i.in.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(i.in.Text())) {
	case "yes", "y", "oui", "o":
		return true
	}
	return false
}

// companyFromEmail derives a display name from the first label of the email
// domain: jane@keerok.tech becomes "Keerok".
func companyFromEmail(email string) string {
	emailDomain := domain.EmailDomain(email)
	if emailDomain == "" {
		return ""
	}
	label, _, _ := strings.Cut(emailDomain, ".")
	if label == "" {
		return ""
	}
	return cases.Title(language.Und).String(label)
}

// Package scheduler coordinates one scheduling run: extraction, validation,
// clarification, organization resolution, and the strictly ordered
// side-effecting calls to the calendar, notes, and task gateways.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"meetbot/internal/domain"
)

// State is the orchestrator's position in the pipeline. Transitions are
// linear; Failed is reachable from every state.
type State string

const (
	StateReceived         State = "received"
	StateExtracting       State = "extracting"
	StateValidating       State = "validating"
	StateClarifying       State = "clarifying"
	StateResolving        State = "resolving"
	StateEventCreating    State = "event-creating"
	StateNotesCreating    State = "notes-creating"
	StateFollowUpCreating State = "follow-up-creating"
	StateCompleted        State = "completed"
	StateFailed           State = "failed"
)

// Validator turns a candidate into a complete intent or rejects it.
type Validator interface {
	Validate(cand *domain.IntentCandidate, ref time.Time) (*domain.MeetingIntent, error)
}

// Journal records run progress and created artifacts for manual
// reconciliation. A nil Journal disables recording.
type Journal interface {
	StartRun(ctx context.Context, runID, request string, ref time.Time) error
	SetState(ctx context.Context, runID, state string) error
	AddArtifact(ctx context.Context, runID string, artifact domain.Artifact) error
	FinishRun(ctx context.Context, runID, state, errMsg string) error
}

// Orchestrator owns the lifetime of one run's intermediate intents and
// results. It holds no state across runs.
type Orchestrator struct {
	extractor      domain.Extractor
	validator      Validator
	clarifier      domain.Clarifier
	resolver       domain.OrganizationResolver
	intake         domain.LeadIntake
	calendar       domain.CalendarGateway
	notes          domain.NotesGateway
	tasks          domain.TaskGateway
	templates      *TemplatePack
	journal        Journal
	followUpOffset time.Duration
	logger         *slog.Logger
}

type Config struct {
	Extractor      domain.Extractor
	Validator      Validator
	Clarifier      domain.Clarifier // nil = non-interactive: gaps fail immediately
	Resolver       domain.OrganizationResolver
	Intake         domain.LeadIntake // nil = never offer to record new leads
	Calendar       domain.CalendarGateway
	Notes          domain.NotesGateway
	Tasks          domain.TaskGateway
	Templates      *TemplatePack
	Journal        Journal
	FollowUpOffset time.Duration
	Logger         *slog.Logger
}

func New(cfg Config) *Orchestrator {
	if cfg.FollowUpOffset <= 0 {
		cfg.FollowUpOffset = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Templates == nil {
		cfg.Templates = DefaultTemplates(cfg.Logger)
	}
	return &Orchestrator{
		extractor:      cfg.Extractor,
		validator:      cfg.Validator,
		clarifier:      cfg.Clarifier,
		resolver:       cfg.Resolver,
		intake:         cfg.Intake,
		calendar:       cfg.Calendar,
		notes:          cfg.Notes,
		tasks:          cfg.Tasks,
		templates:      cfg.Templates,
		journal:        cfg.Journal,
		followUpOffset: cfg.FollowUpOffset,
		logger:         cfg.Logger,
	}
}

// Schedule runs the full pipeline for one request. On success every artifact
// exists and the result is fully populated; on failure the returned error
// says what failed, and for gateway failures, which artifacts were already
// created.
func (o *Orchestrator) Schedule(ctx context.Context, req domain.RawRequest) (*domain.SchedulingResult, error) {
	runID := uuid.NewString()
	o.record(func(j Journal) error { return j.StartRun(ctx, runID, req.Text, req.ReferenceTime) })
	o.logger.Info("run started", "run", runID, "reference_time", req.ReferenceTime)

	o.setState(ctx, runID, StateExtracting)
	cand, err := o.extractor.Extract(ctx, req)
	if err != nil {
		return nil, o.fail(ctx, runID, err)
	}

	intent, err := o.validateWithClarification(ctx, runID, req, cand)
	if err != nil {
		return nil, o.fail(ctx, runID, err)
	}

	o.setState(ctx, runID, StateResolving)
	match := o.resolver.Resolve(ctx, intent.ParticipantEmail)
	if match.Kind == domain.MatchUnknown && o.intake != nil {
		match = o.intake.Propose(ctx, *intent)
	}

	var created []domain.Artifact

	o.setState(ctx, runID, StateEventCreating)
	event, err := o.calendar.CreateEvent(ctx, domain.EventRequest{
		Title:         intent.Title,
		Start:         intent.StartTime,
		Duration:      intent.Duration,
		AttendeeEmail: intent.ParticipantEmail,
	})
	if err != nil {
		return nil, o.fail(ctx, runID, &domain.GatewayError{Step: domain.StepEvent, Created: created, Err: err})
	}
	created = o.addArtifact(ctx, runID, created, domain.Artifact{Step: domain.StepEvent, Kind: "event", Ref: event.EventRef})

	o.setState(ctx, runID, StateNotesCreating)
	body, err := o.templates.RenderBody(*intent, event.ConferenceLink, match)
	if err != nil {
		return nil, o.fail(ctx, runID, &domain.GatewayError{Step: domain.StepNotes, Created: created, Err: err})
	}
	pageRef, err := o.notes.CreatePage(ctx, domain.NotesPageRequest{
		Title:       intent.Title,
		MeetingTime: intent.StartTime,
		Language:    intent.Language,
		Body:        body,
		Match:       match,
	})
	if err != nil {
		return nil, o.fail(ctx, runID, &domain.GatewayError{Step: domain.StepNotes, Created: created, Err: err})
	}
	created = o.addArtifact(ctx, runID, created, domain.Artifact{Step: domain.StepNotes, Kind: "notes-page", Ref: pageRef})

	o.setState(ctx, runID, StateFollowUpCreating)
	taskRef, err := o.tasks.CreateTask(ctx, domain.TaskRequest{
		Title:        FollowUpTitle(*intent),
		NotesPageRef: pageRef,
		Due:          intent.StartTime.Add(o.followUpOffset),
		Language:     intent.Language,
	})
	if err != nil {
		return nil, o.fail(ctx, runID, &domain.GatewayError{Step: domain.StepFollowUp, Created: created, Err: err})
	}
	o.addArtifact(ctx, runID, created, domain.Artifact{Step: domain.StepFollowUp, Kind: "task", Ref: taskRef})

	o.record(func(j Journal) error { return j.FinishRun(ctx, runID, string(StateCompleted), "") })
	o.logger.Info("run completed", "run", runID, "event", event.EventRef, "page", pageRef, "task", taskRef)

	return &domain.SchedulingResult{
		EventRef:       event.EventRef,
		ConferenceLink: event.ConferenceLink,
		NotesPageRef:   pageRef,
		TaskRef:        taskRef,
		Intent:         *intent,
		Match:          match,
	}, nil
}

// validateWithClarification validates the candidate, asking the operator at
// most once per gap in interactive mode. In non-interactive mode (nil
// clarifier) the first gap fails the run immediately; the pipeline never
// blocks waiting for input.
func (o *Orchestrator) validateWithClarification(ctx context.Context, runID string, req domain.RawRequest, cand *domain.IntentCandidate) (*domain.MeetingIntent, error) {
	asked := make(map[string]bool)

	for {
		o.setState(ctx, runID, StateValidating)
		intent, err := o.validator.Validate(cand, req.ReferenceTime)
		if err == nil {
			return intent, nil
		}

		var gap *domain.ValidationError
		if !errors.As(err, &gap) {
			return nil, err
		}
		if o.clarifier == nil || asked[gap.Field] {
			return nil, gap
		}
		asked[gap.Field] = true

		o.setState(ctx, runID, StateClarifying)
		cand, err = o.clarifier.Clarify(ctx, req, cand, gap)
		if err != nil {
			return nil, err
		}
	}
}

func (o *Orchestrator) fail(ctx context.Context, runID string, err error) error {
	o.record(func(j Journal) error { return j.FinishRun(ctx, runID, string(StateFailed), err.Error()) })
	o.logger.Error("run failed", "run", runID, "err", err)
	return err
}

func (o *Orchestrator) setState(ctx context.Context, runID string, state State) {
	o.logger.Debug("state", "run", runID, "state", state)
	o.record(func(j Journal) error { return j.SetState(ctx, runID, string(state)) })
}

func (o *Orchestrator) addArtifact(ctx context.Context, runID string, created []domain.Artifact, a domain.Artifact) []domain.Artifact {
	o.record(func(j Journal) error { return j.AddArtifact(ctx, runID, a) })
	return append(created, a)
}

// record runs a journal operation best-effort: a journaling failure must not
// abort a scheduling run.
func (o *Orchestrator) record(fn func(Journal) error) {
	if o.journal == nil {
		return
	}
	if err := fn(o.journal); err != nil {
		o.logger.Warn("journal write failed", "err", err)
	}
}

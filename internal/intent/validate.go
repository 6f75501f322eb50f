package intent

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"meetbot/internal/domain"
)

// Validator turns candidates into complete intents or rejects them with a
// field-identified error. Checks run in a fixed order and short-circuit on
// the first unrecoverable gap.
type Validator struct {
	defaultDuration time.Duration
}

func NewValidator(defaultDuration time.Duration) *Validator {
	if defaultDuration <= 0 {
		defaultDuration = 30 * time.Minute
	}
	return &Validator{defaultDuration: defaultDuration}
}

// Validate is total over candidates: it returns either a complete
// MeetingIntent or a ValidationError, never a partial intent.
func (v *Validator) Validate(cand *domain.IntentCandidate, ref time.Time) (*domain.MeetingIntent, error) {
	lang := cand.Language
	if lang == "" {
		lang = domain.LangEnglish
	}

	if cand.ParticipantEmail == "" {
		return nil, &domain.ValidationError{Field: "participant_email", Message: "missing participant email"}
	}
	if err := checkEmail(cand.ParticipantEmail); err != nil {
		return nil, &domain.ValidationError{Field: "participant_email", Message: err.Error()}
	}

	if cand.StartTime == nil {
		return nil, &domain.ValidationError{Field: "start_time", Message: "missing or ambiguous meeting time"}
	}
	if !cand.StartTime.After(ref) {
		return nil, &domain.ValidationError{
			Field:   "start_time",
			Message: fmt.Sprintf("meeting time %s is not in the future", cand.StartTime.Format(time.RFC3339)),
		}
	}

	if cand.DurationMinutes < 0 {
		return nil, &domain.ValidationError{Field: "duration", Message: "duration must be positive"}
	}
	duration := v.defaultDuration
	if cand.DurationMinutes > 0 {
		duration = time.Duration(cand.DurationMinutes) * time.Minute
	}

	// A missing title is common and recoverable: derive one from the
	// participant's local-part instead of failing.
	title := strings.TrimSpace(cand.Title)
	if title == "" {
		title = defaultTitle(cand.ParticipantEmail, lang)
	}

	return &domain.MeetingIntent{
		Title:            title,
		ParticipantEmail: cand.ParticipantEmail,
		StartTime:        *cand.StartTime,
		Duration:         duration,
		Language:         lang,
		NotesContext:     strings.TrimSpace(cand.NotesContext),
	}, nil
}

func checkEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email format: %s", email)
	}
	dom := domain.EmailDomain(email)
	if dom == "" || !strings.Contains(dom, ".") {
		return fmt.Errorf("invalid email domain: %s", email)
	}
	return nil
}

func defaultTitle(email string, lang domain.Language) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	if lang == domain.LangFrench {
		return "Réunion avec " + local
	}
	return "Meeting with " + local
}

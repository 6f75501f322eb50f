package scheduler

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"meetbot/internal/domain"
)

// Built-in notes-page bodies. A YAML template pack can override either
// language per deployment; these are the defaults.
const builtinBodyEN = `Meeting with {{.ParticipantEmail}}
When: {{.When}} ({{.Minutes}} min)
Google Meet: {{.ConferenceLink}}
Organization: {{.Organization}}
{{if .NotesContext}}
Agenda:
{{.NotesContext}}
{{end}}
Notes:
`

const builtinBodyFR = `Réunion avec {{.ParticipantEmail}}
Quand : {{.When}} ({{.Minutes}} min)
Google Meet : {{.ConferenceLink}}
Organisation : {{.Organization}}
{{if .NotesContext}}
Ordre du jour :
{{.NotesContext}}
{{end}}
Notes :
`

// TemplatePack renders the notes-page body in the request language. The
// language detected at extraction is the language rendered here, always.
type TemplatePack struct {
	bodies map[domain.Language]*template.Template
	logger *slog.Logger
}

func DefaultTemplates(logger *slog.Logger) *TemplatePack {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplatePack{
		bodies: map[domain.Language]*template.Template{
			domain.LangEnglish: template.Must(template.New("en").Parse(builtinBodyEN)),
			domain.LangFrench:  template.Must(template.New("fr").Parse(builtinBodyFR)),
		},
		logger: logger,
	}
}

// templateFile is one YAML override in the template pack directory.
type templateFile struct {
	Language string `yaml:"language"`
	Body     string `yaml:"body"`
}

// LoadDir merges YAML template overrides from dir. Unknown languages and
// broken templates are skipped with a warning; the builtins stay in place.
func (p *TemplatePack) LoadDir(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		p.logger.Debug("template directory does not exist, using builtins", "dir", dir)
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read template dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			p.logger.Warn("cannot read template file", "path", path, "err", err)
			continue
		}
		var tf templateFile
		if err := yaml.Unmarshal(data, &tf); err != nil {
			p.logger.Warn("cannot parse template file", "path", path, "err", err)
			continue
		}
		lang := domain.Language(tf.Language)
		if lang != domain.LangEnglish && lang != domain.LangFrench {
			p.logger.Warn("template for unsupported language", "path", path, "language", tf.Language)
			continue
		}
		tmpl, err := template.New(tf.Language).Parse(tf.Body)
		if err != nil {
			p.logger.Warn("invalid template body", "path", path, "err", err)
			continue
		}
		p.bodies[lang] = tmpl
		p.logger.Info("loaded notes template", "language", tf.Language, "path", path)
	}
	return nil
}

type bodyData struct {
	Title            string
	ParticipantEmail string
	When             string
	Minutes          int
	ConferenceLink   string
	Organization     string
	NotesContext     string
}

// RenderBody renders the notes body for the intent's language.
func (p *TemplatePack) RenderBody(intent domain.MeetingIntent, conferenceLink string, match domain.OrganizationMatch) (string, error) {
	tmpl, ok := p.bodies[intent.Language]
	if !ok {
		tmpl = p.bodies[domain.LangEnglish]
	}

	data := bodyData{
		Title:            intent.Title,
		ParticipantEmail: intent.ParticipantEmail,
		When:             intent.StartTime.Format("Monday 2 January 2006, 15:04 MST"),
		Minutes:          int(intent.Duration / time.Minute),
		ConferenceLink:   conferenceLink,
		Organization:     organizationLabel(match, intent.Language),
		NotesContext:     intent.NotesContext,
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render notes body: %w", err)
	}
	return sb.String(), nil
}

func organizationLabel(match domain.OrganizationMatch, lang domain.Language) string {
	if lang == domain.LangFrench {
		switch match.Kind {
		case domain.MatchCustomer:
			return "client"
		case domain.MatchLead:
			return "prospect"
		default:
			return "inconnue"
		}
	}
	switch match.Kind {
	case domain.MatchCustomer:
		return "customer"
	case domain.MatchLead:
		return "lead"
	default:
		return "unknown"
	}
}

// FollowUpTitle is the follow-up task name in the request language.
func FollowUpTitle(intent domain.MeetingIntent) string {
	if intent.Language == domain.LangFrench {
		return "Relance : " + intent.Title
	}
	return "Follow up: " + intent.Title
}

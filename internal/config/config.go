package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Config is the root configuration for meetbot. It is loaded once at process
// start and passed by reference into each collaborator; nothing reads the
// environment ad hoc after this point.
type Config struct {
	General   GeneralConfig             `json:"general"`
	Providers map[string]ProviderConfig `json:"providers"`
	Calendar  CalendarConfig            `json:"calendar"`
	Notion    NotionConfig              `json:"notion"`
	Journal   JournalConfig             `json:"journal"`
	Templates TemplatesConfig           `json:"templates"`
}

type GeneralConfig struct {
	LogLevel               string `json:"logLevel"`
	LogFile                string `json:"logFile,omitempty"`
	Timezone               string `json:"timezone"`        // IANA name, e.g. Europe/Paris
	DefaultProvider        string `json:"defaultProvider"` // claude | openai | ollama
	DefaultDurationMinutes int    `json:"defaultDurationMinutes"`
	FollowUpOffsetHours    int    `json:"followUpOffsetHours"` // task due = meeting start + offset
}

type ProviderConfig struct {
	Enabled      bool   `json:"enabled"`
	APIKey       string `json:"apiKey,omitempty"`
	APIBase      string `json:"apiBase,omitempty"`
	DefaultModel string `json:"defaultModel,omitempty"`
}

// CalendarConfig configures the Google Calendar gateway. The refresh token is
// obtained out of band; meetbot only exchanges it for access tokens.
type CalendarConfig struct {
	CalendarID   string `json:"calendarId"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RefreshToken string `json:"refreshToken"`
	SendUpdates  string `json:"sendUpdates"` // all | externalOnly | none
}

// NotionConfig configures the Notion gateway: meeting notes, follow-up tasks,
// and the customer/lead registries all live in Notion databases.
type NotionConfig struct {
	APIKey              string `json:"apiKey"`
	Version             string `json:"version"`
	MeetingsDatabaseID  string `json:"meetingsDatabaseId"`
	TasksDatabaseID     string `json:"tasksDatabaseId"`
	CustomersDatabaseID string `json:"customersDatabaseId"`
	LeadsDatabaseID     string `json:"leadsDatabaseId"`
}

type JournalConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"dbPath"`
}

type TemplatesConfig struct {
	Dir string `json:"dir,omitempty"` // optional YAML template pack directory
}

// DefaultConfigDir returns the default config directory (~/.meetbot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".meetbot"
	}
	return filepath.Join(home, ".meetbot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.Journal.DBPath = ExpandPath(cfg.Journal.DBPath)
	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)
	cfg.Templates.Dir = ExpandPath(cfg.Templates.Dir)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	if _, err := time.LoadLocation(cfg.General.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("general.timezone: unknown location %q", cfg.General.Timezone))
	}
	if cfg.General.DefaultDurationMinutes < 1 {
		errs = append(errs, "general.defaultDurationMinutes must be >= 1")
	}
	if cfg.General.FollowUpOffsetHours < 1 {
		errs = append(errs, "general.followUpOffsetHours must be >= 1")
	}
	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.General.DefaultProvider != "" {
		if _, ok := cfg.Providers[cfg.General.DefaultProvider]; !ok {
			errs = append(errs, fmt.Sprintf("general.defaultProvider references unknown provider: %s", cfg.General.DefaultProvider))
		}
	}

	switch cfg.Calendar.SendUpdates {
	case "", "all", "externalOnly", "none":
	default:
		errs = append(errs, "calendar.sendUpdates must be one of: all, externalOnly, none")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

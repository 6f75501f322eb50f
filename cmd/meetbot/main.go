package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"meetbot/internal/config"
	"meetbot/internal/crm"
	"meetbot/internal/domain"
	"meetbot/internal/gateway"
	"meetbot/internal/intent"
	"meetbot/internal/journal"
	"meetbot/internal/provider"
	"meetbot/internal/scheduler"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:           "meetbot",
		Short:         "meetbot: natural-language meeting scheduler",
		Long:          "meetbot turns one natural-language sentence (English or French) into a calendar event with a Meet link, a Notion notes page, and a follow-up task.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.meetbot/config.json)")

	root.AddCommand(scheduleCmd())
	root.AddCommand(initCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(configCmd())
	root.AddCommand(doctorCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func scheduleCmd() *cobra.Command {
	var nonInteractive bool
	cmd := &cobra.Command{
		Use:   "schedule <request>",
		Short: "Schedule a meeting from a natural-language request",
		Long: `Examples:
  meetbot schedule "First call with john@company.com tomorrow at 2pm"
  meetbot schedule "Réunion demain à 14h30 avec vincent@keerok.tech"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(strings.Join(args, " "), nonInteractive)
		},
	}
	cmd.Flags().BoolVarP(&nonInteractive, "non-interactive", "n", false, "fail on missing fields instead of prompting")
	return cmd
}

func runSchedule(text string, nonInteractive bool) error {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	setupLogger(cfg)

	// Validated by config.Load.
	loc, _ := time.LoadLocation(cfg.General.Timezone)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notion := gateway.NewNotionClient(gateway.NotionClientConfig{
		APIKey:  cfg.Notion.APIKey,
		Version: cfg.Notion.Version,
		Logger:  logger,
	})

	leads := gateway.NewNotionRegistry(notion, cfg.Notion.LeadsDatabaseID, domain.MatchLead)
	resolver := crm.NewResolver(
		gateway.NewNotionRegistry(notion, cfg.Notion.CustomersDatabaseID, domain.MatchCustomer),
		leads,
		logger,
	)

	prov, err := provider.NewFactory(cfg, logger).Get("")
	if err != nil {
		return reportFailure(err)
	}

	extractor := intent.NewExtractor(intent.ExtractorConfig{
		Provider: prov,
		Location: loc,
		Logger:   logger,
	})

	var clarifier domain.Clarifier
	var intake domain.LeadIntake
	if !nonInteractive {
		clarifier = intent.NewTerminal(intent.TerminalConfig{
			Extractor: extractor,
			Logger:    logger,
		})
		intake = crm.NewIntake(crm.IntakeConfig{
			Advisor: intent.NewAdvisor(intent.AdvisorConfig{Provider: prov, Logger: logger}),
			Leads:   leads,
			Logger:  logger,
		})
	}

	var runJournal scheduler.Journal
	if cfg.Journal.Enabled {
		store, err := journal.NewStore(cfg.Journal.DBPath, logger)
		if err != nil {
			logger.Warn("journal unavailable, continuing without it", "err", err)
		} else {
			defer store.Close()
			runJournal = store
		}
	}

	templates := scheduler.DefaultTemplates(logger)
	if err := templates.LoadDir(cfg.Templates.Dir); err != nil {
		logger.Warn("template pack not loaded", "err", err)
	}

	orch := scheduler.New(scheduler.Config{
		Extractor: extractor,
		Validator: intent.NewValidator(time.Duration(cfg.General.DefaultDurationMinutes) * time.Minute),
		Clarifier: clarifier,
		Resolver:  resolver,
		Intake:    intake,
		Calendar: gateway.NewGoogleCalendar(ctx, gateway.GoogleCalendarConfig{
			CalendarID:   cfg.Calendar.CalendarID,
			ClientID:     cfg.Calendar.ClientID,
			ClientSecret: cfg.Calendar.ClientSecret,
			RefreshToken: cfg.Calendar.RefreshToken,
			SendUpdates:  cfg.Calendar.SendUpdates,
			Timezone:     cfg.General.Timezone,
			Logger:       logger,
		}),
		Notes:          gateway.NewNotionNotes(notion, cfg.Notion.MeetingsDatabaseID),
		Tasks:          gateway.NewNotionTasks(notion, cfg.Notion.TasksDatabaseID),
		Templates:      templates,
		Journal:        runJournal,
		FollowUpOffset: time.Duration(cfg.General.FollowUpOffsetHours) * time.Hour,
		Logger:         logger,
	})

	result, err := orch.Schedule(ctx, domain.RawRequest{
		Text:          text,
		ReferenceTime: time.Now().In(loc),
	})
	if err != nil {
		return reportFailure(err)
	}

	printResult(result)
	return nil
}

// reportFailure prints the single-line operator summary. Validation and
// gateway errors are shown verbatim; everything else becomes a generic line
// so collaborator internals stay in the diagnostic log.
func reportFailure(err error) error {
	var verr *domain.ValidationError
	var gerr *domain.GatewayError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", verr)
	case errors.As(err, &gerr):
		fmt.Fprintf(os.Stderr, "Scheduling failed: %v\n", gerr)
	default:
		logger.Error("unexpected failure", "err", err)
		fmt.Fprintln(os.Stderr, "An unexpected error occurred. Check the log for details.")
	}
	return err
}

func printResult(result *domain.SchedulingResult) {
	if result.Intent.Language == domain.LangFrench {
		fmt.Println("Réunion planifiée avec succès !")
		fmt.Printf("  Lien Google Meet : %s\n", result.ConferenceLink)
		fmt.Printf("  Page de notes    : %s\n", result.NotesPageRef)
		fmt.Printf("  Tâche de relance : %s\n", result.TaskRef)
		fmt.Printf("  Début            : %s\n", result.Intent.StartTime.Format("Monday 2 January 2006 15:04 MST"))
		if result.Match.Kind == domain.MatchUnknown {
			fmt.Println("  Attention : entreprise non trouvée dans les bases de données")
		} else {
			fmt.Printf("  Organisation     : %s (%s)\n", result.Match.Kind, result.Match.RecordRef)
		}
		return
	}
	fmt.Println("Meeting scheduled successfully!")
	fmt.Printf("  Google Meet link: %s\n", result.ConferenceLink)
	fmt.Printf("  Notes page:       %s\n", result.NotesPageRef)
	fmt.Printf("  Follow-up task:   %s\n", result.TaskRef)
	fmt.Printf("  Starts:           %s\n", result.Intent.StartTime.Format("Monday 2 January 2006 15:04 MST"))
	if result.Match.Kind == domain.MatchUnknown {
		fmt.Println("  Warning: organization not found in the registries")
	} else {
		fmt.Printf("  Organization:     %s (%s)\n", result.Match.Kind, result.Match.RecordRef)
	}
}

// setupLogger replaces the bootstrap logger with the configured one: level
// from config, optionally teeing to a log file.
func setupLogger(cfg *config.Config) {
	var level slog.Level
	switch cfg.General.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	if cfg.General.LogFile != "" {
		f, err := os.OpenFile(cfg.General.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Warn("cannot open log file", "path", cfg.General.LogFile, "err", err)
		} else {
			w = io.MultiWriter(os.Stderr, f)
		}
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize config directory with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := config.DefaultConfigPath()
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists at %s", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			fmt.Printf("Wrote %s. Fill in your API credentials before scheduling.\n", cfgPath)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show provider health and recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				logger.Info("config", "path", cfgPath, "loaded", false)
				cfg = config.Defaults()
			} else {
				logger.Info("config", "path", cfgPath, "loaded", true)
			}

			ctx := context.Background()
			prov, err := provider.NewFactory(cfg, logger).Get("")
			if err != nil {
				logger.Info("provider", "available", false, "err", err)
			} else if err := prov.Healthy(ctx); err != nil {
				logger.Info("provider", "name", prov.Name(), "healthy", false, "err", err)
			} else {
				logger.Info("provider", "name", prov.Name(), "healthy", true)
			}

			if !cfg.Journal.Enabled {
				return nil
			}
			store, err := journal.NewStore(cfg.Journal.DBPath, logger)
			if err != nil {
				logger.Warn("journal unavailable", "err", err)
				return nil
			}
			defer store.Close()

			runs, err := store.RecentRuns(ctx, 10)
			if err != nil {
				return err
			}
			for _, r := range runs {
				line := fmt.Sprintf("%s  %-18s  %s", r.CreatedAt.Format("2006-01-02 15:04"), r.State, r.Request)
				if r.Error != "" {
					line += "  (" + r.Error + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [path]",
		Short: "Get a config value (e.g. general.timezone)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			val, err := config.GetByPath(cfg, args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(val, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [path] [value]",
		Short: "Set a config value (e.g. general.defaultProvider ollama)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.SetByPath(cfg, args[0], args[1]); err != nil {
				return fmt.Errorf("set value: %w", err)
			}
			if err := config.Save(cfgPath, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			logger.Info("config updated", "path", args[0], "value", args[1], "file", cfgPath)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all config values (credentials masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			paths := config.ListPaths(config.Sanitize(cfg))
			keys := make([]string, 0, len(paths))
			for k := range paths {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%-40s %v\n", k, paths[k])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(resolveConfigPath())
		},
	})

	return cmd
}

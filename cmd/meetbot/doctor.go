package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"meetbot/internal/config"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

// doctorCmd diagnoses the local setup: config, credentials, journal
// database, templates. It makes no network calls so it is safe to run
// anywhere; use `meetbot status` for live provider health.
func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and local setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor()
		},
	}
}

func runDoctor() error {
	fmt.Println("meetbot doctor")
	fmt.Println()

	passed, warned, failed := 0, 0, 0
	pass := func(name, msg string) { printPass(name, msg); passed++ }
	warn := func(name, msg string) { printWarn(name, msg); warned++ }
	fail := func(name, msg string) { printFail(name, msg); failed++ }

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fail("config", fmt.Sprintf("not found at %s (run `meetbot init`)", cfgPath))
		} else {
			fail("config", err.Error())
		}
		printSummary(passed, warned, failed)
		return fmt.Errorf("%d check(s) failed", failed)
	}
	pass("config", cfgPath)

	if _, err := time.LoadLocation(cfg.General.Timezone); err != nil {
		fail("timezone", fmt.Sprintf("%q: %v", cfg.General.Timezone, err))
	} else {
		pass("timezone", cfg.General.Timezone)
	}

	checkProviders(cfg, pass, warn, fail)
	checkNotion(cfg, pass, fail)
	checkCalendar(cfg, pass, fail)

	if cfg.Journal.Enabled {
		if err := checkDatabase(config.ExpandPath(cfg.Journal.DBPath)); err != nil {
			fail("journal", err.Error())
		} else {
			pass("journal", config.ExpandPath(cfg.Journal.DBPath))
		}
	} else {
		warn("journal", "disabled; runs will not be recorded")
	}

	if cfg.Templates.Dir != "" {
		if _, err := os.Stat(config.ExpandPath(cfg.Templates.Dir)); err != nil {
			warn("templates", fmt.Sprintf("%s not readable, built-ins will be used", cfg.Templates.Dir))
		} else {
			pass("templates", cfg.Templates.Dir)
		}
	}

	if cfg.General.LogFile != "" {
		f, err := os.OpenFile(config.ExpandPath(cfg.General.LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			warn("log file", err.Error())
		} else {
			f.Close()
			pass("log file", cfg.General.LogFile)
		}
	}

	printSummary(passed, warned, failed)
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func checkProviders(cfg *config.Config, pass, warn, fail func(name, msg string)) {
	enabled := 0
	for name, pc := range cfg.Providers {
		if !pc.Enabled {
			continue
		}
		enabled++
		label := "provider " + name
		switch {
		case name == "ollama":
			pass(label, pc.APIBase)
		case pc.APIKey == "":
			fail(label, "enabled but no API key set")
		case strings.HasPrefix(pc.APIKey, "${"):
			fail(label, "API key references an unset environment variable")
		default:
			pass(label, "API key set")
		}
	}
	if enabled == 0 {
		fail("providers", "no provider enabled")
	}
	if _, ok := cfg.Providers[cfg.General.DefaultProvider]; !ok {
		fail("providers", fmt.Sprintf("default provider %q not configured", cfg.General.DefaultProvider))
	}
}

func checkNotion(cfg *config.Config, pass, fail func(name, msg string)) {
	if cfg.Notion.APIKey == "" || strings.HasPrefix(cfg.Notion.APIKey, "${") {
		fail("notion", "API key not set")
	} else {
		pass("notion", "API key set")
	}
	for name, id := range map[string]string{
		"meetings database":  cfg.Notion.MeetingsDatabaseID,
		"tasks database":     cfg.Notion.TasksDatabaseID,
		"customers database": cfg.Notion.CustomersDatabaseID,
		"leads database":     cfg.Notion.LeadsDatabaseID,
	} {
		if id == "" {
			fail(name, "ID not set")
		} else {
			pass(name, id)
		}
	}
}

func checkCalendar(cfg *config.Config, pass, fail func(name, msg string)) {
	if cfg.Calendar.ClientID == "" || cfg.Calendar.ClientSecret == "" {
		fail("calendar", "OAuth client credentials not set")
		return
	}
	if cfg.Calendar.RefreshToken == "" || strings.HasPrefix(cfg.Calendar.RefreshToken, "${") {
		fail("calendar", "refresh token not set")
		return
	}
	pass("calendar", cfg.Calendar.CalendarID)
}

// checkDatabase opens the journal database and verifies it is writable.
func checkDatabase(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS _doctor_test (id INTEGER)"); err != nil {
		return fmt.Errorf("write test: %w", err)
	}
	if _, err := db.Exec("DROP TABLE _doctor_test"); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	return nil
}

func printPass(name, msg string) {
	fmt.Printf("  [PASS] %-20s %s\n", name, msg)
}

func printWarn(name, msg string) {
	fmt.Printf("  [WARN] %-20s %s\n", name, msg)
}

func printFail(name, msg string) {
	fmt.Printf("  [FAIL] %-20s %s\n", name, msg)
}

func printSummary(passed, warned, failed int) {
	fmt.Println()
	fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
}

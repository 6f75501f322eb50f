package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:               "info",
			Timezone:               "Europe/Paris",
			DefaultProvider:        "claude",
			DefaultDurationMinutes: 30,
			FollowUpOffsetHours:    24,
		},
		Providers: map[string]ProviderConfig{
			"claude": {
				Enabled: true,
				APIKey:  "${ANTHROPIC_API_KEY}",
			},
			"ollama": {
				Enabled:      false,
				APIBase:      "http://localhost:11434",
				DefaultModel: "llama3.1:8b",
			},
		},
		Calendar: CalendarConfig{
			CalendarID:  "primary",
			SendUpdates: "all",
		},
		Notion: NotionConfig{
			APIKey:  "${NOTION_API_KEY}",
			Version: "2022-06-28",
		},
		Journal: JournalConfig{
			Enabled: true,
			DBPath:  "~/.meetbot/journal.db",
		},
	}
}

package intent

import (
	"strings"

	"golang.org/x/text/language"

	"meetbot/internal/domain"
)

var langMatcher = language.NewMatcher([]language.Tag{
	language.English, // first entry is the fallback
	language.French,
})

// canonicalLanguage maps an arbitrary locale tag from the extraction service
// ("fr", "fr-FR", "french") onto the two supported languages.
func canonicalLanguage(tag string) (domain.Language, bool) {
	tag = strings.TrimSpace(strings.ToLower(tag))
	switch tag {
	case "":
		return "", false
	case "french", "français", "francais":
		return domain.LangFrench, true
	case "english":
		return domain.LangEnglish, true
	}

	parsed, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	_, idx, conf := langMatcher.Match(parsed)
	if conf == language.No {
		return "", false
	}
	if idx == 1 {
		return domain.LangFrench, true
	}
	return domain.LangEnglish, true
}

// frenchMarkers are common French function words; enough signal to pick a
// template language when the service omits the tag.
var frenchMarkers = []string{
	"réunion", "demain", "avec", "appel", "rendez-vous", "prochain",
	"prochaine", "lundi", "mardi", "mercredi", "jeudi", "vendredi",
	"semaine", "heure", "demande", "à",
}

// detectLanguage is the lexical fallback when the service returns no language
// field. It is intentionally crude: two supported languages, short inputs.
func detectLanguage(text string) domain.Language {
	lowered := strings.ToLower(text)
	hits := 0
	for _, marker := range frenchMarkers {
		if strings.Contains(lowered, marker) {
			hits++
		}
	}
	if hits >= 2 {
		return domain.LangFrench
	}
	return domain.LangEnglish
}

package gateway

import (
	"context"
	"strings"
	"time"

	"meetbot/internal/domain"
)

// NotionNotes implements domain.NotesGateway: one meeting-notes page per run
// in the meetings database, linked to the matched customer or lead record.
type NotionNotes struct {
	client     *NotionClient
	databaseID string
}

func NewNotionNotes(client *NotionClient, databaseID string) *NotionNotes {
	return &NotionNotes{client: client, databaseID: databaseID}
}

func (n *NotionNotes) CreatePage(ctx context.Context, req domain.NotesPageRequest) (string, error) {
	properties := map[string]any{
		"Name": map[string]any{
			"title": []map[string]any{{"text": map[string]any{"content": req.Title}}},
		},
		"Status": map[string]any{
			"select": map[string]any{"name": "Planned"},
		},
		"Meeting date": map[string]any{
			"date": map[string]any{"start": req.MeetingTime.Format(time.RFC3339)},
		},
	}

	switch req.Match.Kind {
	case domain.MatchCustomer:
		properties["Customer"] = relation(req.Match.RecordRef)
	case domain.MatchLead:
		properties["Lead"] = relation(req.Match.RecordRef)
	}

	return n.client.CreatePage(ctx, n.databaseID, properties, paragraphBlocks(req.Body))
}

func relation(pageID string) map[string]any {
	return map[string]any{"relation": []map[string]any{{"id": pageID}}}
}

// paragraphBlocks turns the rendered template body into one paragraph block
// per line, preserving blank lines as empty paragraphs.
func paragraphBlocks(body string) []map[string]any {
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	blocks := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		rich := []map[string]any{}
		if line != "" {
			rich = append(rich, map[string]any{"text": map[string]any{"content": line}})
		}
		blocks = append(blocks, map[string]any{
			"object": "block",
			"type":   "paragraph",
			"paragraph": map[string]any{
				"rich_text": rich,
			},
		})
	}
	return blocks
}

package gateway

import (
	"context"
	"time"

	"meetbot/internal/domain"
)

// NotionTasks implements domain.TaskGateway: the follow-up task is a page in
// the tasks database with a relation back to the meeting-notes page.
type NotionTasks struct {
	client     *NotionClient
	databaseID string
}

func NewNotionTasks(client *NotionClient, databaseID string) *NotionTasks {
	return &NotionTasks{client: client, databaseID: databaseID}
}

func (t *NotionTasks) CreateTask(ctx context.Context, req domain.TaskRequest) (string, error) {
	properties := map[string]any{
		"Name": map[string]any{
			"title": []map[string]any{{"text": map[string]any{"content": req.Title}}},
		},
		"Status": map[string]any{
			"select": map[string]any{"name": "To do"},
		},
		"Due": map[string]any{
			"date": map[string]any{"start": req.Due.Format(time.RFC3339)},
		},
		"Meeting notes": relation(req.NotesPageRef),
	}

	return t.client.CreatePage(ctx, t.databaseID, properties, nil)
}

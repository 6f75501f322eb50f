package gateway

import (
	"context"

	"meetbot/internal/domain"
)

// NotionRegistry implements domain.Registry over one Notion database. The
// customers and leads databases share the property layout: a "Domain"
// rich-text property and an "Email" email property.
type NotionRegistry struct {
	client     *NotionClient
	databaseID string
	kind       domain.MatchKind
}

func NewNotionRegistry(client *NotionClient, databaseID string, kind domain.MatchKind) *NotionRegistry {
	return &NotionRegistry{client: client, databaseID: databaseID, kind: kind}
}

func (r *NotionRegistry) Kind() domain.MatchKind { return r.kind }

func (r *NotionRegistry) FindByDomain(ctx context.Context, emailDomain string) (string, error) {
	return r.findFirst(ctx, map[string]any{
		"property":  "Domain",
		"rich_text": map[string]any{"equals": emailDomain},
	})
}

func (r *NotionRegistry) FindByEmail(ctx context.Context, email string) (string, error) {
	return r.findFirst(ctx, map[string]any{
		"property": "Email",
		"email":    map[string]any{"equals": email},
	})
}

// Create records a new organization entry. The leads database titles its
// pages "Lead name" and the customers database "Company name"; both carry a
// "New" status plus the email and domain used for future lookups.
func (r *NotionRegistry) Create(ctx context.Context, companyName, email string) (string, error) {
	titleProp := "Lead name"
	if r.kind == domain.MatchCustomer {
		titleProp = "Company name"
	}
	properties := map[string]any{
		titleProp: map[string]any{
			"title": []map[string]any{
				{"text": map[string]any{"content": companyName}},
			},
		},
		"Status": map[string]any{
			"select": map[string]any{"name": "New"},
		},
		"Email": map[string]any{
			"email": email,
		},
		"Domain": map[string]any{
			"rich_text": []map[string]any{
				{"text": map[string]any{"content": domain.EmailDomain(email)}},
			},
		},
	}
	return r.client.CreatePage(ctx, r.databaseID, properties, nil)
}

func (r *NotionRegistry) findFirst(ctx context.Context, filter map[string]any) (string, error) {
	ids, err := r.client.QueryDatabase(ctx, r.databaseID, filter)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

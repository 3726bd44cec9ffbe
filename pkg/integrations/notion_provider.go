package integrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jomei/notionapi"

	"ai-datachat-be/pkg/rag"
)

// NotionProvider searches pages and databases in the tenant's connected
// Notion workspace.
type NotionProvider struct {
	tokens TokenSource
}

func NewNotionProvider(tokens TokenSource) *NotionProvider {
	return &NotionProvider{tokens: tokens}
}

func (p *NotionProvider) Type() rag.SourceType {
	return rag.SourceNotion
}

func (p *NotionProvider) Search(ctx context.Context, tenantId uuid.UUID, query string, limit int) ([]rag.IntegrationResult, error) {
	token, err := p.tokens.AccessToken(ctx, tenantId, rag.SourceNotion)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve notion token: %w", err)
	}

	client := notionapi.NewClient(notionapi.Token(token))
	resp, err := client.Search.Do(ctx, &notionapi.SearchRequest{
		Query:    query,
		PageSize: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search notion: %w", err)
	}

	results := make([]rag.IntegrationResult, 0, len(resp.Results))
	for _, obj := range resp.Results {
		if len(results) >= limit {
			break
		}
		switch v := obj.(type) {
		case *notionapi.Page:
			modified := v.LastEditedTime
			results = append(results, rag.IntegrationResult{
				Source:       rag.SourceNotion,
				Title:        pageTitle(v),
				Url:          v.URL,
				LastModified: &modified,
			})
		case *notionapi.Database:
			modified := v.LastEditedTime
			results = append(results, rag.IntegrationResult{
				Source:       rag.SourceNotion,
				Title:        richTextPlain(v.Title),
				Url:          v.URL,
				LastModified: &modified,
			})
		}
	}
	return results, nil
}

func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if text := richTextPlain(title.Title); text != "" {
				return text
			}
		}
	}
	return "Untitled"
}

func richTextPlain(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.PlainText)
	}
	return b.String()
}

package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-datachat-be/pkg/rag"
)

const (
	airtableApiBase        = "https://api.airtable.com/v0"
	airtableSiteBase       = "https://airtable.com"
	airtableRecordPageSize = 50
	airtableMaxBases       = 5
	airtableMaxTables      = 10
)

// AirtableProvider searches records across the tenant's bases. The REST API
// has no cross-base search endpoint, so this walks bases and tables and
// matches query terms against record fields client side. Result titles use
// the "Base / Table" convention the consolidator groups on.
type AirtableProvider struct {
	tokens  TokenSource
	client  *http.Client
	baseUrl string
}

func NewAirtableProvider(tokens TokenSource) *AirtableProvider {
	return &AirtableProvider{
		tokens:  tokens,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseUrl: airtableApiBase,
	}
}

type airtableBase struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type airtableTable struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type airtableRecord struct {
	Id          string                 `json:"id"`
	CreatedTime time.Time              `json:"createdTime"`
	Fields      map[string]interface{} `json:"fields"`
}

func (p *AirtableProvider) Type() rag.SourceType {
	return rag.SourceAirtable
}

func (p *AirtableProvider) Search(ctx context.Context, tenantId uuid.UUID, query string, limit int) ([]rag.IntegrationResult, error) {
	token, err := p.tokens.AccessToken(ctx, tenantId, rag.SourceAirtable)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve airtable token: %w", err)
	}

	bases, err := p.listBases(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(bases) > airtableMaxBases {
		bases = bases[:airtableMaxBases]
	}

	terms := strings.Fields(strings.ToLower(query))
	results := make([]rag.IntegrationResult, 0, limit)

	for _, base := range bases {
		tables, err := p.listTables(ctx, token, base.Id)
		if err != nil {
			return results, err
		}
		if len(tables) > airtableMaxTables {
			tables = tables[:airtableMaxTables]
		}

		for _, table := range tables {
			records, err := p.listRecords(ctx, token, base.Id, table.Id)
			if err != nil {
				return results, err
			}
			for _, record := range records {
				if !recordMatches(record, terms) {
					continue
				}
				created := record.CreatedTime
				results = append(results, rag.IntegrationResult{
					Source:       rag.SourceAirtable,
					Title:        base.Name + " / " + table.Name,
					Url:          fmt.Sprintf("%s/%s/%s", airtableSiteBase, base.Id, table.Id),
					Content:      recordSnippet(record),
					LastModified: &created,
				})
				if len(results) >= limit {
					return results, nil
				}
			}
		}
	}
	return results, nil
}

func (p *AirtableProvider) listBases(ctx context.Context, token string) ([]airtableBase, error) {
	var payload struct {
		Bases []airtableBase `json:"bases"`
	}
	if err := p.get(ctx, token, "/meta/bases", &payload); err != nil {
		return nil, fmt.Errorf("failed to list airtable bases: %w", err)
	}
	return payload.Bases, nil
}

func (p *AirtableProvider) listTables(ctx context.Context, token, baseId string) ([]airtableTable, error) {
	var payload struct {
		Tables []airtableTable `json:"tables"`
	}
	if err := p.get(ctx, token, "/meta/bases/"+baseId+"/tables", &payload); err != nil {
		return nil, fmt.Errorf("failed to list airtable tables: %w", err)
	}
	return payload.Tables, nil
}

func (p *AirtableProvider) listRecords(ctx context.Context, token, baseId, tableId string) ([]airtableRecord, error) {
	var payload struct {
		Records []airtableRecord `json:"records"`
	}
	path := fmt.Sprintf("/%s/%s?%s", baseId, tableId, url.Values{
		"pageSize": {fmt.Sprintf("%d", airtableRecordPageSize)},
	}.Encode())
	if err := p.get(ctx, token, path, &payload); err != nil {
		return nil, fmt.Errorf("failed to list airtable records: %w", err)
	}
	return payload.Records, nil
}

func (p *AirtableProvider) get(ctx context.Context, token, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseUrl+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("airtable api returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func recordMatches(record airtableRecord, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	haystack := strings.ToLower(recordSnippet(record))
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

func recordSnippet(record airtableRecord) string {
	parts := make([]string, 0, len(record.Fields))
	for name, value := range record.Fields {
		parts = append(parts, fmt.Sprintf("%s: %v", name, value))
	}
	return strings.Join(parts, ", ")
}

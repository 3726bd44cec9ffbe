package integrations

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"ai-datachat-be/pkg/rag"
)

const githubRequestTimeout = 30 * time.Second

// GitHubProvider searches repositories and issues the tenant's token can
// reach. A client is built per call because tokens are per tenant.
type GitHubProvider struct {
	tokens TokenSource
}

func NewGitHubProvider(tokens TokenSource) *GitHubProvider {
	return &GitHubProvider{tokens: tokens}
}

func (p *GitHubProvider) Type() rag.SourceType {
	return rag.SourceGitHub
}

func (p *GitHubProvider) client(ctx context.Context, tenantId uuid.UUID) (*gh.Client, error) {
	token, err := p.tokens.AccessToken(ctx, tenantId, rag.SourceGitHub)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve github token: %w", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = githubRequestTimeout
	return gh.NewClient(httpClient), nil
}

func (p *GitHubProvider) Search(ctx context.Context, tenantId uuid.UUID, query string, limit int) ([]rag.IntegrationResult, error) {
	client, err := p.client(ctx, tenantId)
	if err != nil {
		return nil, err
	}

	results := make([]rag.IntegrationResult, 0, limit)

	repoResult, _, err := client.Search.Repositories(ctx, query, &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search github repositories: %w", err)
	}
	for _, repo := range repoResult.Repositories {
		if len(results) >= limit {
			break
		}
		var modified *time.Time
		if ts := repo.GetUpdatedAt(); !ts.IsZero() {
			t := ts.Time
			modified = &t
		}
		results = append(results, rag.IntegrationResult{
			Source:       rag.SourceGitHub,
			Title:        repo.GetFullName(),
			Url:          repo.GetHTMLURL(),
			Content:      repo.GetDescription(),
			LastModified: modified,
		})
	}

	if len(results) < limit {
		issueResult, _, err := client.Search.Issues(ctx, query, &gh.SearchOptions{
			ListOptions: gh.ListOptions{PerPage: limit - len(results)},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search github issues: %w", err)
		}
		for _, issue := range issueResult.Issues {
			if len(results) >= limit {
				break
			}
			var modified *time.Time
			if ts := issue.GetUpdatedAt(); !ts.IsZero() {
				t := ts.Time
				modified = &t
			}
			results = append(results, rag.IntegrationResult{
				Source:       rag.SourceGitHub,
				Title:        issue.GetTitle(),
				Url:          issue.GetHTMLURL(),
				Content:      issue.GetBody(),
				LastModified: modified,
			})
		}
	}

	return results, nil
}

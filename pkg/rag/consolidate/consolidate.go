// Package consolidate merges file evidence and integration search hits into
// the deduplicated, ranked citation list shown next to an answer.
package consolidate

import (
	"net/url"
	"sort"
	"strings"

	"ai-datachat-be/pkg/rag"
)

// FileScoreThreshold is the minimum similarity a file source needs to earn
// a citation. Chunks below it may still feed the answer context; they are
// just not confident enough to cite.
const FileScoreThreshold = 0.65

// HierarchicalSeparator splits container/child titles such as
// "Acme Base / Projects". Upstream integration formatting must keep
// producing exactly this separator for grouping to work.
const HierarchicalSeparator = " / "

// Consolidate applies the citation rules in order: casual and list queries
// get no citations; an explicitly requested source that produced results
// suppresses all others; weak file sources are filtered out; hierarchical
// integration titles collapse into their container with relevance growing
// per grouped record.
func Consolidate(fileSources []rag.SourceSummary, integrationResults []rag.IntegrationResult, requestedSource rag.SourceType, isCasual, isListQuery bool) []rag.ConsolidatedSource {
	if isCasual || isListQuery {
		return []rag.ConsolidatedSource{}
	}

	fileSources, integrationResults = applyRequestedSource(fileSources, integrationResults, requestedSource)

	var sources []rag.ConsolidatedSource
	for _, fs := range fileSources {
		if fs.Score < FileScoreThreshold {
			continue
		}
		sources = append(sources, rag.ConsolidatedSource{
			Type:      rag.SourceFile,
			Name:      fs.Filename,
			Relevance: fs.Score,
		})
	}

	sources = append(sources, groupIntegrationResults(integrationResults)...)

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Relevance > sources[j].Relevance
	})
	if sources == nil {
		return []rag.ConsolidatedSource{}
	}
	return sources
}

// applyRequestedSource drops everything outside the source the user named,
// but only when that source actually produced results. A requested source
// with nothing to show falls back to the full result set.
func applyRequestedSource(fileSources []rag.SourceSummary, integrationResults []rag.IntegrationResult, requested rag.SourceType) ([]rag.SourceSummary, []rag.IntegrationResult) {
	if requested == "" {
		return fileSources, integrationResults
	}

	hasRequested := false
	if requested == rag.SourceFile && len(fileSources) > 0 {
		hasRequested = true
	}
	for _, r := range integrationResults {
		if r.Source == requested {
			hasRequested = true
			break
		}
	}
	if !hasRequested {
		return fileSources, integrationResults
	}

	if requested != rag.SourceFile {
		fileSources = nil
	}
	filtered := integrationResults[:0:0]
	for _, r := range integrationResults {
		if r.Source == requested {
			filtered = append(filtered, r)
		}
	}
	return fileSources, filtered
}

func groupIntegrationResults(results []rag.IntegrationResult) []rag.ConsolidatedSource {
	var grouped []rag.ConsolidatedSource
	index := make(map[string]int)

	for _, r := range results {
		name, link := groupKey(r)
		key := string(r.Source) + "\x00" + name

		if i, seen := index[key]; seen {
			grouped[i].Relevance = minFloat(1.0, grouped[i].Relevance+0.1)
			continue
		}
		index[key] = len(grouped)
		grouped = append(grouped, rag.ConsolidatedSource{
			Type:      r.Source,
			Name:      name,
			Url:       link,
			Relevance: 1.0,
		})
	}
	return grouped
}

// groupKey derives the display name and url for one raw hit. Airtable
// titles encode "Container / Item"; those collapse to the container with a
// container-level url. Titles without the separator group as themselves, so
// a format drift upstream degrades to no grouping rather than an error.
func groupKey(r rag.IntegrationResult) (string, string) {
	if r.Source != rag.SourceAirtable {
		return r.Title, r.Url
	}
	container, _, found := strings.Cut(r.Title, HierarchicalSeparator)
	if !found {
		return r.Title, r.Url
	}
	return container, truncateToFirstSegment(r.Url)
}

func truncateToFirstSegment(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return raw
	}
	segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	if len(segments) <= 1 {
		return raw
	}
	u.Path = "/" + segments[0]
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

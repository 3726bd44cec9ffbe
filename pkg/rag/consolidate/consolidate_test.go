package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-datachat-be/pkg/rag"
)

func TestConsolidate_CasualAndListQueriesGetNoCitations(t *testing.T) {
	fileSources := []rag.SourceSummary{{Filename: "report.pdf", Score: 0.9}}
	integrationResults := []rag.IntegrationResult{
		{Source: rag.SourceGitHub, Title: "api", Url: "https://github.com/acme/api"},
	}

	assert.Empty(t, Consolidate(fileSources, integrationResults, "", true, false))
	assert.Empty(t, Consolidate(fileSources, integrationResults, "", false, true))
}

func TestConsolidate_FileThreshold(t *testing.T) {
	fileSources := []rag.SourceSummary{
		{Filename: "strong.pdf", Score: 0.82},
		{Filename: "weak.pdf", Score: 0.5},
		{Filename: "borderline.pdf", Score: 0.65},
	}

	sources := Consolidate(fileSources, nil, "", false, false)

	require.Len(t, sources, 2)
	assert.Equal(t, "strong.pdf", sources[0].Name)
	assert.Equal(t, 0.82, sources[0].Relevance)
	assert.Equal(t, "borderline.pdf", sources[1].Name)
}

func TestConsolidate_RequestedSourceSuppressesOthers(t *testing.T) {
	fileSources := []rag.SourceSummary{{Filename: "report.pdf", Score: 0.9}}
	integrationResults := []rag.IntegrationResult{
		{Source: rag.SourceGitHub, Title: "api", Url: "https://github.com/acme/api"},
		{Source: rag.SourceNotion, Title: "Roadmap", Url: "https://notion.so/roadmap"},
	}

	sources := Consolidate(fileSources, integrationResults, rag.SourceGitHub, false, false)

	require.Len(t, sources, 1)
	assert.Equal(t, rag.SourceGitHub, sources[0].Type)
	assert.Equal(t, "api", sources[0].Name)
}

func TestConsolidate_RequestedSourceWithoutResultsFallsBack(t *testing.T) {
	fileSources := []rag.SourceSummary{{Filename: "report.pdf", Score: 0.9}}
	integrationResults := []rag.IntegrationResult{
		{Source: rag.SourceNotion, Title: "Roadmap", Url: "https://notion.so/roadmap"},
	}

	// GitHub produced nothing, so suppression does not kick in.
	sources := Consolidate(fileSources, integrationResults, rag.SourceGitHub, false, false)

	require.Len(t, sources, 2)
}

func TestConsolidate_AirtableContainerGrouping(t *testing.T) {
	integrationResults := []rag.IntegrationResult{
		{Source: rag.SourceAirtable, Title: "Acme Base / Projects", Url: "https://airtable.com/appAcme/tblProjects"},
		{Source: rag.SourceAirtable, Title: "Acme Base / Revenue", Url: "https://airtable.com/appAcme/tblRevenue"},
	}

	sources := Consolidate(nil, integrationResults, "", false, false)

	require.Len(t, sources, 1)
	assert.Equal(t, "Acme Base", sources[0].Name)
	assert.Equal(t, "https://airtable.com/appAcme", sources[0].Url)
	// First occurrence starts at 1.0; the repeat boost is capped there.
	assert.Equal(t, 1.0, sources[0].Relevance)
}

func TestConsolidate_SeparatorIsExactlySpaceSlashSpace(t *testing.T) {
	// Titles joined with a bare slash must not group; a drift in upstream
	// formatting degrades to per-title entries instead of wrong grouping.
	integrationResults := []rag.IntegrationResult{
		{Source: rag.SourceAirtable, Title: "Acme Base/Projects", Url: "https://airtable.com/appAcme/tblProjects"},
		{Source: rag.SourceAirtable, Title: "Acme Base/Revenue", Url: "https://airtable.com/appAcme/tblRevenue"},
	}

	sources := Consolidate(nil, integrationResults, "", false, false)

	require.Len(t, sources, 2)
	assert.Equal(t, "Acme Base/Projects", sources[0].Name)
	assert.Equal(t, "https://airtable.com/appAcme/tblProjects", sources[0].Url)
}

func TestConsolidate_NonHierarchicalSourcesGroupByTitle(t *testing.T) {
	integrationResults := []rag.IntegrationResult{
		{Source: rag.SourceGitHub, Title: "acme/api", Url: "https://github.com/acme/api"},
		{Source: rag.SourceGitHub, Title: "acme/api", Url: "https://github.com/acme/api"},
		{Source: rag.SourceNotion, Title: "Team Wiki / Onboarding", Url: "https://notion.so/onboarding"},
	}

	sources := Consolidate(nil, integrationResults, "", false, false)

	require.Len(t, sources, 2)
	assert.Equal(t, "acme/api", sources[0].Name)
	// Notion titles keep the full title even when they contain the separator.
	assert.Equal(t, "Team Wiki / Onboarding", sources[1].Name)
}

func TestConsolidate_SortsByRelevanceWithStableTies(t *testing.T) {
	fileSources := []rag.SourceSummary{{Filename: "report.pdf", Score: 0.7}}
	integrationResults := []rag.IntegrationResult{
		{Source: rag.SourceGitHub, Title: "acme/api", Url: "https://github.com/acme/api"},
		{Source: rag.SourceNotion, Title: "Roadmap", Url: "https://notion.so/roadmap"},
	}

	sources := Consolidate(fileSources, integrationResults, "", false, false)

	require.Len(t, sources, 3)
	// Both integration entries sit at 1.0, ahead of the 0.7 file; their
	// mutual order is encounter order.
	assert.Equal(t, "acme/api", sources[0].Name)
	assert.Equal(t, "Roadmap", sources[1].Name)
	assert.Equal(t, "report.pdf", sources[2].Name)
}

func TestConsolidate_EmptyInputs(t *testing.T) {
	sources := Consolidate(nil, nil, "", false, false)
	assert.NotNil(t, sources)
	assert.Empty(t, sources)
}

package integrations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-datachat-be/pkg/rag"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) AccessToken(_ context.Context, _ uuid.UUID, _ rag.SourceType) (string, error) {
	return s.token, s.err
}

func TestAirtableProvider_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer pat-secret", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/meta/bases":
			w.Write([]byte(`{"bases":[{"id":"appAcme","name":"Acme Base"}]}`))
		case "/meta/bases/appAcme/tables":
			w.Write([]byte(`{"tables":[{"id":"tblProjects","name":"Projects"},{"id":"tblRevenue","name":"Revenue"}]}`))
		case "/appAcme/tblProjects":
			w.Write([]byte(`{"records":[
				{"id":"rec1","createdTime":"2026-01-10T09:00:00.000Z","fields":{"Name":"Apollo launch","Status":"Active"}},
				{"id":"rec2","createdTime":"2026-01-11T09:00:00.000Z","fields":{"Name":"Website refresh","Status":"Done"}}
			]}`))
		case "/appAcme/tblRevenue":
			w.Write([]byte(`{"records":[
				{"id":"rec3","createdTime":"2026-02-01T09:00:00.000Z","fields":{"Month":"January","Amount":12000}}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	provider := NewAirtableProvider(staticTokens{token: "pat-secret"})
	provider.baseUrl = server.URL

	results, err := provider.Search(context.Background(), uuid.New(), "apollo", 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, rag.SourceAirtable, results[0].Source)
	assert.Equal(t, "Acme Base / Projects", results[0].Title)
	assert.Equal(t, "https://airtable.com/appAcme/tblProjects", results[0].Url)
	assert.Contains(t, results[0].Content, "Apollo launch")
}

func TestAirtableProvider_Search_RespectsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/meta/bases":
			w.Write([]byte(`{"bases":[{"id":"appAcme","name":"Acme Base"}]}`))
		case "/meta/bases/appAcme/tables":
			w.Write([]byte(`{"tables":[{"id":"tblProjects","name":"Projects"}]}`))
		case "/appAcme/tblProjects":
			w.Write([]byte(`{"records":[
				{"id":"rec1","createdTime":"2026-01-10T09:00:00.000Z","fields":{"Name":"budget alpha"}},
				{"id":"rec2","createdTime":"2026-01-11T09:00:00.000Z","fields":{"Name":"budget beta"}},
				{"id":"rec3","createdTime":"2026-01-12T09:00:00.000Z","fields":{"Name":"budget gamma"}}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	provider := NewAirtableProvider(staticTokens{token: "pat-secret"})
	provider.baseUrl = server.URL

	results, err := provider.Search(context.Background(), uuid.New(), "budget", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestAirtableProvider_Search_ApiError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := NewAirtableProvider(staticTokens{token: "expired"})
	provider.baseUrl = server.URL

	_, err := provider.Search(context.Background(), uuid.New(), "anything", 5)
	assert.Error(t, err)
}

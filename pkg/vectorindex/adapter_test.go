package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-datachat-be/internal/pkg/logger"
)

type fakeIndex struct {
	records     map[string]map[string]Record // namespace -> id -> record
	queryCalls  []fakeQueryCall
	deleteCalls []fakeDeleteCall
	queryErr    error
	deleteErr   error
}

type fakeQueryCall struct {
	namespace string
	topK      int
	filter    Filter
}

type fakeDeleteCall struct {
	namespace string
	ids       []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{records: make(map[string]map[string]Record)}
}

func (f *fakeIndex) Upsert(_ context.Context, namespace string, records []Record) error {
	if f.records[namespace] == nil {
		f.records[namespace] = make(map[string]Record)
	}
	for _, r := range records {
		f.records[namespace][r.Id] = r
	}
	return nil
}

func (f *fakeIndex) Query(_ context.Context, namespace string, _ []float32, topK int, filter Filter) ([]Match, error) {
	f.queryCalls = append(f.queryCalls, fakeQueryCall{namespace: namespace, topK: topK, filter: filter})
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	var matches []Match
	for id, r := range f.records[namespace] {
		ok := true
		for k, v := range filter {
			if fmt.Sprintf("%v", r.Metadata[k]) != v {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, Match{Id: id, Score: 1})
		}
		if len(matches) >= topK {
			break
		}
	}
	return matches, nil
}

func (f *fakeIndex) DeleteByIds(_ context.Context, namespace string, ids []string) error {
	f.deleteCalls = append(f.deleteCalls, fakeDeleteCall{namespace: namespace, ids: ids})
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for _, id := range ids {
		delete(f.records[namespace], id)
	}
	return nil
}

func TestAdapter_NamespaceIsolation(t *testing.T) {
	index := newFakeIndex()
	adapter := NewAdapter(index, 4, logger.NewNopLogger())

	tenantA := uuid.New()
	tenantB := uuid.New()

	err := adapter.Upsert(context.Background(), tenantA, []Record{
		{Id: uuid.NewString(), Values: []float32{1, 0, 0, 0}},
	})
	require.NoError(t, err)

	matches, err := adapter.Query(context.Background(), tenantB, []float32{1, 0, 0, 0}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, matches, "tenant B must not see tenant A's records")

	matches, err = adapter.Query(context.Background(), tenantA, []float32{1, 0, 0, 0}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	assert.Equal(t, "tenant-"+tenantA.String(), index.queryCalls[1].namespace)
}

func TestAdapter_DeleteByFilter(t *testing.T) {
	index := newFakeIndex()
	adapter := NewAdapter(index, 4, logger.NewNopLogger())

	tenantId := uuid.New()
	documentId := uuid.NewString()

	records := []Record{
		{Id: uuid.NewString(), Values: []float32{1, 0, 0, 0}, Metadata: map[string]interface{}{"document_id": documentId}},
		{Id: uuid.NewString(), Values: []float32{0, 1, 0, 0}, Metadata: map[string]interface{}{"document_id": documentId}},
		{Id: uuid.NewString(), Values: []float32{0, 0, 1, 0}, Metadata: map[string]interface{}{"document_id": uuid.NewString()}},
	}
	require.NoError(t, adapter.Upsert(context.Background(), tenantId, records))

	deleted, err := adapter.DeleteByFilter(context.Background(), tenantId, Filter{"document_id": documentId})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	// Lookup phase must use the broad cap, not the caller's topK.
	require.Len(t, index.queryCalls, 1)
	assert.Equal(t, FilterQueryLimit, index.queryCalls[0].topK)

	// The unrelated record survives.
	remaining := index.records["tenant-"+tenantId.String()]
	assert.Len(t, remaining, 1)
	_, ok := remaining[records[2].Id]
	assert.True(t, ok)
}

func TestAdapter_DeleteByFilter_NoMatches(t *testing.T) {
	index := newFakeIndex()
	adapter := NewAdapter(index, 4, logger.NewNopLogger())

	deleted, err := adapter.DeleteByFilter(context.Background(), uuid.New(), Filter{"document_id": uuid.NewString()})
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Empty(t, index.deleteCalls)
}

func TestAdapter_DeleteByFilter_BatchesDeletes(t *testing.T) {
	index := newFakeIndex()
	adapter := NewAdapter(index, 4, logger.NewNopLogger())

	tenantId := uuid.New()
	documentId := uuid.NewString()

	records := make([]Record, 0, DeleteBatchSize+5)
	for i := 0; i < DeleteBatchSize+5; i++ {
		records = append(records, Record{
			Id:       uuid.NewString(),
			Values:   []float32{0, 0, 0, 1},
			Metadata: map[string]interface{}{"document_id": documentId},
		})
	}
	require.NoError(t, adapter.Upsert(context.Background(), tenantId, records))

	deleted, err := adapter.DeleteByFilter(context.Background(), tenantId, Filter{"document_id": documentId})
	require.NoError(t, err)
	assert.Equal(t, DeleteBatchSize+5, deleted)

	require.Len(t, index.deleteCalls, 2)
	assert.Len(t, index.deleteCalls[0].ids, DeleteBatchSize)
	assert.Len(t, index.deleteCalls[1].ids, 5)
}

func TestAdapter_DeleteByFilter_QueryError(t *testing.T) {
	index := newFakeIndex()
	index.queryErr = errors.New("store unavailable")
	adapter := NewAdapter(index, 4, logger.NewNopLogger())

	deleted, err := adapter.DeleteByFilter(context.Background(), uuid.New(), Filter{"document_id": "x"})
	assert.Error(t, err)
	assert.Zero(t, deleted)
}

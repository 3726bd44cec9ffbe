package service

import (
	"testing"

	"ai-datachat-be/internal/entity"
	"ai-datachat-be/pkg/chunker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerService_Split_ByContentType(t *testing.T) {
	cs := &consumerService{chunkConfig: chunker.DefaultConfig()}

	tests := []struct {
		name        string
		contentType string
		content     string
		wantErr     bool
	}{
		{
			name:        "plain text",
			contentType: "text/plain",
			content:     "A paragraph of text long enough to survive the minimum chunk size filter in the splitter.",
		},
		{
			name:        "csv rows",
			contentType: "text/csv",
			content:     "id,summary\n1,this row carries a reasonably long summary that clears the minimum chunk size\n",
		},
		{
			name:        "json document",
			contentType: "application/json",
			content:     `{"summary": "this value carries a reasonably long summary that clears the minimum chunk size"}`,
		},
		{
			name:        "invalid json",
			contentType: "application/json",
			content:     "{not json",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := cs.split(&entity.Document{
				ContentType: tt.contentType,
				Content:     tt.content,
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, chunks)
		})
	}
}

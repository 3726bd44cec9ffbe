package chunker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{ChunkSize: 200, ChunkOverlap: 40, MinChunkSize: 20}
}

func TestSplitShortInputReturnsSingleChunk(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "plain short text",
			text: "A short note about quarterly revenue.",
			want: "A short note about quarterly revenue.",
		},
		{
			name: "windows line endings are normalized",
			text: "line one\r\nline two",
			want: "line one\nline two",
		},
		{
			name: "newline runs collapse to paragraph breaks",
			text: "first paragraph\n\n\n\n\nsecond paragraph",
			want: "first paragraph\n\nsecond paragraph",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.text, testConfig())
			if len(chunks) != 1 {
				t.Fatalf("chunk count = %d, want 1", len(chunks))
			}
			if chunks[0].Content != tt.want {
				t.Errorf("content = %q, want %q", chunks[0].Content, tt.want)
			}
			if chunks[0].StartChar != 0 || chunks[0].EndChar != len(tt.want) {
				t.Errorf("offsets = [%d,%d), want [0,%d)", chunks[0].StartChar, chunks[0].EndChar, len(tt.want))
			}
		})
	}
}

func TestSplitEmptyInput(t *testing.T) {
	if got := Split("   \n\n  ", testConfig()); got != nil {
		t.Errorf("Split on whitespace = %v, want nil", got)
	}
}

func longText(paragraphs int) string {
	var sb strings.Builder
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&sb, "Paragraph %d talks about the monthly sales numbers and how the pipeline is evolving over time.", i)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func TestSplitOrderingAndOffsets(t *testing.T) {
	cfg := testConfig()
	chunks := Split(longText(10), cfg)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has Index %d", i, c.Index)
		}
		if c.EndChar-c.StartChar != len(c.Content) {
			t.Errorf("chunk %d offsets span %d chars, content is %d", i, c.EndChar-c.StartChar, len(c.Content))
		}
		if i > 0 {
			prev := chunks[i-1]
			if c.StartChar < prev.StartChar {
				t.Errorf("chunk %d starts before chunk %d", i, i-1)
			}
			// overlap between consecutive chunks is bounded by the config
			if overlap := prev.EndChar - c.StartChar; overlap > cfg.ChunkOverlap {
				t.Errorf("chunk %d overlaps previous by %d, cap is %d", i, overlap, cfg.ChunkOverlap)
			}
		}
	}
}

func TestSplitOverlapPreservesBoundaryContext(t *testing.T) {
	cfg := testConfig()
	chunks := Split(longText(10), cfg)

	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if cur.StartChar >= prev.EndChar {
			continue // chunk was dropped between the two, no shared text
		}
		shared := prev.EndChar - cur.StartChar
		if !strings.HasPrefix(cur.Content, prev.Content[len(prev.Content)-shared:]) {
			t.Errorf("chunk %d does not begin with the tail of chunk %d", i, i-1)
		}
	}
}

func TestSplitMinChunkSizeDropsIntermediates(t *testing.T) {
	cfg := testConfig()
	chunks := Split(longText(12), cfg)

	for i, c := range chunks {
		if i == len(chunks)-1 {
			continue // final chunk may be short
		}
		if len(strings.TrimSpace(c.Content)) < cfg.MinChunkSize {
			t.Errorf("intermediate chunk %d trimmed length %d under min %d", i, len(strings.TrimSpace(c.Content)), cfg.MinChunkSize)
		}
	}
}

func TestSplitOversizedParagraphFallsBackToSentences(t *testing.T) {
	cfg := Config{ChunkSize: 120, ChunkOverlap: 20, MinChunkSize: 10}
	// one paragraph, no double newlines, well past the chunk size
	text := strings.Repeat("The report covers revenue. It also covers churn. Finally it covers growth. ", 8)

	chunks := Split(text, cfg)
	if len(chunks) < 2 {
		t.Fatalf("expected sentence-splitting to produce multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Content) > cfg.ChunkSize+cfg.ChunkOverlap {
			t.Errorf("chunk %d length %d exceeds size+overlap budget", i, len(c.Content))
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := longText(9)
	first := Split(text, testConfig())
	second := Split(text, testConfig())
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input and config produced different chunkings")
	}
}

func TestSplitCSV(t *testing.T) {
	csv := "name,amount,region\nAcme Corp,120000,EMEA and the broader European market segment\nBeta LLC,95000,North America including Canada and Mexico\n"
	cfg := Config{ChunkSize: 500, ChunkOverlap: 0, MinChunkSize: 10}

	chunks := SplitCSV(csv, cfg)
	if len(chunks) != 2 {
		t.Fatalf("chunk count = %d, want 2", len(chunks))
	}

	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has Index %d", i, c.Index)
		}
		if !strings.HasPrefix(c.Content, "name,amount,region\n") {
			t.Errorf("chunk %d missing header prefix: %q", i, c.Content)
		}
		if !strings.Contains(c.Content, fmt.Sprintf("Row %d:", i+1)) {
			t.Errorf("chunk %d missing row index: %q", i, c.Content)
		}
	}
}

func TestSplitCSVSkipsSmallRows(t *testing.T) {
	// middle row is tiny; with a high MinChunkSize it is skipped, not merged
	csv := "id,note\n1,this first row carries a reasonably long note that clears the minimum\n2,x\n3,this final row also carries a reasonably long note that clears the minimum\n"
	cfg := Config{ChunkSize: 500, ChunkOverlap: 0, MinChunkSize: 60}

	chunks := SplitCSV(csv, cfg)
	if len(chunks) != 2 {
		t.Fatalf("chunk count = %d, want 2 (small row skipped)", len(chunks))
	}
	for _, c := range chunks {
		if strings.Contains(c.Content, "2,x") {
			t.Errorf("skipped row leaked into chunk: %q", c.Content)
		}
	}
}

func TestSplitCSVLastRowKeptEvenIfSmall(t *testing.T) {
	csv := "id,note\n1,this first row carries a reasonably long note that clears the minimum\n2,x\n"
	cfg := Config{ChunkSize: 500, ChunkOverlap: 0, MinChunkSize: 60}

	chunks := SplitCSV(csv, cfg)
	if len(chunks) != 2 {
		t.Fatalf("chunk count = %d, want 2 (last row kept)", len(chunks))
	}
}

func TestSplitJSON(t *testing.T) {
	raw := []byte(`{"customer":"Acme","deals":[{"name":"Q3 renewal","value":42000}]}`)

	chunks, err := SplitJSON(raw, Config{ChunkSize: 500, ChunkOverlap: 0, MinChunkSize: 5})
	if err != nil {
		t.Fatalf("SplitJSON: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunk count = %d, want 1", len(chunks))
	}
	if !strings.Contains(chunks[0].Content, "\"customer\": \"Acme\"") {
		t.Errorf("indented serialization missing field: %q", chunks[0].Content)
	}
}

func TestSplitJSONInvalid(t *testing.T) {
	if _, err := SplitJSON([]byte("{not json"), DefaultConfig()); err == nil {
		t.Error("expected error for invalid json")
	}
}

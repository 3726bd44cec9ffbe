package chunker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SplitCSV chunks row-oriented data: every data row becomes one chunk
// carrying the header line and its row number, so each row stays
// independently retrievable.
//
// Rows whose combined chunk text falls under MinChunkSize are skipped
// outright instead of being merged into a neighbour; only the last data row
// is exempt. Callers that need small rows indexed must widen MinChunkSize.
func SplitCSV(text string, cfg Config) []Chunk {
	cfg = cfg.sanitized()

	normalized := Normalize(text)
	lines := strings.Split(normalized, "\n")

	// locate the header and the data rows with their offsets
	type row struct {
		line  string
		start int
	}
	var header string
	var rows []row

	offset := 0
	for _, line := range lines {
		lineStart := offset
		offset += len(line) + 1

		if strings.TrimSpace(line) == "" {
			continue
		}
		if header == "" {
			header = line
			continue
		}
		rows = append(rows, row{line: line, start: lineStart})
	}

	if header == "" || len(rows) == 0 {
		return nil
	}

	var chunks []Chunk
	for i, r := range rows {
		content := fmt.Sprintf("%s\nRow %d: %s", header, i+1, r.line)

		last := i == len(rows)-1
		if !last && len(strings.TrimSpace(content)) < cfg.MinChunkSize {
			continue
		}

		c := newChunk(len(chunks), content, r.start, r.start+len(r.line))
		chunks = append(chunks, c)
	}

	return chunks
}

// SplitJSON serializes a JSON document to indented text and defers to the
// generic text chunker.
func SplitJSON(raw []byte, cfg Config) ([]Chunk, error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("parse json document: %w", err)
	}

	indented, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize json document: %w", err)
	}

	return Split(string(indented), cfg), nil
}

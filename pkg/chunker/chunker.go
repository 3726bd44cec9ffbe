// Package chunker splits parsed document text into overlapping fragments
// sized for embedding and retrieval.
package chunker

import (
	"regexp"
	"strings"

	"ai-datachat-be/pkg/rag"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultMinChunkSize is the default minimum trimmed chunk length.
const DefaultMinChunkSize = 100

// Config holds the chunking parameters.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	MinChunkSize int
}

// DefaultConfig returns the default chunking configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		MinChunkSize: DefaultMinChunkSize,
	}
}

func (c Config) sanitized() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 0
	}
	if c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = c.ChunkSize / 4
	}
	if c.MinChunkSize < 0 {
		c.MinChunkSize = 0
	}
	return c
}

// Chunk is one bounded fragment of a document. StartChar and EndChar are
// offsets into the normalized text.
type Chunk struct {
	Index     int
	Content   string
	StartChar int
	EndChar   int
	Tokens    int
}

var (
	crRegex      = regexp.MustCompile(`\r\n?`)
	newlineRegex = regexp.MustCompile(`\n{3,}`)
)

// Normalize converts line endings to \n and collapses runs of 3+ newlines
// down to 2 so paragraph boundaries are always exactly one blank line.
func Normalize(text string) string {
	text = crRegex.ReplaceAllString(text, "\n")
	return newlineRegex.ReplaceAllString(text, "\n\n")
}

// segment is a contiguous [start,end) range over the normalized text.
type segment struct {
	start int
	end   int
}

// Split chunks free text. Short inputs come back as a single chunk; longer
// inputs are split on paragraph boundaries and greedily accumulated, with
// the trailing overlap of each closed chunk seeding the next one so context
// survives the boundary. Oversized paragraphs fall back to sentence
// boundaries, and oversized sentences to hard slices.
func Split(text string, cfg Config) []Chunk {
	cfg = cfg.sanitized()

	normalized := Normalize(text)
	if strings.TrimSpace(normalized) == "" {
		return nil
	}

	if len(normalized) <= cfg.ChunkSize {
		return []Chunk{newChunk(0, normalized, 0, len(normalized))}
	}

	segments := atomicSegments(normalized, cfg.ChunkSize)
	return accumulate(normalized, segments, cfg)
}

// atomicSegments splits the text into paragraph ranges, breaking any
// paragraph longer than chunkSize into sentence ranges (and any sentence
// longer than chunkSize into hard slices) so every segment fits a chunk.
func atomicSegments(text string, chunkSize int) []segment {
	var segments []segment

	pos := 0
	for pos < len(text) {
		sep := strings.Index(text[pos:], "\n\n")
		end := len(text)
		if sep >= 0 {
			end = pos + sep
		}

		if end > pos {
			para := segment{start: pos, end: end}
			if end-pos > chunkSize {
				segments = append(segments, sentenceSegments(text, para, chunkSize)...)
			} else {
				segments = append(segments, para)
			}
		}

		if sep < 0 {
			break
		}
		pos = end + 2
	}

	return segments
}

// sentenceSegments breaks a single oversized paragraph into sentence-bounded
// ranges. A boundary is a terminator run (. ! ?) followed by whitespace.
func sentenceSegments(text string, para segment, chunkSize int) []segment {
	var segments []segment

	start := para.start
	i := para.start
	for i < para.end {
		if isTerminator(text[i]) {
			// consume the terminator run
			for i < para.end && isTerminator(text[i]) {
				i++
			}
			if i >= para.end || text[i] == ' ' || text[i] == '\n' {
				segments = append(segments, hardSlice(segment{start, i}, chunkSize)...)
				// skip the whitespace into the next sentence
				for i < para.end && (text[i] == ' ' || text[i] == '\n') {
					i++
				}
				start = i
			}
			continue
		}
		i++
	}

	if start < para.end {
		segments = append(segments, hardSlice(segment{start, para.end}, chunkSize)...)
	}

	return segments
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

// hardSlice cuts a range that still exceeds chunkSize into fixed slices.
func hardSlice(seg segment, chunkSize int) []segment {
	if seg.end-seg.start <= chunkSize {
		return []segment{seg}
	}
	var out []segment
	for s := seg.start; s < seg.end; s += chunkSize {
		e := s + chunkSize
		if e > seg.end {
			e = seg.end
		}
		out = append(out, segment{s, e})
	}
	return out
}

// accumulate greedily grows a buffer range over the segments. When adding
// the next segment would push the buffer past chunkSize, the buffer is
// closed as a chunk (dropped without a trace if its trimmed length is under
// minChunkSize) and the next buffer is seeded with the closed buffer's
// trailing overlap.
func accumulate(text string, segments []segment, cfg Config) []Chunk {
	var chunks []Chunk
	if len(segments) == 0 {
		return chunks
	}

	start := segments[0].start
	end := segments[0].end

	emit := func(final bool) {
		content := text[start:end]
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return
		}
		// undersized intermediate chunks are dropped, not shortened; the
		// final chunk is kept regardless
		if !final && len(trimmed) < cfg.MinChunkSize {
			return
		}
		chunks = append(chunks, newChunk(len(chunks), content, start, end))
	}

	for _, seg := range segments[1:] {
		if seg.end-start > cfg.ChunkSize {
			emit(false)

			overlap := cfg.ChunkOverlap
			if overlap > end-start {
				overlap = end - start
			}
			start = end - overlap
		}
		end = seg.end
	}
	emit(true)

	return chunks
}

func newChunk(index int, content string, start, end int) Chunk {
	return Chunk{
		Index:     index,
		Content:   content,
		StartChar: start,
		EndChar:   end,
		Tokens:    rag.EstimateTokens(content),
	}
}

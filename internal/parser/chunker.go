package parser

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"edu-rag/internal/models"
)

// SplitText cuts text into character windows of at most size runes. Every
// window after the first starts overlap runes before the previous one ended,
// so dropping the first overlap runes of each later window and concatenating
// gives back the input. Blank input yields no windows.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []string
	start := 0
	for {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - overlap
	}
	return chunks
}

// JoinChunks reverses SplitText for chunks produced with the same overlap.
func JoinChunks(chunks []string, overlap int) string {
	var content strings.Builder
	for i, chunk := range chunks {
		if i == 0 {
			content.WriteString(chunk)
			continue
		}
		runes := []rune(chunk)
		if len(runes) > overlap {
			content.WriteString(string(runes[overlap:]))
		}
	}
	return content.String()
}

// Chunker turns a document into indexed chunks.
type Chunker struct {
	Splitter string
	Size     int
	Overlap  int
}

func NewChunker(splitter string, size, overlap int) *Chunker {
	return &Chunker{Splitter: splitter, Size: size, Overlap: overlap}
}

// Chunk splits text with the configured splitter. An empty result is
// reported as models.ErrEmptyChunking together with a nil slice.
func (c *Chunker) Chunk(text string) ([]models.Chunk, error) {
	var (
		parts []string
		err   error
	)
	switch c.Splitter {
	case models.SplitterWindow, "":
		parts = SplitText(text, c.Size, c.Overlap)
	case models.SplitterRecursive:
		parts, err = splitRecursive(text, c.Size, c.Overlap)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown splitter %q", c.Splitter)
	}

	if len(parts) == 0 {
		return nil, models.ErrEmptyChunking
	}
	chunks := make([]models.Chunk, 0, len(parts))
	for _, p := range parts {
		chunks = append(chunks, models.Chunk{ChunkID: len(chunks), Content: p})
	}
	return chunks, nil
}

func splitRecursive(text string, size, overlap int) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
	)
	parts, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	// the recursive splitter can emit whitespace-only pieces
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

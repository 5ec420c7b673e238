package chunker

import (
	"strings"

	"chess-rag/internal/domain"
)

// Token budget mirrors the embedding model's 8k context with headroom.
const (
	DefaultMaxTokensPerChunk = 6000
	DefaultChunkSizeWords    = 3000
	DefaultOverlapWords      = 100

	// WordsPerToken approximates tokens from word count for English text.
	WordsPerToken = 0.75
)

// WordChunker splits game descriptions into overlapping word windows when
// they exceed the embedding token budget.
type WordChunker struct {
	maxTokensPerChunk int
	chunkSizeWords    int
	overlapWords      int
}

// NewWordChunker builds a chunker with the given limits. Zero values for
// maxTokensPerChunk and chunkSizeWords fall back to the defaults; an
// overlap of 0 is honored as "no overlap", negative values are clamped.
func NewWordChunker(maxTokensPerChunk, chunkSizeWords, overlapWords int) *WordChunker {
	if maxTokensPerChunk <= 0 {
		maxTokensPerChunk = DefaultMaxTokensPerChunk
	}
	if chunkSizeWords <= 0 {
		chunkSizeWords = DefaultChunkSizeWords
	}
	if overlapWords < 0 {
		overlapWords = 0
	}
	if overlapWords >= chunkSizeWords {
		overlapWords = chunkSizeWords / 4
	}
	return &WordChunker{
		maxTokensPerChunk: maxTokensPerChunk,
		chunkSizeWords:    chunkSizeWords,
		overlapWords:      overlapWords,
	}
}

// Chunk returns the record as a single chunk when its estimated token
// count fits the budget, otherwise one chunk per window position with
// stride chunkSizeWords-overlapWords. The final window may be short.
func (c *WordChunker) Chunk(record domain.GameRecord) []domain.Chunk {
	words := strings.Fields(record.Description)
	if len(words) == 0 {
		return nil
	}
	estimatedTokens := float64(len(words)) / WordsPerToken
	if estimatedTokens <= float64(c.maxTokensPerChunk) {
		return []domain.Chunk{{Text: record.Description, Source: record.Source}}
	}
	stride := c.chunkSizeWords - c.overlapWords
	var chunks []domain.Chunk
	for i := 0; i < len(words); i += stride {
		end := i + c.chunkSizeWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, domain.Chunk{
			Text:   strings.Join(words[i:end], " "),
			Source: record.Source,
		})
		if end == len(words) {
			break
		}
	}
	return chunks
}

// Dedupe drops chunks whose whitespace-normalized text was already seen
// in the batch, keeping first occurrences in order. Returns the surviving
// chunks and the number removed. Running it on its own output is a no-op.
func Dedupe(chunks []domain.Chunk) ([]domain.Chunk, int) {
	seen := make(map[string]struct{}, len(chunks))
	kept := make([]domain.Chunk, 0, len(chunks))
	for _, ch := range chunks {
		normalized := strings.Join(strings.Fields(ch.Text), " ")
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		kept = append(kept, ch)
	}
	return kept, len(chunks) - len(kept)
}

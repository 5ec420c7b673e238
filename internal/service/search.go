package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"chess-rag/internal/domain"
	"chess-rag/internal/store"
)

// Mode selects the output shape of SearchGames.
type Mode string

const (
	// ModeRaw lists ranked chunks without any model post-processing.
	ModeRaw Mode = "raw"
	// ModeReport formats each hit through the chat model as a per-game
	// analysis, console style.
	ModeReport Mode = "report"
	// ModeChat synthesizes one conversational answer across all hits.
	ModeChat Mode = "chat"
)

const analysisSystemPrompt = "You are a chess expert analyzing games."

const analysisPrompt = `Analyze and format this chess game. Extract key information and provide:
1. Basic game details (Event, Date, Players, Result, ECO)
2. A brief description of the game's key moments or strategic themes
3. Format the output in a clear, readable way

Chess game:
%s`

const summarySystemPrompt = "You are a helpful chess analysis assistant providing insights about games."

const summaryPrompt = `Based on these chess games:
%s

Provide a concise, conversational response that:
1. Summarizes the key findings
2. Highlights interesting patterns or insights
3. Uses a friendly, engaging tone
4. Keeps the response focused and relevant to the original query: %q`

// EmbedderFactory resolves a manifest-recorded embedding model to a
// live embedder.
type EmbedderFactory func(model string) (domain.Embedder, error)

// SearchService answers queries against persisted index bundles. It
// holds no mutable cross-call state; each call loads its own bundle.
type SearchService struct {
	store     *store.Store
	embedders EmbedderFactory
	generator domain.Generator // nil when no chat model is configured
	digest    domain.Summarizer
	log       zerolog.Logger
}

func NewSearchService(st *store.Store, embedders EmbedderFactory, generator domain.Generator, digest domain.Summarizer, log zerolog.Logger) *SearchService {
	return &SearchService{store: st, embedders: embedders, generator: generator, digest: digest, log: log}
}

// Search embeds the query with the bundle's recorded model and returns
// up to k ranked hits. datasetID selects a specific bundle; empty picks
// the first available.
func (s *SearchService) Search(query string, k int, datasetID string) ([]domain.SearchHit, error) {
	manifests, err := s.store.Manifests()
	if err != nil {
		return nil, err
	}
	if len(manifests) == 0 {
		return nil, errors.New("no index found; run create-index first")
	}
	manifest := manifests[0]
	if datasetID != "" {
		found := false
		for _, m := range manifests {
			if m.DatasetID == datasetID {
				manifest = m
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no index with dataset id %s", datasetID)
		}
	}

	bundle, err := s.store.Load(manifest)
	if err != nil {
		return nil, err
	}
	// The manifest's model is authoritative: embedding the query with
	// anything else yields meaningless distances.
	embedder, err := s.embedders(bundle.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("resolve embedding model %q: %w", bundle.EmbeddingModel, err)
	}
	s.log.Debug().Str("embedding_model", bundle.EmbeddingModel).Str("index_id", manifest.IndexID).Msg("searching")

	vec, err := embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if k <= 0 {
		k = 5
	}
	dists, idxs, err := bundle.Index.Search(vec, k)
	if err != nil {
		return nil, err
	}
	hits := make([]domain.SearchHit, len(idxs))
	for i, pos := range idxs {
		hits[i] = domain.SearchHit{Chunk: bundle.Chunks[pos], Distance: dists[i], Rank: i + 1}
	}
	return hits, nil
}

// SearchGames runs a search and renders it per the requested mode. All
// failures come back as errors with user-facing messages; the service
// remains usable afterwards.
func (s *SearchService) SearchGames(query string, numResults int, datasetID string, mode Mode) (string, error) {
	hits, err := s.Search(query, numResults, datasetID)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "No matching games found.", nil
	}
	switch mode {
	case ModeRaw, "":
		return formatRaw(hits), nil
	case ModeReport:
		return s.report(hits), nil
	case ModeChat:
		return s.conversational(query, hits)
	default:
		return "", fmt.Errorf("unknown search mode %q", mode)
	}
}

func formatRaw(hits []domain.SearchHit) string {
	var b strings.Builder
	for _, h := range hits {
		fmt.Fprintf(&b, "Game %d (distance: %.4f, source: %s)\n%s\n\n", h.Rank, h.Distance, h.Chunk.Source, h.Chunk.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// report renders each hit through the chat model, degrading to the raw
// chunk text when generation is unavailable or fails.
func (s *SearchService) report(hits []domain.SearchHit) string {
	var b strings.Builder
	b.WriteString("Search Results:\n\n")
	for _, h := range hits {
		fmt.Fprintf(&b, "Game %d (similarity: %.2f)\n%s\n", h.Rank, 1-h.Distance, s.formatGame(h.Chunk.Text))
	}
	b.WriteString(strings.Repeat("-", 80))
	return b.String()
}

func (s *SearchService) formatGame(text string) string {
	if s.generator == nil {
		return text
	}
	out, err := s.generator.Generate(domain.GenRequest{
		System:      analysisSystemPrompt,
		Messages:    []domain.ChatMessage{{Role: "user", Content: fmt.Sprintf(analysisPrompt, text)}},
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("game formatting failed, returning raw text")
		return text
	}
	return out
}

// conversational synthesizes one combined answer over all hits. With no
// chat model configured it falls back to the frequency digest.
func (s *SearchService) conversational(query string, hits []domain.SearchHit) (string, error) {
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Chunk.Text
	}
	if s.generator == nil {
		return s.digest.Summarize(texts, 3)
	}
	out, err := s.generator.Generate(domain.GenRequest{
		System:      summarySystemPrompt,
		Messages:    []domain.ChatMessage{{Role: "user", Content: fmt.Sprintf(summaryPrompt, strings.Join(texts, "\n\n"), query)}},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("summary generation failed: %w", err)
	}
	return out, nil
}

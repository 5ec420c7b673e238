// Package service orchestrates the offline index build pipeline and the
// query-time search flow.
package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"chess-rag/internal/chunker"
	"chess-rag/internal/domain"
	"chess-rag/internal/index"
	"chess-rag/internal/pgn"
	"chess-rag/internal/store"
)

// embedProgressEvery controls build progress logging cadence.
const embedProgressEvery = 100

// Builder runs the batch pipeline: extract games, chunk and dedupe,
// embed, build the flat index, persist a new bundle.
type Builder struct {
	extractor *pgn.Extractor
	chunker   *chunker.WordChunker
	embedder  domain.Embedder
	store     *store.Store
	log       zerolog.Logger
}

func NewBuilder(extractor *pgn.Extractor, ch *chunker.WordChunker, embedder domain.Embedder, st *store.Store, log zerolog.Logger) *Builder {
	return &Builder{extractor: extractor, chunker: ch, embedder: embedder, store: st, log: log}
}

// Build ingests every PGN archive under dataDir and returns the id of
// the persisted bundle. Any embedding failure aborts the build with
// nothing persisted, so a bundle can never hold fewer vectors than
// chunks.
func (b *Builder) Build(dataDir string) (string, error) {
	records, _, err := b.extractor.ExtractDir(dataDir)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("no games found in %s", dataDir)
	}
	b.log.Info().Int("games", len(records)).Msg("loaded games")

	var chunks []domain.Chunk
	for _, rec := range records {
		chunks = append(chunks, b.chunker.Chunk(rec)...)
	}
	deduped, removed := chunker.Dedupe(chunks)
	b.log.Info().Int("chunks", len(deduped)).Int("duplicates_removed", removed).Msg("chunked games")
	if len(deduped) == 0 {
		return "", fmt.Errorf("no chunks produced from %s", dataDir)
	}

	b.log.Info().Str("model", b.embedder.Model()).Int("total", len(deduped)).Msg("creating embeddings")
	vectors := make([][]float64, len(deduped))
	for i, ch := range deduped {
		vec, err := b.embedder.Embed(ch.Text)
		if err != nil {
			return "", fmt.Errorf("embedding chunk %d of %d: %w", i+1, len(deduped), err)
		}
		vectors[i] = vec
		if (i+1)%embedProgressEvery == 0 {
			b.log.Info().Int("done", i+1).Int("total", len(deduped)).Msg("embedding progress")
		}
	}

	idx, err := index.Build(vectors)
	if err != nil {
		return "", err
	}
	indexID, err := b.store.Save(vectors, idx, deduped, b.embedder.Model())
	if err != nil {
		return "", err
	}
	b.log.Info().Str("index_id", indexID).Str("dir", b.store.Dir()).Msg("saved index bundle")
	return indexID, nil
}

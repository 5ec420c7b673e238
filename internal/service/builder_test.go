package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess-rag/internal/chunker"
	"chess-rag/internal/embedding"
	"chess-rag/internal/pgn"
	"chess-rag/internal/store"
)

const archiveFixture = `[Event "Jurmala"]
[Site "Jurmala LAT"]
[Date "1985.07.12"]
[White "Shabalov, Alexander"]
[Black "Petrov, Ivan"]
[Result "1-0"]
[ECO "B20"]

1. e4 c5 2. Nf3 1-0

[Event "World Senior Championship"]
[Site "Bad Liebenzell GER"]
[Date "1991.11.02"]
[White "Smith, John"]
[Black "Jones, Peter"]
[Result "1/2-1/2"]

1. d4 d5 2. c4 1/2-1/2

[Event "Jurmala"]
[Site "Jurmala LAT"]
[Date "1985.07.12"]
[White "Shabalov, Alexander"]
[Black "Petrov, Ivan"]
[Result "1-0"]
[ECO "B20"]

1. e4 c5 2. Nf3 1-0
`

type failingEmbedder struct{}

func (failingEmbedder) Model() string  { return "failing" }
func (failingEmbedder) Dimension() int { return 0 }

func (failingEmbedder) Embed(string) ([]float64, error) {
	return nil, errors.New("quota exceeded")
}

func newTestBuilder(t *testing.T, storeDir string) *Builder {
	t.Helper()
	return NewBuilder(
		pgn.NewExtractor(1.0, zerolog.Nop()),
		chunker.NewWordChunker(0, 0, 0),
		embedding.NewHashEmbedder(32),
		store.New(storeDir),
		zerolog.Nop(),
	)
}

func writeFixture(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "games.pgn"), []byte(archiveFixture), 0o644))
	return dataDir
}

func TestBuild_EndToEnd(t *testing.T) {
	storeDir := t.TempDir()
	b := newTestBuilder(t, storeDir)

	indexID, err := b.Build(writeFixture(t))
	require.NoError(t, err)
	require.NotEmpty(t, indexID)

	s := store.New(storeDir)
	manifests, err := s.Manifests()
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	assert.Equal(t, indexID, manifests[0].IndexID)
	assert.Equal(t, "local-hash-32", manifests[0].EmbeddingModel)

	bundle, err := s.Load(manifests[0])
	require.NoError(t, err)
	// Three games, one an exact duplicate: dedup keeps two chunks, and
	// the vector list stays aligned with them.
	assert.Len(t, bundle.Chunks, 2)
	assert.Equal(t, len(bundle.Chunks), len(bundle.Vectors))
	assert.Equal(t, len(bundle.Chunks), bundle.Index.Len())
}

func TestBuild_EmbeddingFailureIsFatal(t *testing.T) {
	storeDir := t.TempDir()
	b := NewBuilder(
		pgn.NewExtractor(1.0, zerolog.Nop()),
		chunker.NewWordChunker(0, 0, 0),
		failingEmbedder{},
		store.New(storeDir),
		zerolog.Nop(),
	)

	_, err := b.Build(writeFixture(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	manifests, err := store.New(storeDir).Manifests()
	require.NoError(t, err)
	assert.Empty(t, manifests, "nothing may be persisted after an embedding failure")
}

func TestBuild_EmptyDataDir(t *testing.T) {
	b := newTestBuilder(t, t.TempDir())
	_, err := b.Build(t.TempDir())
	assert.Error(t, err)
}

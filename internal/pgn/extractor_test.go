package pgn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoGames = `[Event "Jurmala"]
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
`

func writeArchive(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o644))
}

func TestExtractDir_TwoGames(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, "games.pgn", []byte(twoGames))

	e := NewExtractor(1.0, zerolog.Nop())
	records, stats, err := e.ExtractDir(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, stats.FilesProcessed)
	assert.Equal(t, 2, stats.GamesParsed)
	assert.Zero(t, stats.GamesSkipped)

	first := records[0]
	assert.Equal(t, "games.pgn", first.Source)
	assert.Contains(t, first.Description, "Event: Jurmala")
	assert.Contains(t, first.Description, "White: Shabalov, Alexander")
	assert.Contains(t, first.Description, "Result: 1-0")
	assert.Contains(t, first.Description, "ECO: B20")
	assert.Contains(t, first.Description, "Moves: e2e4 c7c5 g1f3")

	// Second game has no ECO tag: the Unknown sentinel fills the field
	assert.Contains(t, records[1].Description, "ECO: Unknown")
	assert.Contains(t, records[1].Description, "Event: World Senior Championship")
}

func TestExtractDir_SkipsMalformedGame(t *testing.T) {
	dir := t.TempDir()
	broken := twoGames + `
[Event "Broken"]
[White "Nobody"]

1. Zz9 Qq8 *
`
	writeArchive(t, dir, "games.pgn", []byte(broken))

	e := NewExtractor(1.0, zerolog.Nop())
	records, stats, err := e.ExtractDir(dir)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, stats.GamesSkipped)
}

func TestExtractDir_SkipRateThreshold(t *testing.T) {
	dir := t.TempDir()
	broken := twoGames + `
[Event "Broken One"]

1. Zz9 *

[Event "Broken Two"]

1. Xx0 *

[Event "Broken Three"]

1. Yy1 *
`
	writeArchive(t, dir, "games.pgn", []byte(broken))

	// 3 of 5 attempted games fail: above a 0.5 limit
	e := NewExtractor(0.5, zerolog.Nop())
	_, _, err := e.ExtractDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skipped")

	// Disabled threshold tolerates the same archive
	e = NewExtractor(1.0, zerolog.Nop())
	records, _, err := e.ExtractDir(dir)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestExtractDir_Latin1Fallback(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`[Event "Championnat"]
[White "S`)
	content = append(content, 0xE9) // é in Latin-1, invalid as standalone UTF-8
	content = append(content, []byte(`bastien"]
[Result "1-0"]

1. e4 e5 1-0
`)...)
	writeArchive(t, dir, "games.pgn", content)

	e := NewExtractor(1.0, zerolog.Nop())
	records, _, err := e.ExtractDir(dir)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Description, "White: Sébastien")
}

func TestExtractDir_NoArchives(t *testing.T) {
	e := NewExtractor(1.0, zerolog.Nop())
	_, _, err := e.ExtractDir(t.TempDir())
	assert.Error(t, err)
}

func TestSplitGames(t *testing.T) {
	blocks := splitGames(twoGames)
	require.Len(t, blocks, 2)
	for _, b := range blocks {
		assert.Equal(t, byte('['), b[0])
	}
}

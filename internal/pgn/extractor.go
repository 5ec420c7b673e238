// Package pgn extracts normalized game records from PGN archive files.
package pgn

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"

	"chess-rag/internal/domain"
)

// Unknown is the sentinel for absent header fields.
const Unknown = "Unknown"

// progressEvery controls the per-file progress logging cadence.
const progressEvery = 100

// GameHeaders holds the named PGN tags used to describe a game. Absent
// tags carry the Unknown sentinel rather than an empty string.
type GameHeaders struct {
	Event  string
	Site   string
	Date   string
	White  string
	Black  string
	Result string
	ECO    string
}

// Stats counts extraction outcomes across one run.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	GamesParsed    int
	GamesSkipped   int
}

// Extractor walks a directory of PGN archives and yields one GameRecord
// per parseable game. Malformed games are skipped and counted, not fatal.
type Extractor struct {
	maxSkipRatio float64
	log          zerolog.Logger
}

// NewExtractor creates an extractor. maxSkipRatio bounds the tolerated
// fraction of unparseable games (skipped / attempted); 1.0 disables the
// check.
func NewExtractor(maxSkipRatio float64, log zerolog.Logger) *Extractor {
	if maxSkipRatio <= 0 || maxSkipRatio > 1 {
		maxSkipRatio = 1.0
	}
	return &Extractor{maxSkipRatio: maxSkipRatio, log: log}
}

var errNoContent = errors.New("game block has no headers and no moves")

// ExtractDir parses every *.pgn file under dir. Files that cannot be
// decoded under any configured encoding are skipped with a logged count.
func (e *Extractor) ExtractDir(dir string) ([]domain.GameRecord, Stats, error) {
	var stats Stats
	files, err := filepath.Glob(filepath.Join(dir, "*.pgn"))
	if err != nil {
		return nil, stats, err
	}
	if len(files) == 0 {
		return nil, stats, fmt.Errorf("no PGN files found in %s", dir)
	}

	var records []domain.GameRecord
	for _, file := range files {
		recs, parsed, skipped, err := e.extractFile(file)
		if err != nil {
			e.log.Warn().Str("file", file).Err(err).Msg("skipping unreadable archive")
			stats.FilesSkipped++
			continue
		}
		records = append(records, recs...)
		stats.FilesProcessed++
		stats.GamesParsed += parsed
		stats.GamesSkipped += skipped
		e.log.Info().Str("file", file).Int("games", parsed).Int("skipped", skipped).Msg("processed archive")
	}

	attempted := stats.GamesParsed + stats.GamesSkipped
	if attempted > 0 {
		ratio := float64(stats.GamesSkipped) / float64(attempted)
		if ratio > e.maxSkipRatio {
			return nil, stats, fmt.Errorf("skipped %d of %d games (%.0f%%), above the configured limit",
				stats.GamesSkipped, attempted, ratio*100)
		}
	}
	e.log.Info().Int("files", stats.FilesProcessed).Int("games", stats.GamesParsed).Msg("extraction complete")
	return records, stats, nil
}

func (e *Extractor) extractFile(path string) ([]domain.GameRecord, int, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, err
	}
	content, encoding, err := decode(raw)
	if err != nil {
		return nil, 0, 0, err
	}
	source := filepath.Base(path)

	var records []domain.GameRecord
	var parsed, skipped int
	for _, block := range splitGames(content) {
		rec, err := parseGame(block, source)
		if errors.Is(err, errNoContent) {
			continue
		}
		if err != nil {
			skipped++
			e.log.Debug().Str("file", source).Err(err).Msg("unparseable game")
			continue
		}
		records = append(records, rec)
		parsed++
		if parsed%progressEvery == 0 {
			e.log.Debug().Str("file", source).Int("games", parsed).Msg("extracting")
		}
	}
	e.log.Debug().Str("file", source).Str("encoding", encoding).Msg("decoded archive")
	return records, parsed, skipped, nil
}

// decode tries each supported encoding in priority order and returns the
// first successful decoding along with the encoding's name.
func decode(raw []byte) (string, string, error) {
	if utf8.Valid(raw) {
		return string(raw), "utf-8", nil
	}
	for _, enc := range []struct {
		name string
		cm   *charmap.Charmap
	}{
		{"latin-1", charmap.ISO8859_1},
		{"iso-8859-1", charmap.ISO8859_1},
		{"cp1252", charmap.Windows1252},
	} {
		decoded, err := enc.cm.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		return string(decoded), enc.name, nil
	}
	return "", "", errors.New("content not decodable under any supported encoding")
}

// splitGames cuts a multi-game PGN file into individual game blocks on
// the blank-line-before-tag-section boundary.
func splitGames(content string) []string {
	parts := strings.Split(content, "\n\n[")
	blocks := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, "[") {
			part = "[" + part
		}
		blocks = append(blocks, part)
	}
	return blocks
}

func parseGame(block, source string) (domain.GameRecord, error) {
	update, err := chess.PGN(strings.NewReader(block))
	if err != nil {
		return domain.GameRecord{}, fmt.Errorf("parse game: %w", err)
	}
	game := chess.NewGame(update)
	headers := headersOf(game)
	moves := movesUCI(game)
	if moves == "" && headers.allUnknown() {
		return domain.GameRecord{}, errNoContent
	}
	return domain.GameRecord{Description: headers.Describe(moves), Source: source}, nil
}

func (h GameHeaders) allUnknown() bool {
	return h == GameHeaders{
		Event: Unknown, Site: Unknown, Date: Unknown,
		White: Unknown, Black: Unknown, Result: Unknown, ECO: Unknown,
	}
}

// Describe renders the header fields and move list into the flat text
// form that gets chunked and embedded.
func (h GameHeaders) Describe(moves string) string {
	return fmt.Sprintf("Event: %s Site: %s Date: %s White: %s Black: %s Result: %s ECO: %s Moves: %s",
		h.Event, h.Site, h.Date, h.White, h.Black, h.Result, h.ECO, moves)
}

func headersOf(game *chess.Game) GameHeaders {
	return GameHeaders{
		Event:  tag(game, "Event"),
		Site:   tag(game, "Site"),
		Date:   tag(game, "Date"),
		White:  tag(game, "White"),
		Black:  tag(game, "Black"),
		Result: tag(game, "Result"),
		ECO:    tag(game, "ECO"),
	}
}

func tag(game *chess.Game, key string) string {
	if pair := game.GetTagPair(key); pair != nil && pair.Value != "" {
		return pair.Value
	}
	return Unknown
}

func movesUCI(game *chess.Game) string {
	moves := game.Moves()
	if len(moves) == 0 {
		return ""
	}
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

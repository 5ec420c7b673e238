// Package store persists immutable index bundles: vectors, index
// structure, chunk metadata, and a JSON manifest, all keyed by a fresh
// index id. Bundles are never updated in place; rebuilding produces a
// new id.
package store

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"chess-rag/internal/domain"
	"chess-rag/internal/index"
)

// Manifest describes one bundle's identity and artifact locations. It is
// the single source of truth for the embedding model a bundle was built
// with.
type Manifest struct {
	DatasetID      string        `json:"dataset_id"`
	EmbeddingModel string        `json:"embedding_model"`
	IndexID        string        `json:"index_id"`
	CreationDate   time.Time     `json:"creation_date"`
	Files          ManifestFiles `json:"files"`
}

// ManifestFiles holds paths to the other three artifacts, relative to the
// store directory.
type ManifestFiles struct {
	Embeddings string `json:"embeddings"`
	Index      string `json:"index"`
	Documents  string `json:"documents"`
}

// Bundle is a loaded index bundle. Vectors and Chunks are positionally
// aligned: vector i embeds chunk i.
type Bundle struct {
	Vectors        [][]float64
	Index          *index.Flat
	Chunks         []domain.Chunk
	EmbeddingModel string
}

// Store reads and writes bundles under a single directory.
type Store struct {
	dir string
}

func New(dir string) *Store { return &Store{dir: dir} }

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Save writes a new bundle and returns its freshly generated index id.
// Vectors and chunks must be positionally aligned.
func (s *Store) Save(vectors [][]float64, idx *index.Flat, chunks []domain.Chunk, embeddingModel string) (string, error) {
	if len(vectors) != len(chunks) {
		return "", fmt.Errorf("vectors/chunks length mismatch: %d != %d", len(vectors), len(chunks))
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	indexID := uuid.New().String()
	files := ManifestFiles{
		Embeddings: fmt.Sprintf("embeddings_%s.gob", indexID),
		Index:      fmt.Sprintf("index_%s.bin", indexID),
		Documents:  fmt.Sprintf("documents_%s.gob", indexID),
	}

	if err := s.writeGob(files.Embeddings, vectors); err != nil {
		return "", fmt.Errorf("save embeddings: %w", err)
	}
	f, err := os.Create(filepath.Join(s.dir, files.Index))
	if err != nil {
		return "", fmt.Errorf("save index: %w", err)
	}
	if err := idx.Encode(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("save index: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("save index: %w", err)
	}
	if err := s.writeGob(files.Documents, chunks); err != nil {
		return "", fmt.Errorf("save documents: %w", err)
	}

	manifest := Manifest{
		DatasetID:      indexID,
		EmbeddingModel: embeddingModel,
		IndexID:        indexID,
		CreationDate:   time.Now(),
		Files:          files,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", err
	}
	manifestPath := filepath.Join(s.dir, fmt.Sprintf("metadata_%s.json", indexID))
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return "", fmt.Errorf("save manifest: %w", err)
	}
	return indexID, nil
}

// Manifests enumerates every manifest in the store directory. Order is
// not significant; callers select by index id or default to the first.
// Unreadable manifest files are skipped.
func (s *Store) Manifests() ([]Manifest, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "metadata_*.json"))
	if err != nil {
		return nil, err
	}
	manifests := make([]Manifest, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}

// Load reads the three artifacts a manifest points at. A missing or
// corrupt artifact is a descriptive error, not a retry.
func (s *Store) Load(m Manifest) (*Bundle, error) {
	var vectors [][]float64
	if err := s.readGob(m.Files.Embeddings, &vectors); err != nil {
		return nil, fmt.Errorf("load embeddings for index %s: %w", m.IndexID, err)
	}
	f, err := os.Open(filepath.Join(s.dir, m.Files.Index))
	if err != nil {
		return nil, fmt.Errorf("load index structure for index %s: %w", m.IndexID, err)
	}
	idx, err := index.Decode(f)
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("load index structure for index %s: %w", m.IndexID, err)
	}
	var chunks []domain.Chunk
	if err := s.readGob(m.Files.Documents, &chunks); err != nil {
		return nil, fmt.Errorf("load documents for index %s: %w", m.IndexID, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("index %s is corrupt: %d vectors but %d chunks", m.IndexID, len(vectors), len(chunks))
	}
	return &Bundle{Vectors: vectors, Index: idx, Chunks: chunks, EmbeddingModel: m.EmbeddingModel}, nil
}

func (s *Store) writeGob(name string, v any) error {
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *Store) readGob(name string, v any) error {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}

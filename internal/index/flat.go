// Package index implements exhaustive nearest-neighbor search over dense
// vectors by squared Euclidean distance.
package index

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Flat is an exact, brute-force vector index. Every query scans all
// stored vectors, trading latency for exact results at the corpus sizes
// involved (thousands of chunks).
type Flat struct {
	dimension int
	vectors   [][]float64
}

// NewFlat creates an empty index for vectors of the given dimension.
func NewFlat(dimension int) (*Flat, error) {
	if dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	return &Flat{dimension: dimension}, nil
}

// Build constructs an index from a non-empty vector batch, taking the
// dimension from the first vector.
func Build(vectors [][]float64) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, errors.New("cannot build index from zero vectors")
	}
	f, err := NewFlat(len(vectors[0]))
	if err != nil {
		return nil, err
	}
	if err := f.Add(vectors); err != nil {
		return nil, err
	}
	return f, nil
}

// Add appends vectors to the index. All vectors must match the index
// dimension.
func (f *Flat) Add(vectors [][]float64) error {
	for _, v := range vectors {
		if len(v) != f.dimension {
			return fmt.Errorf("vector dimension %d does not match index dimension %d", len(v), f.dimension)
		}
	}
	f.vectors = append(f.vectors, vectors...)
	return nil
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int { return len(f.vectors) }

// Dimension returns the vector dimension the index was built for.
func (f *Flat) Dimension() int { return f.dimension }

// Search returns up to k nearest vectors as parallel distance and
// position slices, ordered by non-decreasing squared Euclidean distance
// with ties broken by insertion order. k larger than the index size
// degrades to returning everything.
func (f *Flat) Search(query []float64, k int) ([]float64, []int, error) {
	if len(query) != f.dimension {
		return nil, nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), f.dimension)
	}
	if k <= 0 {
		return nil, nil, errors.New("k must be positive")
	}
	if k > len(f.vectors) {
		k = len(f.vectors)
	}
	dists := make([]float64, len(f.vectors))
	order := make([]int, len(f.vectors))
	for i, v := range f.vectors {
		dists[i] = squaredL2(query, v)
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if dists[order[a]] != dists[order[b]] {
			return dists[order[a]] < dists[order[b]]
		}
		return order[a] < order[b]
	})
	outDists := make([]float64, k)
	outIdxs := make([]int, k)
	for i := 0; i < k; i++ {
		outDists[i] = dists[order[i]]
		outIdxs[i] = order[i]
	}
	return outDists, outIdxs, nil
}

func squaredL2(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

type flatSnapshot struct {
	Dimension int
	Vectors   [][]float64
}

// Encode serializes the index structure.
func (f *Flat) Encode(w io.Writer) error {
	return gob.NewEncoder(w).Encode(flatSnapshot{Dimension: f.dimension, Vectors: f.vectors})
}

// Decode deserializes an index previously written with Encode.
func Decode(r io.Reader) (*Flat, error) {
	var snap flatSnapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if snap.Dimension <= 0 {
		return nil, errors.New("decode index: invalid dimension")
	}
	return &Flat{dimension: snap.Dimension, vectors: snap.Vectors}, nil
}

package embedding

import (
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// HashEmbedder maps text to a fixed-dimension vector by feature-hashing
// tokens. It is fully deterministic: a manifest recording its model
// string can reconstruct an identical embedder at query time with no
// corpus-dependent state.
type HashEmbedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
}

// DefaultHashDimension is the vector size used when none is configured.
const DefaultHashDimension = 256

const hashModelPrefix = "local-hash-"

func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = DefaultHashDimension
	}
	return &HashEmbedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+`),
	}
}

// Model encodes the dimension so the embedder is reproducible from the
// manifest's model string alone.
func (e *HashEmbedder) Model() string { return fmt.Sprintf("%s%d", hashModelPrefix, e.dimension) }

func (e *HashEmbedder) Dimension() int { return e.dimension }

// Embed hashes each token into a bucket and L2-normalizes the counts.
func (e *HashEmbedder) Embed(text string) ([]float64, error) {
	vec := make([]float64, e.dimension)
	tokens := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		// Reduce in uint32 so the bucket index never goes negative.
		vec[h.Sum32()%uint32(e.dimension)]++
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

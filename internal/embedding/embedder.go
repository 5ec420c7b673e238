// Package embedding provides text embedders and the factory that binds a
// manifest-recorded model identifier to a concrete implementation.
package embedding

import (
	"fmt"
	"strconv"
	"strings"

	"chess-rag/internal/domain"
)

// ForModel resolves a model identifier to an embedder. The identifier is
// authoritative: for a persisted index it comes from the bundle manifest,
// never from ambient configuration, so query vectors land in the same
// space the index was built in.
func ForModel(model string, cfg OpenAIConfig) (domain.Embedder, error) {
	if model == "" {
		return nil, fmt.Errorf("empty embedding model identifier")
	}
	if dim, ok := strings.CutPrefix(model, hashModelPrefix); ok {
		d, err := strconv.Atoi(dim)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("malformed hash embedder model %q", model)
		}
		return NewHashEmbedder(d), nil
	}
	cfg.Model = model
	return NewOpenAIClient(cfg)
}

// FromConfig builds the embedder selected by configuration for index
// builds. kind is "openai" or "hash".
func FromConfig(kind string, openAI OpenAIConfig, hashDimension int) (domain.Embedder, error) {
	switch kind {
	case "openai", "":
		return NewOpenAIClient(openAI)
	case "hash":
		return NewHashEmbedder(hashDimension), nil
	default:
		return nil, fmt.Errorf("unknown embedder type %q", kind)
	}
}

package embedding

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	a, err := e.Embed("Event: Jurmala White: Shabalov Moves: e2e4")
	require.NoError(t, err)
	b, err := e.Embed("Event: Jurmala White: Shabalov Moves: e2e4")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestHashEmbedder_L2Normalized(t *testing.T) {
	e := NewHashEmbedder(32)
	v, err := e.Embed("quick victories in less than twenty five moves")
	require.NoError(t, err)
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	e := NewHashEmbedder(16)
	v, err := e.Embed("")
	require.NoError(t, err)
	assert.Len(t, v, 16)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

func TestHashEmbedder_ModelEncodesDimension(t *testing.T) {
	assert.Equal(t, "local-hash-128", NewHashEmbedder(128).Model())
	assert.Equal(t, DefaultHashDimension, NewHashEmbedder(0).Dimension())
}

func TestHashEmbedder_AllTokensLandInRange(t *testing.T) {
	// A wide spread of tokens hits buckets across the full 32-bit hash
	// range, including hashes above math.MaxInt32.
	e := NewHashEmbedder(8)
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&sb, "move%d ", i)
	}
	v, err := e.Embed(sb.String())
	require.NoError(t, err)
	require.Len(t, v, 8)
	norm := 0.0
	for _, x := range v {
		assert.GreaterOrEqual(t, x, 0.0)
		norm += x * x
	}
	assert.InDelta(t, 1.0, norm, 1e-9, "every token must land in a valid bucket")
}

func TestHashEmbedder_DistinctTextsDiffer(t *testing.T) {
	e := NewHashEmbedder(256)
	a, err := e.Embed("Sicilian Defense games")
	require.NoError(t, err)
	b, err := e.Embed("endgame techniques in rook endings")
	require.NoError(t, err)
	dist := 0.0
	for i := range a {
		d := a[i] - b[i]
		dist += d * d
	}
	assert.Greater(t, math.Sqrt(dist), 0.0)
}

func TestForModel_HashRoundTrip(t *testing.T) {
	e := NewHashEmbedder(48)
	resolved, err := ForModel(e.Model(), OpenAIConfig{})
	require.NoError(t, err)
	assert.Equal(t, e.Model(), resolved.Model())
	assert.Equal(t, 48, resolved.Dimension())
}

func TestForModel_Malformed(t *testing.T) {
	_, err := ForModel("local-hash-banana", OpenAIConfig{})
	assert.Error(t, err)
	_, err = ForModel("local-hash--3", OpenAIConfig{})
	assert.Error(t, err)
	_, err = ForModel("", OpenAIConfig{})
	assert.Error(t, err)
}

func TestForModel_RemoteModelRequiresKey(t *testing.T) {
	t.Setenv("CHESS_RAG_TEST_KEY", "")
	_, err := ForModel("text-embedding-3-large", OpenAIConfig{APIKeyEnv: "CHESS_RAG_TEST_KEY"})
	assert.Error(t, err)

	t.Setenv("CHESS_RAG_TEST_KEY", "sk-test")
	e, err := ForModel("text-embedding-3-large", OpenAIConfig{APIKeyEnv: "CHESS_RAG_TEST_KEY"})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-large", e.Model())
}

package index

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVectors() [][]float64 {
	return [][]float64{
		{0, 0},
		{1, 0},
		{0, 3},
		{2, 2},
	}
}

func TestBuild_Empty(t *testing.T) {
	_, err := Build(nil)
	assert.Error(t, err)
}

func TestAdd_DimensionMismatch(t *testing.T) {
	f, err := NewFlat(2)
	require.NoError(t, err)
	err = f.Add([][]float64{{1, 2, 3}})
	assert.Error(t, err)
	assert.Zero(t, f.Len())
}

func TestSearch_RanksBySquaredDistance(t *testing.T) {
	f, err := Build(testVectors())
	require.NoError(t, err)

	dists, idxs, err := f.Search([]float64{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, idxs, 3)
	assert.Equal(t, []int{0, 1, 3}, idxs)
	assert.Equal(t, []float64{0, 1, 8}, dists)
	for i := 1; i < len(dists); i++ {
		assert.GreaterOrEqual(t, dists[i], dists[i-1])
	}
}

func TestSearch_TiesBreakByInsertionOrder(t *testing.T) {
	f, err := Build([][]float64{{1, 0}, {0, 1}, {-1, 0}})
	require.NoError(t, err)

	_, idxs, err := f.Search([]float64{0, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, idxs)
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	f, err := Build(testVectors())
	require.NoError(t, err)

	dists, idxs, err := f.Search([]float64{1, 1}, 50)
	require.NoError(t, err)
	assert.Len(t, idxs, 4)
	assert.Len(t, dists, 4)
}

func TestSearch_SelfQueryIsTopHit(t *testing.T) {
	f, err := Build(testVectors())
	require.NoError(t, err)

	dists, idxs, err := f.Search([]float64{2, 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, idxs[0])
	assert.InDelta(t, 0, dists[0], 1e-12)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	f, err := Build(testVectors())
	require.NoError(t, err)
	_, _, err = f.Search([]float64{1}, 1)
	assert.Error(t, err)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	f, err := Build(testVectors())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Encode(&buf))

	loaded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, f.Len(), loaded.Len())
	assert.Equal(t, f.Dimension(), loaded.Dimension())

	dists, idxs, err := loaded.Search([]float64{0, 3}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, idxs[0])
	assert.InDelta(t, 0, dists[0], 1e-12)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a gob stream")))
	assert.Error(t, err)
}

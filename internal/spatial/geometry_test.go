package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBox(t *testing.T) {
	box, err := BoundingBox([]Point{
		{Lat: 1, Lon: 5},
		{Lat: -2, Lon: 7},
		{Lat: 3, Lon: -4},
	})
	require.NoError(t, err)
	assert.Equal(t, Box{MinLat: -2, MinLon: -4, MaxLat: 3, MaxLon: 7}, box)
	assert.Equal(t, [2][2]float64{{-2, -4}, {3, 7}}, box.Corners())
}

func TestBoundingBox_Empty(t *testing.T) {
	_, err := BoundingBox(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestBoundingBox_RejectsNonFinite(t *testing.T) {
	_, err := BoundingBox([]Point{{Lat: 1, Lon: 1}, {Lat: math.NaN(), Lon: 0}})
	assert.Error(t, err)

	_, err = BoundingBox([]Point{{Lat: math.Inf(1), Lon: 0}})
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	box := Expand(Box{MinLat: 0, MinLon: 0, MaxLat: 10, MaxLon: 20}, 0.1)
	assert.InDelta(t, -1, box.MinLat, 1e-12)
	assert.InDelta(t, 11, box.MaxLat, 1e-12)
	assert.InDelta(t, -2, box.MinLon, 1e-12)
	assert.InDelta(t, 22, box.MaxLon, 1e-12)
}

func TestExpand_DegenerateBox(t *testing.T) {
	b := Box{MinLat: 5, MinLon: 5, MaxLat: 5, MaxLon: 5}
	assert.Equal(t, b, Expand(b, 0.1))
}

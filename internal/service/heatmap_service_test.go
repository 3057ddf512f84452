package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/resourcemap-backend-go/internal/heatmap"
	"github.com/jengzang/resourcemap-backend-go/internal/models"
)

func shelterSchema() *models.CategorySchema {
	return &models.CategorySchema{
		ProjectName: "shelters",
		Categories:  []models.Category{{CategoryName: "Food"}, {CategoryName: "Shelter"}},
	}
}

func shelterMarkers() []models.Marker {
	return []models.Marker{
		{
			ID: "a", Dataset: "shelters", Latitude: 0, Longitude: 0,
			Scores:     map[string]map[string]float64{"Food": {"meals": 5}},
			Categories: map[string]map[string]bool{"Food": {"meals": true}},
		},
		{
			ID: "b", Dataset: "shelters", Latitude: 0.01, Longitude: 0.01,
			Scores:     map[string]map[string]float64{"Food": {"meals": 1}},
			Categories: map[string]map[string]bool{"Food": {"meals": true}},
		},
	}
}

func smallRequest(strategy models.Strategy) models.RasterRequest {
	req := models.DefaultRasterRequest()
	req.Strategy = strategy
	req.Resolution = 8
	return req
}

func TestHeatmapService_Generate(t *testing.T) {
	svc := NewHeatmapService(newFakeMarkers(shelterMarkers()...), newFakeSchemas(shelterSchema()), heatmap.NewEngine(), nil, nil)

	for _, strategy := range heatmap.Strategies() {
		raster, err := svc.Generate(context.Background(), "shelters", "", smallRequest(strategy))
		require.NoError(t, err, strategy)
		assert.Len(t, raster.Pixels, 64)
		assert.Equal(t, 2, raster.MarkerCount)
	}
}

func TestHeatmapService_Errors(t *testing.T) {
	ctx := context.Background()
	svc := NewHeatmapService(newFakeMarkers(shelterMarkers()...), newFakeSchemas(shelterSchema(), &models.CategorySchema{ProjectName: "empty", Categories: []models.Category{{CategoryName: "Food"}}}), heatmap.NewEngine(), nil, nil)

	_, err := svc.Generate(ctx, "unknown", "", smallRequest(models.StrategyProximity))
	assert.ErrorIs(t, err, ErrSchemaNotFound)

	_, err = svc.Generate(ctx, "empty", "", smallRequest(models.StrategyProximity))
	assert.ErrorIs(t, err, heatmap.ErrEmptyInput)

	bad := smallRequest(models.StrategyCumulative)
	bad.CategorySelector = "Health"
	_, err = svc.Generate(ctx, "shelters", "", bad)
	assert.True(t, heatmap.IsInvalidRequest(err))

	// validation wins over the empty marker set
	bad.CategorySelector = models.SelectorAll
	bad.Resolution = 0
	_, err = svc.Generate(ctx, "empty", "", bad)
	assert.True(t, heatmap.IsInvalidRequest(err))
}

func TestHeatmapService_Cache(t *testing.T) {
	markers := newFakeMarkers(shelterMarkers()...)
	rc := &fakeCache{items: map[string]*models.Raster{}}
	svc := NewHeatmapService(markers, newFakeSchemas(shelterSchema()), heatmap.NewEngine(), rc, nil)

	req := smallRequest(models.StrategyDistribution)
	first, err := svc.Generate(context.Background(), "shelters", "", req)
	require.NoError(t, err)
	assert.Equal(t, 1, rc.sets)

	second, err := svc.Generate(context.Background(), "shelters", "", req)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, rc.sets)

	req.Resolution = 4
	_, err = svc.Generate(context.Background(), "shelters", "", req)
	require.NoError(t, err)
	assert.Equal(t, 2, rc.sets)
}

func TestHeatmapService_SessionSupersedes(t *testing.T) {
	svc := NewHeatmapService(newFakeMarkers(), newFakeSchemas(), heatmap.NewEngine(), nil, nil)

	first, doneFirst := svc.begin(context.Background(), "tab-1")
	second, doneSecond := svc.begin(context.Background(), "tab-1")
	other, doneOther := svc.begin(context.Background(), "tab-2")

	assert.Error(t, first.Err())
	assert.True(t, errors.Is(context.Cause(first), ErrSuperseded))
	assert.NoError(t, second.Err())
	assert.NoError(t, other.Err())

	// finishing the superseded request must not drop the newer registration
	doneFirst()
	svc.mu.Lock()
	assert.Contains(t, svc.sessions, "tab-1")
	svc.mu.Unlock()

	doneSecond()
	doneOther()
	svc.mu.Lock()
	assert.Empty(t, svc.sessions)
	svc.mu.Unlock()
}

func TestHeatmapService_SupersededGeneration(t *testing.T) {
	svc := NewHeatmapService(newFakeMarkers(shelterMarkers()...), newFakeSchemas(shelterSchema()), heatmap.NewEngine(heatmap.WithWorkers(1)), nil, nil)

	// a pending request of the same session is superseded by Generate
	pending, donePending := svc.begin(context.Background(), "tab")
	defer donePending()

	_, err := svc.Generate(context.Background(), "shelters", "tab", smallRequest(models.StrategyProximity))
	require.NoError(t, err)
	assert.ErrorIs(t, context.Cause(pending), ErrSuperseded)
}

func TestHeatmapService_CacheHitSupersedes(t *testing.T) {
	rc := &fakeCache{items: map[string]*models.Raster{}}
	svc := NewHeatmapService(newFakeMarkers(shelterMarkers()...), newFakeSchemas(shelterSchema()), heatmap.NewEngine(), rc, nil)
	req := smallRequest(models.StrategyCumulative)

	_, err := svc.Generate(context.Background(), "shelters", "", req)
	require.NoError(t, err)
	require.Equal(t, 1, rc.sets)

	pending, donePending := svc.begin(context.Background(), "tab")
	defer donePending()

	_, err = svc.Generate(context.Background(), "shelters", "tab", req)
	require.NoError(t, err)
	assert.Equal(t, 1, rc.sets, "served from cache")
	assert.ErrorIs(t, context.Cause(pending), ErrSuperseded)
}

func TestHeatmapService_CallerCancelled(t *testing.T) {
	svc := NewHeatmapService(newFakeMarkers(shelterMarkers()...), newFakeSchemas(shelterSchema()), heatmap.NewEngine(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Generate(ctx, "shelters", "tab", smallRequest(models.StrategyProximity))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrSuperseded)
}

func TestHeatmapService_SetEngine(t *testing.T) {
	svc := NewHeatmapService(newFakeMarkers(shelterMarkers()...), newFakeSchemas(shelterSchema()), heatmap.NewEngine(), nil, nil)

	req := smallRequest(models.StrategyProximity)
	req.Resolution = 200
	_, err := svc.Generate(context.Background(), "shelters", "", req)
	require.NoError(t, err)

	svc.SetEngine(heatmap.NewEngine(heatmap.WithMaxResolution(100)))
	_, err = svc.Generate(context.Background(), "shelters", "", req)
	assert.True(t, heatmap.IsInvalidRequest(err))

	opts := svc.Options()
	assert.Equal(t, []int{50, 100}, opts.Resolutions)
}

func TestHeatmapService_Options(t *testing.T) {
	svc := NewHeatmapService(newFakeMarkers(), newFakeSchemas(), heatmap.NewEngine(), nil, nil)
	opts := svc.Options()

	assert.Contains(t, opts.BufferRadii, 1000.0)
	assert.Equal(t, []int{50, 100, 150, 200}, opts.Resolutions)
	assert.Equal(t, []string{"slow", "fast"}, opts.DecayModes)
	assert.Len(t, opts.Strategies, 3)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, "ok", outcomeOf(nil))
	assert.Equal(t, "empty", outcomeOf(heatmap.ErrEmptyInput))
	assert.Equal(t, "no_schema", outcomeOf(ErrSchemaNotFound))
	assert.Equal(t, "cancelled", outcomeOf(ErrSuperseded))
	assert.Equal(t, "error", outcomeOf(errors.New("boom")))
}

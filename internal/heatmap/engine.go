package heatmap

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/resourcemap-backend-go/internal/models"
	"github.com/jengzang/resourcemap-backend-go/internal/spatial"
	"github.com/jengzang/resourcemap-backend-go/internal/stats"
)

const (
	// DefaultMaxResolution bounds the grid to 1024 x 1024 cells
	DefaultMaxResolution = 1024

	// BoundsMargin is the fraction the marker extent is grown by on each side
	BoundsMargin = 0.1
)

// Engine generates rasters. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	workers       int
	maxResolution int
	logger        *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithWorkers sets the number of rows computed in parallel
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMaxResolution sets the largest accepted grid edge
func WithMaxResolution(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxResolution = n
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine with one worker per CPU by default
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		workers:       runtime.NumCPU(),
		maxResolution: DefaultMaxResolution,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxResolution returns the largest accepted grid edge
func (e *Engine) MaxResolution() int {
	return e.maxResolution
}

// Validate checks a request against the schema and engine limits without
// computing anything. It returns the categories the request scores.
func (e *Engine) Validate(req models.RasterRequest, schema []string) ([]string, error) {
	strategy := GetStrategy(req.Strategy)
	if strategy == nil {
		return nil, invalid("strategy", "unknown strategy %q", req.Strategy)
	}
	return e.validate(strategy, req, schema)
}

func (e *Engine) validate(strategy Strategy, req models.RasterRequest, schema []string) ([]string, error) {
	if req.Resolution <= 0 {
		return nil, invalid("resolution", "must be positive, got %d", req.Resolution)
	}
	if req.Resolution > e.maxResolution {
		return nil, invalid("resolution", "must not exceed %d, got %d", e.maxResolution, req.Resolution)
	}
	if !finite(req.BufferRadiusMeters) || req.BufferRadiusMeters <= 0 {
		return nil, invalid("bufferRadius", "must be positive, got %v", req.BufferRadiusMeters)
	}
	if err := strategy.Validate(req); err != nil {
		return nil, err
	}

	if !strategy.UsesScores() {
		// the selector is irrelevant here but must still name real categories
		if (req.CategorySelector != "" && req.CategorySelector != models.SelectorAll) || len(req.Categories) > 0 {
			if _, err := ResolveCategories(schema, req.CategorySelector, req.Categories); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	return ResolveCategories(schema, req.CategorySelector, req.Categories)
}

// Generate builds the raster for markers under req. markers and schema are
// read only. Cancelling ctx stops the computation between rows.
func (e *Engine) Generate(ctx context.Context, markers []models.Marker, schema []string, req models.RasterRequest) (*models.Raster, error) {
	start := time.Now()

	strategy := GetStrategy(req.Strategy)
	if strategy == nil {
		return nil, invalid("strategy", "unknown strategy %q", req.Strategy)
	}
	categories, err := e.validate(strategy, req, schema)
	if err != nil {
		return nil, err
	}

	if len(markers) == 0 {
		return nil, ErrEmptyInput
	}

	points := make([]spatial.Point, len(markers))
	for i, m := range markers {
		points[i] = spatial.Point{Lat: m.Latitude, Lon: m.Longitude}
	}
	box, err := spatial.BoundingBox(points)
	if err != nil {
		if errors.Is(err, spatial.ErrEmptyInput) {
			return nil, ErrEmptyInput
		}
		return nil, fmt.Errorf("failed to compute bounds: %w", err)
	}
	box = spatial.Expand(box, BoundsMargin)

	kernel := strategy.Prepare(req, markers, categories)

	values, err := e.run(ctx, box, req.Resolution, kernel)
	if err != nil {
		return nil, err
	}

	// every raw value is known at this point
	if strategy.NormalizeByMax() {
		normalizeByMax(values)
	}

	raster := &models.Raster{
		Bounds:      box.Corners(),
		Pixels:      make([]models.Cell, len(values)),
		Resolution:  req.Resolution,
		Strategy:    req.Strategy,
		MarkerCount: len(markers),
	}
	for i, v := range values {
		raster.Pixels[i] = models.Cell{
			X:     i % req.Resolution,
			Y:     i / req.Resolution,
			Value: v,
			Color: ColorFor(v),
		}
	}

	e.logger.Debug("raster generated",
		zap.String("strategy", string(req.Strategy)),
		zap.Int("resolution", req.Resolution),
		zap.Int("markers", len(markers)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return raster, nil
}

// run evaluates kernel for every cell, one row per task
func (e *Engine) run(ctx context.Context, box spatial.Box, resolution int, kernel Kernel) ([]float64, error) {
	values := make([]float64, resolution*resolution)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for y := 0; y < resolution; y++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := values[y*resolution : (y+1)*resolution]
			for x := range row {
				row[x] = kernel(CellCenter(box, resolution, x, y).ToLatLng())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("raster generation cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("raster generation cancelled: %w", err)
	}

	return values, nil
}

// CellCenter returns the center of cell (x, y); row 0 is the northern edge
// and column 0 the western edge
func CellCenter(box spatial.Box, resolution, x, y int) spatial.Point {
	latStep := box.Height() / float64(resolution)
	lonStep := box.Width() / float64(resolution)
	return spatial.Point{
		Lat: box.MaxLat - (float64(y)+0.5)*latStep,
		Lon: box.MinLon + (float64(x)+0.5)*lonStep,
	}
}

func normalizeByMax(values []float64) {
	globalMax := stats.Max(values)
	if globalMax <= 0 {
		for i := range values {
			values[i] = 0
		}
		return
	}
	for i, v := range values {
		values[i] = v / globalMax
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/resourcemap-backend-go/internal/cache"
	"github.com/jengzang/resourcemap-backend-go/internal/heatmap"
	"github.com/jengzang/resourcemap-backend-go/internal/metrics"
	"github.com/jengzang/resourcemap-backend-go/internal/models"
	"github.com/jengzang/resourcemap-backend-go/internal/repository"
)

// MarkerLister loads the markers of a dataset
type MarkerLister interface {
	ListByDataset(ctx context.Context, dataset string) ([]models.Marker, error)
}

// SchemaGetter loads the category schema of a project
type SchemaGetter interface {
	Get(ctx context.Context, project string) (*models.CategorySchema, error)
}

// HeatmapService generates rasters for stored datasets
type HeatmapService struct {
	markers MarkerLister
	schemas SchemaGetter
	cache   cache.RasterCache
	logger  *zap.Logger

	engine atomic.Pointer[heatmap.Engine]

	mu       sync.Mutex
	seq      uint64
	sessions map[string]*inflight
}

type inflight struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// NewHeatmapService creates a heatmap service. A nil cache disables caching.
func NewHeatmapService(markers MarkerLister, schemas SchemaGetter, engine *heatmap.Engine, rc cache.RasterCache, logger *zap.Logger) *HeatmapService {
	if rc == nil {
		rc = cache.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &HeatmapService{
		markers:  markers,
		schemas:  schemas,
		cache:    rc,
		logger:   logger.Named("heatmap"),
		sessions: make(map[string]*inflight),
	}
	s.engine.Store(engine)
	return s
}

// SetEngine swaps the engine used by subsequent requests
func (s *HeatmapService) SetEngine(engine *heatmap.Engine) {
	s.engine.Store(engine)
}

// Engine returns the current engine
func (s *HeatmapService) Engine() *heatmap.Engine {
	return s.engine.Load()
}

// Generate builds the raster of a dataset. When session is non-empty, an
// earlier in-flight request of the same session is cancelled and returns
// ErrSuperseded.
func (s *HeatmapService) Generate(ctx context.Context, dataset, session string, req models.RasterRequest) (*models.Raster, error) {
	start := time.Now()
	raster, err := s.generate(ctx, dataset, session, req)

	outcome := outcomeOf(err)
	metrics.RasterResults.WithLabelValues(string(req.Strategy), outcome).Inc()
	if err == nil {
		metrics.RasterDuration.WithLabelValues(string(req.Strategy)).Observe(time.Since(start).Seconds())
	}
	return raster, err
}

func (s *HeatmapService) generate(ctx context.Context, dataset, session string, req models.RasterRequest) (*models.Raster, error) {
	schema, err := s.schemas.Get(ctx, dataset)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSchemaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	names := schema.Names()

	engine := s.engine.Load()

	// reject bad requests before touching the markers
	if _, err := engine.Validate(req, names); err != nil {
		return nil, err
	}

	markers, err := s.markers.ListByDataset(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to load markers: %w", err)
	}
	if len(markers) == 0 {
		return nil, heatmap.ErrEmptyInput
	}

	// a cache hit still supersedes the session's earlier request
	ctx, done := s.begin(ctx, session)
	defer done()

	key := ""
	if s.cache.Enabled() {
		key, err = cache.Key(dataset, names, req, markers)
		if err != nil {
			return nil, err
		}
		raster, err := s.cache.Get(ctx, key)
		if err == nil {
			metrics.CacheHits.Inc()
			return raster, nil
		}
		metrics.CacheMisses.Inc()
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("raster cache read failed", zap.Error(err))
		}
	}

	raster, err := engine.Generate(ctx, markers, names, req)
	if err != nil {
		if errors.Is(context.Cause(ctx), ErrSuperseded) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, raster); err != nil {
			s.logger.Warn("raster cache write failed", zap.Error(err))
		}
	}

	s.logger.Info("raster generated",
		zap.String("dataset", dataset),
		zap.String("strategy", string(req.Strategy)),
		zap.Int("resolution", req.Resolution),
		zap.Int("markers", len(markers)),
	)
	return raster, nil
}

// begin registers a request of session, cancelling the previous one
func (s *HeatmapService) begin(parent context.Context, session string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)
	if session == "" {
		return ctx, func() { cancel(nil) }
	}

	s.mu.Lock()
	s.seq++
	id := s.seq
	if prev, ok := s.sessions[session]; ok {
		prev.cancel(ErrSuperseded)
		s.logger.Debug("superseded in-flight raster", zap.String("session", session))
	}
	s.sessions[session] = &inflight{id: id, cancel: cancel}
	s.mu.Unlock()

	return ctx, func() {
		s.mu.Lock()
		if cur, ok := s.sessions[session]; ok && cur.id == id {
			delete(s.sessions, session)
		}
		s.mu.Unlock()
		cancel(nil)
	}
}

// Options returns the parameter choices offered to map clients
func (s *HeatmapService) Options() models.HeatmapOptions {
	engine := s.engine.Load()

	resolutions := make([]int, 0, 4)
	for _, r := range []int{50, 100, 150, 200} {
		if r <= engine.MaxResolution() {
			resolutions = append(resolutions, r)
		}
	}

	return models.HeatmapOptions{
		BufferRadii:    []float64{250, 500, 1000, 2000, 3000, 5000, 8000, 10000},
		Resolutions:    resolutions,
		DecayModes:     []string{string(models.DecaySlow), string(models.DecayFast)},
		MinPercentiles: []float64{0, 5, 10, 15, 20},
		MaxPercentiles: []float64{80, 85, 90, 95, 100},
		DecayPowers:    []float64{0.5, 1, 2, 5, 10},
		Strategies:     heatmap.Strategies(),
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case heatmap.IsInvalidRequest(err):
		return "invalid"
	case errors.Is(err, heatmap.ErrEmptyInput):
		return "empty"
	case errors.Is(err, ErrSchemaNotFound):
		return "no_schema"
	case errors.Is(err, ErrSuperseded), errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}

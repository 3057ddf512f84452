package service

import (
	"context"
	"sort"
	"sync"

	"github.com/jengzang/resourcemap-backend-go/internal/cache"
	"github.com/jengzang/resourcemap-backend-go/internal/models"
	"github.com/jengzang/resourcemap-backend-go/internal/repository"
)

type fakeMarkers struct {
	mu      sync.Mutex
	markers map[string]*models.Marker
	order   []string
	lists   int
}

func newFakeMarkers(ms ...models.Marker) *fakeMarkers {
	f := &fakeMarkers{markers: map[string]*models.Marker{}}
	for i := range ms {
		m := ms[i]
		f.markers[m.ID] = &m
		f.order = append(f.order, m.ID)
	}
	return f
}

func (f *fakeMarkers) ListByDataset(_ context.Context, dataset string) ([]models.Marker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	out := []models.Marker{}
	for _, id := range f.order {
		if m, ok := f.markers[id]; ok && m.Dataset == dataset {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMarkers) ListDatasets(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, id := range f.order {
		if m, ok := f.markers[id]; ok && !seen[m.Dataset] {
			seen[m.Dataset] = true
			out = append(out, m.Dataset)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeMarkers) GetByID(_ context.Context, dataset, id string) (*models.Marker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.markers[id]
	if !ok || m.Dataset != dataset {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMarkers) Create(_ context.Context, m *models.Marker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	f.markers[m.ID] = &cp
	f.order = append(f.order, m.ID)
	return nil
}

func (f *fakeMarkers) Update(_ context.Context, m *models.Marker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.markers[m.ID]; !ok || cur.Dataset != m.Dataset {
		return repository.ErrNotFound
	}
	cp := *m
	f.markers[m.ID] = &cp
	return nil
}

func (f *fakeMarkers) Delete(_ context.Context, dataset, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.markers[id]; !ok || m.Dataset != dataset {
		return repository.ErrNotFound
	}
	delete(f.markers, id)
	return nil
}

func (f *fakeMarkers) UpdateScores(_ context.Context, dataset, id string, scores map[string]map[string]float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.markers[id]
	if !ok || m.Dataset != dataset {
		return repository.ErrNotFound
	}
	m.Scores = scores
	return nil
}

type fakeSchemas struct {
	schemas map[string]*models.CategorySchema
}

func newFakeSchemas(schemas ...*models.CategorySchema) *fakeSchemas {
	f := &fakeSchemas{schemas: map[string]*models.CategorySchema{}}
	for _, s := range schemas {
		f.schemas[s.ProjectName] = s
	}
	return f
}

func (f *fakeSchemas) Get(_ context.Context, project string) (*models.CategorySchema, error) {
	s, ok := f.schemas[project]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeSchemas) List(context.Context) ([]*models.CategorySchema, error) {
	out := make([]*models.CategorySchema, 0, len(f.schemas))
	for _, s := range f.schemas {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectName < out[j].ProjectName })
	return out, nil
}

func (f *fakeSchemas) Upsert(_ context.Context, s *models.CategorySchema) error {
	if cur, ok := f.schemas[s.ProjectName]; ok {
		s.CreatedAt = cur.CreatedAt
	}
	f.schemas[s.ProjectName] = s
	return nil
}

type fakeCache struct {
	mu    sync.Mutex
	items map[string]*models.Raster
	sets  int
}

func (c *fakeCache) Get(_ context.Context, key string) (*models.Raster, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.items[key]; ok {
		return r, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *fakeCache) Set(_ context.Context, key string, r *models.Raster) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = r
	c.sets++
	return nil
}

func (c *fakeCache) Enabled() bool { return true }

package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jengzang/resourcemap-backend-go/internal/models"
	"github.com/jengzang/resourcemap-backend-go/internal/repository"
	"github.com/jengzang/resourcemap-backend-go/internal/spatial"
)

// MarkerStore persists markers
type MarkerStore interface {
	MarkerLister
	GetByID(ctx context.Context, dataset, id string) (*models.Marker, error)
	Create(ctx context.Context, m *models.Marker) error
	Update(ctx context.Context, m *models.Marker) error
	Delete(ctx context.Context, dataset, id string) error
	ListDatasets(ctx context.Context) ([]string, error)
}

// MarkerService handles marker business logic
type MarkerService struct {
	repo   MarkerStore
	logger *zap.Logger
	now    func() time.Time
}

// NewMarkerService creates a new marker service
func NewMarkerService(repo MarkerStore, logger *zap.Logger) *MarkerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarkerService{
		repo:   repo,
		logger: logger.Named("markers"),
		now:    time.Now,
	}
}

// List returns every marker of a dataset
func (s *MarkerService) List(ctx context.Context, dataset string) ([]models.Marker, error) {
	return s.repo.ListByDataset(ctx, dataset)
}

// Datasets returns the names of the datasets holding markers
func (s *MarkerService) Datasets(ctx context.Context) ([]string, error) {
	return s.repo.ListDatasets(ctx)
}

// Get returns one marker
func (s *MarkerService) Get(ctx context.Context, dataset, id string) (*models.Marker, error) {
	m, err := s.repo.GetByID(ctx, dataset, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMarkerNotFound
	}
	return m, err
}

// Create validates and stores a new marker
func (s *MarkerService) Create(ctx context.Context, dataset string, in models.MarkerInput) (*models.Marker, error) {
	if strings.TrimSpace(dataset) == "" {
		return nil, validationErr("dataset", "is required")
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, validationErr("name", "is required")
	}
	if in.Latitude == nil || in.Longitude == nil {
		return nil, validationErr("coordinates", "latitude and longitude are required")
	}

	now := s.now().UTC()
	m := &models.Marker{
		ID:             uuid.NewString(),
		Dataset:        dataset,
		IsLocationOpen: map[string]bool{},
		OpenHours:      map[string]string{},
		Scores:         map[string]map[string]float64{},
		Categories:     map[string]map[string]bool{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	applyInput(m, in)

	if err := validateMarker(m); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("marker created", zap.String("dataset", dataset), zap.String("id", m.ID))
	return m, nil
}

// Update applies the fields present in the input to an existing marker
func (s *MarkerService) Update(ctx context.Context, dataset, id string, in models.MarkerInput) (*models.Marker, error) {
	m, err := s.Get(ctx, dataset, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, validationErr("name", "must not be empty")
	}
	applyInput(m, in)
	m.UpdatedAt = s.now().UTC()

	if err := validateMarker(m); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMarkerNotFound
		}
		return nil, err
	}

	s.logger.Info("marker updated", zap.String("dataset", dataset), zap.String("id", id))
	return m, nil
}

// Delete removes a marker
func (s *MarkerService) Delete(ctx context.Context, dataset, id string) error {
	err := s.repo.Delete(ctx, dataset, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrMarkerNotFound
	}
	if err != nil {
		return err
	}

	s.logger.Info("marker deleted", zap.String("dataset", dataset), zap.String("id", id))
	return nil
}

func applyInput(m *models.Marker, in models.MarkerInput) {
	if in.Name != nil {
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Latitude != nil {
		m.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		m.Longitude = *in.Longitude
	}
	if in.Address != nil {
		m.Address = *in.Address
	}
	if in.Website != nil {
		m.Website = *in.Website
	}
	if in.Phone != nil {
		m.Phone = *in.Phone
	}
	if in.WheelchairAccessible != nil {
		m.WheelchairAccessible = *in.WheelchairAccessible
	}
	if in.IsLocationOpen != nil {
		m.IsLocationOpen = in.IsLocationOpen
	}
	if in.OpenHours != nil {
		m.OpenHours = in.OpenHours
	}
	if in.Scores != nil {
		m.Scores = in.Scores
	}
	if in.Categories != nil {
		m.Categories = in.Categories
	}
}

// validateMarker rejects coordinates and scores the raster engine cannot use
func validateMarker(m *models.Marker) error {
	p := spatial.Point{Lat: m.Latitude, Lon: m.Longitude}
	if !p.Valid() {
		return validationErr("coordinates", "(%v, %v) is not a valid latitude/longitude", m.Latitude, m.Longitude)
	}
	for category, subs := range m.Scores {
		for sub, v := range subs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return validationErr("scores", "%s.%s is not finite", category, sub)
			}
		}
	}
	return nil
}

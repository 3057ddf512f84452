package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/resourcemap-backend-go/internal/heatmap"
	"github.com/jengzang/resourcemap-backend-go/internal/models"
	"github.com/jengzang/resourcemap-backend-go/internal/repository"
)

// SchemaStore persists category schemas
type SchemaStore interface {
	SchemaGetter
	List(ctx context.Context) ([]*models.CategorySchema, error)
	Upsert(ctx context.Context, s *models.CategorySchema) error
}

// SchemaService handles category schema business logic
type SchemaService struct {
	repo   SchemaStore
	logger *zap.Logger
	now    func() time.Time
}

// NewSchemaService creates a new schema service
func NewSchemaService(repo SchemaStore, logger *zap.Logger) *SchemaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemaService{repo: repo, logger: logger.Named("schemas"), now: time.Now}
}

// List returns every schema
func (s *SchemaService) List(ctx context.Context) ([]*models.CategorySchema, error) {
	return s.repo.List(ctx)
}

// Get returns the schema of a project
func (s *SchemaService) Get(ctx context.Context, project string) (*models.CategorySchema, error) {
	schema, err := s.repo.Get(ctx, project)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSchemaNotFound
	}
	return schema, err
}

// Put creates or replaces the ordered category list of a project
func (s *SchemaService) Put(ctx context.Context, project string, categories []models.Category) (*models.CategorySchema, error) {
	if strings.TrimSpace(project) == "" {
		return nil, validationErr("projectName", "is required")
	}

	seen := make(map[string]bool, len(categories))
	for i, c := range categories {
		if err := heatmap.ValidateCategoryName(c.CategoryName); err != nil {
			return nil, validationErr("categories", "entry %d: %s", i, reasonOf(err))
		}
		if seen[c.CategoryName] {
			return nil, validationErr("categories", "duplicate category %q", c.CategoryName)
		}
		seen[c.CategoryName] = true

		for _, sub := range c.Subcategories {
			if strings.TrimSpace(sub) == "" {
				return nil, validationErr("categories", "category %q has an empty subcategory", c.CategoryName)
			}
		}
	}

	now := s.now().UTC()
	schema := &models.CategorySchema{
		ProjectName: project,
		Categories:  categories,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if schema.Categories == nil {
		schema.Categories = []models.Category{}
	}

	if err := s.repo.Upsert(ctx, schema); err != nil {
		return nil, err
	}

	s.logger.Info("schema saved", zap.String("project", project), zap.Int("categories", len(categories)))
	return s.Get(ctx, project)
}

// Selectors lists the category selectors a project's schema accepts
func (s *SchemaService) Selectors(ctx context.Context, project string) ([]models.SelectorOption, error) {
	schema, err := s.Get(ctx, project)
	if err != nil {
		return nil, err
	}
	return heatmap.Selectors(schema.Names()), nil
}

func reasonOf(err error) string {
	var ire *heatmap.InvalidRequestError
	if errors.As(err, &ire) {
		return ire.Reason
	}
	return err.Error()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jengzang/resourcemap-backend-go/internal/models"
)

// SchemaRepository handles database operations for category schemas
type SchemaRepository struct {
	db *sql.DB
}

// NewSchemaRepository creates a new schema repository
func NewSchemaRepository(db *sql.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

func scanSchema(row rowScanner) (*models.CategorySchema, error) {
	var (
		s                    models.CategorySchema
		categoriesJSON       string
		createdAt, updatedAt string
	)
	if err := row.Scan(&s.ProjectName, &categoriesJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := decodeJSON(categoriesJSON, &s.Categories); err != nil {
		return nil, fmt.Errorf("schema %s: categories: %w", s.ProjectName, err)
	}
	if s.Categories == nil {
		s.Categories = []models.Category{}
	}

	var err error
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get retrieves the schema of a project
func (r *SchemaRepository) Get(ctx context.Context, project string) (*models.CategorySchema, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT project_name, categories, created_at, updated_at
		FROM category_schemas
		WHERE project_name = ?
	`, project)

	s, err := scanSchema(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	return s, nil
}

// List returns every schema ordered by project name
func (r *SchemaRepository) List(ctx context.Context) ([]*models.CategorySchema, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT project_name, categories, created_at, updated_at
		FROM category_schemas
		ORDER BY project_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schemas: %w", err)
	}
	defer rows.Close()

	schemas := make([]*models.CategorySchema, 0)
	for rows.Next() {
		s, err := scanSchema(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schema: %w", err)
		}
		schemas = append(schemas, s)
	}
	return schemas, rows.Err()
}

// Upsert creates or replaces the schema of a project. CreatedAt is kept on update.
func (r *SchemaRepository) Upsert(ctx context.Context, s *models.CategorySchema) error {
	categoriesJSON, err := encodeJSON(s.Categories, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO category_schemas (project_name, categories, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_name) DO UPDATE SET
			categories = excluded.categories,
			updated_at = excluded.updated_at
	`, s.ProjectName, categoriesJSON, formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert schema: %w", err)
	}
	return nil
}

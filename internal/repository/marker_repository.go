package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jengzang/resourcemap-backend-go/internal/models"
)

// MarkerRepository handles database operations for markers
type MarkerRepository struct {
	db *sql.DB
}

// NewMarkerRepository creates a new marker repository
func NewMarkerRepository(db *sql.DB) *MarkerRepository {
	return &MarkerRepository{db: db}
}

const markerColumns = `
	id, dataset, name, latitude, longitude, address, website, phone,
	wheelchair_accessible, is_location_open, open_hours, scores, categories,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMarker(row rowScanner) (*models.Marker, error) {
	var (
		m                    models.Marker
		wheelchair           int
		openJSON, hoursJSON  string
		scoresJSON, catsJSON string
		createdAt, updatedAt string
	)

	err := row.Scan(
		&m.ID, &m.Dataset, &m.Name, &m.Latitude, &m.Longitude,
		&m.Address, &m.Website, &m.Phone, &wheelchair,
		&openJSON, &hoursJSON, &scoresJSON, &catsJSON,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.WheelchairAccessible = wheelchair != 0
	if err := decodeJSON(openJSON, &m.IsLocationOpen); err != nil {
		return nil, fmt.Errorf("marker %s: is_location_open: %w", m.ID, err)
	}
	if err := decodeJSON(hoursJSON, &m.OpenHours); err != nil {
		return nil, fmt.Errorf("marker %s: open_hours: %w", m.ID, err)
	}
	if err := decodeJSON(scoresJSON, &m.Scores); err != nil {
		return nil, fmt.Errorf("marker %s: scores: %w", m.ID, err)
	}
	if err := decodeJSON(catsJSON, &m.Categories); err != nil {
		return nil, fmt.Errorf("marker %s: categories: %w", m.ID, err)
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &m, nil
}

type markerJSON struct {
	open, hours, scores, categories string
}

func encodeMarker(m *models.Marker) (markerJSON, error) {
	var (
		out markerJSON
		err error
	)
	if out.open, err = encodeJSON(m.IsLocationOpen, "{}"); err != nil {
		return out, fmt.Errorf("failed to encode is_location_open: %w", err)
	}
	if out.hours, err = encodeJSON(m.OpenHours, "{}"); err != nil {
		return out, fmt.Errorf("failed to encode open_hours: %w", err)
	}
	if out.scores, err = encodeJSON(m.Scores, "{}"); err != nil {
		return out, fmt.Errorf("failed to encode scores: %w", err)
	}
	if out.categories, err = encodeJSON(m.Categories, "{}"); err != nil {
		return out, fmt.Errorf("failed to encode categories: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Create inserts a new marker. ID and timestamps must already be set.
func (r *MarkerRepository) Create(ctx context.Context, m *models.Marker) error {
	enc, err := encodeMarker(m)
	if err != nil {
		return err
	}

	query := `INSERT INTO markers (` + markerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		m.ID, m.Dataset, m.Name, m.Latitude, m.Longitude,
		m.Address, m.Website, m.Phone, boolToInt(m.WheelchairAccessible),
		enc.open, enc.hours, enc.scores, enc.categories,
		formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create marker: %w", err)
	}
	return nil
}

// GetByID retrieves a marker of a dataset by ID
func (r *MarkerRepository) GetByID(ctx context.Context, dataset, id string) (*models.Marker, error) {
	query := `SELECT ` + markerColumns + ` FROM markers WHERE dataset = ? AND id = ?`

	m, err := scanMarker(r.db.QueryRowContext(ctx, query, dataset, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get marker: %w", err)
	}
	return m, nil
}

// ListByDataset returns every marker of a dataset in insertion order
func (r *MarkerRepository) ListByDataset(ctx context.Context, dataset string) ([]models.Marker, error) {
	query := `SELECT ` + markerColumns + ` FROM markers WHERE dataset = ? ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to query markers: %w", err)
	}
	defer rows.Close()

	markers := make([]models.Marker, 0)
	for rows.Next() {
		m, err := scanMarker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan marker: %w", err)
		}
		markers = append(markers, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating markers: %w", err)
	}
	return markers, nil
}

// Update overwrites every mutable column of an existing marker
func (r *MarkerRepository) Update(ctx context.Context, m *models.Marker) error {
	enc, err := encodeMarker(m)
	if err != nil {
		return err
	}

	query := `
		UPDATE markers SET
			name = ?, latitude = ?, longitude = ?, address = ?, website = ?, phone = ?,
			wheelchair_accessible = ?, is_location_open = ?, open_hours = ?,
			scores = ?, categories = ?, updated_at = ?
		WHERE dataset = ? AND id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		m.Name, m.Latitude, m.Longitude, m.Address, m.Website, m.Phone,
		boolToInt(m.WheelchairAccessible), enc.open, enc.hours,
		enc.scores, enc.categories, formatTime(m.UpdatedAt),
		m.Dataset, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update marker: %w", err)
	}
	return requireAffected(result)
}

// UpdateScores replaces only the scores column of a marker
func (r *MarkerRepository) UpdateScores(ctx context.Context, dataset, id string, scores map[string]map[string]float64) error {
	scoresJSON, err := encodeJSON(scores, "{}")
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE markers SET scores = ? WHERE dataset = ? AND id = ?`,
		scoresJSON, dataset, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update marker scores: %w", err)
	}
	return requireAffected(result)
}

// Delete removes a marker
func (r *MarkerRepository) Delete(ctx context.Context, dataset, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM markers WHERE dataset = ? AND id = ?`, dataset, id)
	if err != nil {
		return fmt.Errorf("failed to delete marker: %w", err)
	}
	return requireAffected(result)
}

// ListDatasets returns the distinct dataset names that have markers
func (r *MarkerRepository) ListDatasets(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT dataset FROM markers ORDER BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer rows.Close()

	datasets := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, name)
	}
	return datasets, rows.Err()
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

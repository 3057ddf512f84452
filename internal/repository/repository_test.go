package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/resourcemap-backend-go/internal/database"
	"github.com/jengzang/resourcemap-backend-go/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = database.NewMigrationManager(db, nil).RunMigrations()
	require.NoError(t, err)
	return db
}

func sampleMarker(id string, created time.Time) *models.Marker {
	return &models.Marker{
		ID:                   id,
		Dataset:              "shelters",
		Name:                 "Marker " + id,
		Latitude:             40.7,
		Longitude:            -74.0,
		Address:              "1 Main St",
		WheelchairAccessible: true,
		IsLocationOpen:       map[string]bool{"monday": true},
		OpenHours:            map[string]string{"monday": "9-5"},
		Scores:               map[string]map[string]float64{"Food": {"meals": 4.5}},
		Categories:           map[string]map[string]bool{"Food": {"meals": true}},
		CreatedAt:            created,
		UpdatedAt:            created,
	}
}

func TestMarkerRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMarkerRepository(newTestDB(t))

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	want := sampleMarker("a", now)
	require.NoError(t, repo.Create(ctx, want))

	got, err := repo.GetByID(ctx, "shelters", "a")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = repo.GetByID(ctx, "other", "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkerRepository_NilMapsStoredEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewMarkerRepository(newTestDB(t))

	m := &models.Marker{ID: "bare", Dataset: "d", Name: "Bare", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, m))

	got, err := repo.GetByID(ctx, "d", "bare")
	require.NoError(t, err)
	assert.NotNil(t, got.Scores)
	assert.Empty(t, got.Scores)
	assert.Empty(t, got.Categories)
}

func TestMarkerRepository_ListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMarkerRepository(newTestDB(t))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, sampleMarker("c", base.Add(2*time.Second))))
	require.NoError(t, repo.Create(ctx, sampleMarker("a", base)))
	require.NoError(t, repo.Create(ctx, sampleMarker("b", base.Add(time.Second))))

	markers, err := repo.ListByDataset(ctx, "shelters")
	require.NoError(t, err)
	require.Len(t, markers, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{markers[0].ID, markers[1].ID, markers[2].ID})

	empty, err := repo.ListByDataset(ctx, "nothing")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	datasets, err := repo.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shelters"}, datasets)
}

func TestMarkerRepository_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMarkerRepository(newTestDB(t))

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := sampleMarker("a", now)
	require.NoError(t, repo.Create(ctx, m))

	m.Name = "Renamed"
	m.WheelchairAccessible = false
	m.UpdatedAt = now.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, m))

	got, err := repo.GetByID(ctx, "shelters", "a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.False(t, got.WheelchairAccessible)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, now.Add(time.Hour), got.UpdatedAt)

	require.NoError(t, repo.UpdateScores(ctx, "shelters", "a", map[string]map[string]float64{"Shelter": {"beds": 2}}))
	got, err = repo.GetByID(ctx, "shelters", "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]float64{"Shelter": {"beds": 2}}, got.Scores)

	require.NoError(t, repo.Delete(ctx, "shelters", "a"))
	assert.ErrorIs(t, repo.Delete(ctx, "shelters", "a"), ErrNotFound)

	missing := sampleMarker("zzz", now)
	assert.ErrorIs(t, repo.Update(ctx, missing), ErrNotFound)
	assert.ErrorIs(t, repo.UpdateScores(ctx, "shelters", "zzz", nil), ErrNotFound)
}

func TestSchemaRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSchemaRepository(newTestDB(t))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.Get(ctx, "shelters")
	assert.ErrorIs(t, err, ErrNotFound)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &models.CategorySchema{
		ProjectName: "shelters",
		Categories: []models.Category{
			{CategoryName: "Food", Subcategories: []string{"meals"}},
			{CategoryName: "Shelter"},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, repo.Upsert(ctx, s))

	got, err := repo.Get(ctx, "shelters")
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Shelter"}, got.Names())
	assert.Equal(t, []string{"meals"}, got.Categories[0].Subcategories)

	updated := &models.CategorySchema{
		ProjectName: "shelters",
		Categories:  []models.Category{{CategoryName: "Health"}},
		CreatedAt:   created.Add(48 * time.Hour),
		UpdatedAt:   created.Add(48 * time.Hour),
	}
	require.NoError(t, repo.Upsert(ctx, updated))

	got, err = repo.Get(ctx, "shelters")
	require.NoError(t, err)
	assert.Equal(t, []string{"Health"}, got.Names())
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, created.Add(48*time.Hour), got.UpdatedAt)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// Package cache stores generated rasters keyed by everything that determines them.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jengzang/resourcemap-backend-go/internal/models"
)

// ErrCacheMiss is returned when no raster is stored under a key
var ErrCacheMiss = errors.New("cache miss")

// RasterCache stores generated rasters
type RasterCache interface {
	Get(ctx context.Context, key string) (*models.Raster, error)
	Set(ctx context.Context, key string, raster *models.Raster) error
	Enabled() bool
}

type keyMaterial struct {
	Dataset string               `json:"dataset"`
	Schema  []string             `json:"schema"`
	Request models.RasterRequest `json:"request"`
	Markers []markerFingerprint  `json:"markers"`
}

type markerFingerprint struct {
	ID         string                        `json:"id"`
	Latitude   float64                       `json:"lat"`
	Longitude  float64                       `json:"lng"`
	Scores     map[string]map[string]float64 `json:"scores"`
	Categories map[string]map[string]bool    `json:"categories"`
}

// Key derives the cache key of a raster. Any change to the markers, the
// schema or the request yields a different key.
func Key(dataset string, schema []string, req models.RasterRequest, markers []models.Marker) (string, error) {
	km := keyMaterial{
		Dataset: dataset,
		Schema:  schema,
		Request: req,
		Markers: make([]markerFingerprint, len(markers)),
	}
	for i, m := range markers {
		km.Markers[i] = markerFingerprint{
			ID:         m.ID,
			Latitude:   m.Latitude,
			Longitude:  m.Longitude,
			Scores:     m.Scores,
			Categories: m.Categories,
		}
	}

	// encoding/json sorts map keys, so equal inputs hash equally
	b, err := json.Marshal(km)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	sum := sha256.Sum256(b)
	return dataset + ":" + hex.EncodeToString(sum[:]), nil
}

// Noop never stores anything
type Noop struct{}

// Get always misses
func (Noop) Get(context.Context, string) (*models.Raster, error) { return nil, ErrCacheMiss }

// Set discards the raster
func (Noop) Set(context.Context, string, *models.Raster) error { return nil }

// Enabled reports false
func (Noop) Enabled() bool { return false }

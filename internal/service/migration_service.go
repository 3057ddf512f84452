package service

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ScoreWriter rewrites the scores of one marker
type ScoreWriter interface {
	MarkerLister
	UpdateScores(ctx context.Context, dataset, id string, scores map[string]map[string]float64) error
}

// MigrationReport summarises a data migration run
type MigrationReport struct {
	Dataset string   `json:"dataset"`
	Scanned int      `json:"scanned"`
	Updated []string `json:"updated"`
	DryRun  bool     `json:"dryRun"`
}

// MigrationService runs data fixes over stored markers
type MigrationService struct {
	repo   ScoreWriter
	logger *zap.Logger
}

// NewMigrationService creates a new migration service
func NewMigrationService(repo ScoreWriter, logger *zap.Logger) *MigrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MigrationService{repo: repo, logger: logger.Named("migration")}
}

// CapitalizeScoreKeys upper-cases the first letter of every score category
// key of a dataset so the keys match schema category names. Markers whose
// keys are already capitalized are left untouched.
func (s *MigrationService) CapitalizeScoreKeys(ctx context.Context, dataset string, dryRun bool) (*MigrationReport, error) {
	markers, err := s.repo.ListByDataset(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to load markers: %w", err)
	}

	report := &MigrationReport{Dataset: dataset, Scanned: len(markers), Updated: []string{}, DryRun: dryRun}
	for _, m := range markers {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		scores, changed := CapitalizeKeys(m.Scores)
		if !changed {
			continue
		}

		if !dryRun {
			if err := s.repo.UpdateScores(ctx, dataset, m.ID, scores); err != nil {
				return report, fmt.Errorf("failed to update marker %s: %w", m.ID, err)
			}
		}
		report.Updated = append(report.Updated, m.ID)
		s.logger.Info("updated marker scores", zap.String("id", m.ID), zap.Bool("dry_run", dryRun))
	}

	s.logger.Info("migration complete",
		zap.String("dataset", dataset),
		zap.Int("scanned", report.Scanned),
		zap.Int("updated", len(report.Updated)),
	)
	return report, nil
}

// CapitalizeKeys returns scores with the first letter of each category key
// upper-cased. When two keys collide, subcategories are merged and values
// under the already-capitalized key win.
func CapitalizeKeys(scores map[string]map[string]float64) (map[string]map[string]float64, bool) {
	out := make(map[string]map[string]float64, len(scores))
	changed := false

	// already-capitalized keys first so they win collisions
	for key, subs := range scores {
		if capitalize(key) == key {
			out[key] = copySubs(subs)
		}
	}
	for key, subs := range scores {
		fixed := capitalize(key)
		if fixed == key {
			continue
		}
		changed = true
		dst, ok := out[fixed]
		if !ok {
			dst = make(map[string]float64, len(subs))
			out[fixed] = dst
		}
		for sub, v := range subs {
			if _, exists := dst[sub]; !exists {
				dst[sub] = v
			}
		}
	}
	return out, changed
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func copySubs(subs map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(subs))
	for k, v := range subs {
		out[k] = v
	}
	return out
}

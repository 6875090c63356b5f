package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
)

// Seeder writes the default catalog the first time an empty catalog is seen.
// A process stops trying once it has seeded or found the marker claimed by
// someone else. Failed reads and seeds that wrote nothing leave it free to
// try again on the next empty snapshot.
type Seeder struct {
	service  ports.Service
	marker   ports.SeedMarker
	defaults []domain.Draft
	logger   *slog.Logger

	mu   sync.Mutex
	done bool
}

func NewSeeder(service ports.Service, marker ports.SeedMarker, defaults []domain.Draft, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Seeder{service: service, marker: marker, defaults: defaults, logger: logger}
}

// SeedIfEmpty seeds the catalog when it is empty and nobody seeded it before.
// It reports whether this call wrote any item.
func (s *Seeder) SeedIfEmpty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false, nil
	}

	items, err := s.service.ListItems(ctx)
	if err != nil {
		return false, err
	}
	if len(items) > 0 {
		s.done = true
		return false, nil
	}
	claimed, err := s.marker.Claim(ctx)
	if err != nil {
		return false, mapError(err)
	}
	if !claimed {
		s.done = true
		s.logger.InfoContext(ctx, "catalog already seeded elsewhere; leaving it empty")
		return false, nil
	}
	report, err := s.service.InsertItems(ctx, s.defaults)
	if err != nil && report.Inserted == 0 {
		s.logger.ErrorContext(ctx, "catalog seeding wrote nothing, releasing marker", slog.String("error", err.Error()))
		if releaseErr := s.marker.Release(ctx); releaseErr != nil {
			s.done = true
			return false, errors.Join(err, mapError(releaseErr))
		}
		return false, err
	}
	s.done = true
	if err != nil {
		s.logger.ErrorContext(ctx, "catalog seeding incomplete",
			slog.Int("inserted", report.Inserted),
			slog.Int("failed", report.InsertFailures),
			slog.String("error", err.Error()))
		return true, err
	}
	s.logger.InfoContext(ctx, "catalog seeded", slog.Int("items", report.Inserted))
	return true, nil
}

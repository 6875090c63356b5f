package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
)

// Service implements catalog administration on top of a repository.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

func (s *Service) GetItem(ctx context.Context, id string) (domain.MenuItem, error) {
	item, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.MenuItem{}, mapError(err)
	}
	return item, nil
}

func (s *Service) CreateItem(ctx context.Context, draft domain.Draft) (domain.MenuItem, error) {
	item, err := domain.NewMenuItem("", draft)
	if err != nil {
		return domain.MenuItem{}, mapError(err)
	}
	saved, err := s.repo.Insert(ctx, item)
	if err != nil {
		return domain.MenuItem{}, mapError(err)
	}
	return saved, nil
}

// UpdateItem replaces the editable fields of an existing item. Concurrent
// edits are last-write-wins.
func (s *Service) UpdateItem(ctx context.Context, id string, draft domain.Draft) (domain.MenuItem, error) {
	existing, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.MenuItem{}, mapError(err)
	}
	if err := existing.Apply(draft); err != nil {
		return domain.MenuItem{}, mapError(err)
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return domain.MenuItem{}, mapError(err)
	}
	return existing, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	return mapError(s.repo.Delete(ctx, strings.TrimSpace(id)))
}

// PurgeItems attempts to delete every item. Failures are counted and joined
// into the returned error; nothing is restored.
func (s *Service) PurgeItems(ctx context.Context) (domain.ResetReport, error) {
	var report domain.ResetReport
	items, err := s.repo.List(ctx)
	if err != nil {
		return report, mapError(err)
	}
	var errs []error
	for _, item := range items {
		if err := s.repo.Delete(ctx, item.ID); err != nil {
			if errors.Is(err, ports.ErrItemNotFound) {
				// already gone counts as deleted
				report.Deleted++
				continue
			}
			report.DeleteFailures++
			errs = append(errs, fmt.Errorf("delete %s: %w", item.ID, err))
			continue
		}
		report.Deleted++
	}
	return report, s.partial(&report, errs)
}

// InsertItems inserts drafts in order and stops at the first failure.
func (s *Service) InsertItems(ctx context.Context, drafts []domain.Draft) (domain.ResetReport, error) {
	var report domain.ResetReport
	items := make([]domain.MenuItem, 0, len(drafts))
	for i, draft := range drafts {
		item, err := domain.NewMenuItem("", draft)
		if err != nil {
			return report, mapError(fmt.Errorf("default item %d: %w", i, err))
		}
		items = append(items, item)
	}
	for i, item := range items {
		if _, err := s.repo.Insert(ctx, item); err != nil {
			report.InsertFailures = len(items) - i
			return report, s.partial(&report, []error{fmt.Errorf("insert %q: %w", item.Name, err)})
		}
		report.Inserted++
	}
	return report, nil
}

// ResetCatalog deletes every item and inserts defaults with fresh ids. It
// refuses to run unconfirmed and skips the inserts when any delete failed.
func (s *Service) ResetCatalog(ctx context.Context, cmd ports.ResetCommand) (domain.ResetReport, error) {
	if !cmd.Confirmed {
		return domain.ResetReport{}, mapError(ErrResetNotConfirmed)
	}
	report, err := s.PurgeItems(ctx)
	if err != nil {
		return report, err
	}
	inserted, err := s.InsertItems(ctx, cmd.Defaults)
	report.Inserted = inserted.Inserted
	report.InsertFailures = inserted.InsertFailures
	report.Errors = append(report.Errors, inserted.Errors...)
	return report, err
}

func (s *Service) partial(report *domain.ResetReport, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	for _, err := range errs {
		report.Errors = append(report.Errors, err.Error())
	}
	return mapError(errors.Join(errs...))
}

var _ ports.Service = (*Service)(nil)

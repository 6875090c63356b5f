package application

import (
	"errors"

	"github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	"github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
	"github.com/Apurer/sabor-arte/internal/shared/fault"
)

var (
	// ErrNotFound marks lookups of unknown menu items.
	ErrNotFound = ports.ErrItemNotFound
	// ErrResetNotConfirmed rejects resets the operator has not confirmed.
	ErrResetNotConfirmed = errors.New("catalog reset requires explicit confirmation")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrNegativePrice),
		errors.Is(err, domain.ErrInvalidPrecision),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrInvalidImageURL),
		errors.Is(err, ErrResetNotConfirmed):
		return fault.Validation(err)
	}
	return fault.Persistence(err)
}

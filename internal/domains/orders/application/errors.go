package application

import (
	"errors"

	"github.com/Apurer/sabor-arte/internal/domains/orders/domain"
	"github.com/Apurer/sabor-arte/internal/domains/orders/ports"
	"github.com/Apurer/sabor-arte/internal/shared/fault"
)

// ErrNotFound marks lookups of unknown orders.
var ErrNotFound = ports.ErrOrderNotFound

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrMissingCustomer),
		errors.Is(err, domain.ErrMissingTable),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidStatus):
		return fault.Validation(err)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, ports.ErrIdempotencyConflict):
		return fault.Conflict(err)
	}
	return fault.Persistence(err)
}

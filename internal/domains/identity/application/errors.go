package application

import (
	"errors"

	"github.com/Apurer/sabor-arte/internal/domains/identity/domain"
	"github.com/Apurer/sabor-arte/internal/domains/identity/ports"
	"github.com/Apurer/sabor-arte/internal/shared/fault"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyEmail),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrWeakPassword):
		return fault.Validation(err)
	case errors.Is(err, ports.ErrInvalidCredentials),
		errors.Is(err, ports.ErrSessionNotFound):
		return fault.Auth(err)
	case errors.Is(err, ports.ErrEmailTaken):
		return fault.Conflict(err)
	}
	return fault.Persistence(err)
}

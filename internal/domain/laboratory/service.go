package laboratory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	labs Repository
}

func NewService(labs Repository) *Service {
	return &Service{labs: labs}
}

func (s *Service) Create(ctx context.Context, l *Laboratory) error {
	if l.Nombre == "" {
		return errInvalid("nombre is required")
	}
	return s.labs.Create(ctx, l)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Laboratory, error) {
	return s.labs.GetByID(ctx, id)
}

func (s *Service) Profile(ctx context.Context) (*Laboratory, error) {
	return s.labs.GetProfile(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Laboratory, error) {
	l, err := s.labs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Nombre != nil {
		if *patch.Nombre == "" {
			return nil, errInvalid("nombre is required")
		}
		l.Nombre = *patch.Nombre
	}
	if patch.Email != nil {
		l.Email = patch.Email
	}
	if patch.Direccion != nil {
		l.Direccion = patch.Direccion
	}
	if patch.CodigoPostal != nil {
		l.CodigoPostal = patch.CodigoPostal
	}
	if patch.Ciudad != nil {
		l.Ciudad = patch.Ciudad
	}
	if patch.Provincia != nil {
		l.Provincia = patch.Provincia
	}
	if patch.Pais != nil {
		l.Pais = patch.Pais
	}
	if patch.Telefono != nil {
		l.Telefono = patch.Telefono
	}
	if patch.SitioWeb != nil {
		l.SitioWeb = patch.SitioWeb
	}
	if patch.Logo != nil {
		l.Logo = patch.Logo
	}
	if err := s.labs.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.labs.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Laboratory, int, error) {
	return s.labs.List(ctx, limit, offset)
}

// IsNotFound reports whether err is the repository's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

func errInvalid(format string, args ...interface{}) error {
	return validationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err rejects caller input, as opposed to a
// storage failure.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}

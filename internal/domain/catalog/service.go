package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	studies StudyRepository
	plans   PlanRepository
}

func NewService(studies StudyRepository, plans PlanRepository) *Service {
	return &Service{studies: studies, plans: plans}
}

// -- Studies --

func (s *Service) CreateStudy(ctx context.Context, st *Study) error {
	if st.Codigo <= 0 {
		return errInvalid("codigo is required")
	}
	if st.Determinacion == "" {
		return errInvalid("determinacion is required")
	}
	if st.UB < 0 {
		return errInvalid("ub must not be negative")
	}
	if existing, err := s.studies.GetByCodigo(ctx, st.Codigo); err == nil && existing != nil {
		return errInvalid("ya existe un estudio con el código %d", st.Codigo)
	}
	return s.studies.Create(ctx, st)
}

func (s *Service) GetStudy(ctx context.Context, id uuid.UUID) (*Study, error) {
	return s.studies.GetByID(ctx, id)
}

func (s *Service) GetStudyByCodigo(ctx context.Context, codigo int) (*Study, error) {
	return s.studies.GetByCodigo(ctx, codigo)
}

func (s *Service) UpdateStudy(ctx context.Context, id uuid.UUID, patch StudyPatch) (*Study, error) {
	st, err := s.studies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Codigo != nil && *patch.Codigo != st.Codigo {
		if *patch.Codigo <= 0 {
			return nil, errInvalid("codigo is required")
		}
		if existing, err := s.studies.GetByCodigo(ctx, *patch.Codigo); err == nil && existing != nil {
			return nil, errInvalid("ya existe un estudio con el código %d", *patch.Codigo)
		}
		st.Codigo = *patch.Codigo
	}
	if patch.Determinacion != nil {
		if *patch.Determinacion == "" {
			return nil, errInvalid("determinacion is required")
		}
		st.Determinacion = *patch.Determinacion
	}
	if patch.Urgencia != nil {
		st.Urgencia = *patch.Urgencia
	}
	if patch.Ref != nil {
		st.Ref = patch.Ref
	}
	if patch.UB != nil {
		if *patch.UB < 0 {
			return nil, errInvalid("ub must not be negative")
		}
		st.UB = *patch.UB
	}
	if patch.Frecuencia != nil {
		st.Frecuencia = patch.Frecuencia
	}
	if err := s.studies.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) DeleteStudy(ctx context.Context, id uuid.UUID) error {
	return s.studies.Delete(ctx, id)
}

func (s *Service) ListStudies(ctx context.Context, q string, limit, offset int) ([]*Study, int, error) {
	return s.studies.List(ctx, q, limit, offset)
}

// -- Plans --

func (s *Service) CreatePlan(ctx context.Context, p *Plan) error {
	if p.Nombre == "" {
		return errInvalid("nombre is required")
	}
	if p.NBU <= 0 {
		return errInvalid("nbu must be positive")
	}
	if existing, err := s.plans.GetByNombre(ctx, p.Nombre); err == nil && existing != nil {
		return errInvalid("ya existe una lista con el nombre %q", p.Nombre)
	}
	return s.plans.Create(ctx, p)
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *Service) UpdatePlan(ctx context.Context, id uuid.UUID, patch PlanPatch) (*Plan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Nombre != nil && *patch.Nombre != p.Nombre {
		if *patch.Nombre == "" {
			return nil, errInvalid("nombre is required")
		}
		if existing, err := s.plans.GetByNombre(ctx, *patch.Nombre); err == nil && existing != nil && existing.ID != p.ID {
			return nil, errInvalid("ya existe una lista con el nombre %q", *patch.Nombre)
		}
		p.Nombre = *patch.Nombre
	}
	if patch.NBU != nil {
		if *patch.NBU <= 0 {
			return nil, errInvalid("nbu must be positive")
		}
		p.NBU = *patch.NBU
	}
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.plans.Delete(ctx, id)
}

func (s *Service) ListPlans(ctx context.Context, limit, offset int) ([]*Plan, int, error) {
	return s.plans.List(ctx, limit, offset)
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

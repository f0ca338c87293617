package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ActoBioquimicoCodigo is the well-known code of the administrative act
// study that budget composition auto-includes when a plan is chosen.
const ActoBioquimicoCodigo = 660001

var ErrNotFound = errors.New("not found")

// Study is a billable determination. UB is the study's unit value; a line
// price is UB multiplied by the plan's NBU.
type Study struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Codigo        int       `db:"codigo" json:"codigo"`
	Determinacion string    `db:"determinacion" json:"determinacion"`
	Urgencia      bool      `db:"urgencia" json:"urgencia"`
	Ref           *string   `db:"ref" json:"ref,omitempty"`
	UB            float64   `db:"ub" json:"ub"`
	Frecuencia    *string   `db:"frecuencia" json:"frecuencia,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StudyPatch carries a partial update; nil fields are left unchanged.
type StudyPatch struct {
	Codigo        *int     `json:"codigo"`
	Determinacion *string  `json:"determinacion"`
	Urgencia      *bool    `json:"urgencia"`
	Ref           *string  `json:"ref"`
	UB            *float64 `json:"ub"`
	Frecuencia    *string  `json:"frecuencia"`
}

// Plan is a pricing list. NBU is the price per unit.
type Plan struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Nombre    string    `db:"nombre" json:"nombre"`
	NBU       float64   `db:"nbu" json:"nbu"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PlanPatch carries a partial update; nil fields are left unchanged.
type PlanPatch struct {
	Nombre *string  `json:"nombre"`
	NBU    *float64 `json:"nbu"`
}

package budget

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("presupuesto no encontrado")
	// ErrNoItems rejects creation of an empty budget.
	ErrNoItems = errors.New("se requieren items para el presupuesto")
	// ErrNoEmail marks a send attempt on a budget without a stored address.
	ErrNoEmail = errors.New("el presupuesto no tiene un email asociado")
)

// Budget is a patient-facing quote. Total is the denormalized sum of its
// items' valores, recomputed server-side at creation. PlanID references the
// default pricing list and may dangle to NULL if the plan is later deleted;
// each item keeps its own priced snapshot either way.
type Budget struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Paciente  *string    `db:"paciente" json:"paciente,omitempty"`
	Telefono  *string    `db:"telefono" json:"telefono,omitempty"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Total     float64    `db:"total" json:"total"`
	PlanID    *uuid.UUID `db:"plan_id" json:"planId,omitempty"`
	// PlanNombre is joined from the plan table on reads, not stored.
	PlanNombre *string    `db:"-" json:"planNombre,omitempty"`
	SentAt     *time.Time `db:"sent_at" json:"sentAt,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

// Item is one selected study inside a budget, carrying the snapshot of the
// plan used to price it at creation time. The snapshot keeps historical
// quotes stable when catalog prices change later.
type Item struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	BudgetID   uuid.UUID  `db:"budget_id" json:"budgetId"`
	StudyID    uuid.UUID  `db:"study_id" json:"studyId"`
	PlanID     *uuid.UUID `db:"plan_id" json:"planId,omitempty"`
	PlanNombre string     `db:"plan_nombre" json:"planNombre"`
	Codigo     int        `db:"codigo" json:"codigo"`
	Nombre     string     `db:"nombre" json:"nombre"`
	UB         float64    `db:"ub" json:"ub"`
	Valor      float64    `db:"valor" json:"valor"`
}

// WithItems bundles a budget header with its ordered items.
type WithItems struct {
	Budget
	Items []*Item `json:"items"`
}

// LineValue prices one line: the study's unit value times the plan's unit
// price, rounded to centavos.
func LineValue(ub, nbu float64) float64 {
	return round2(ub * nbu)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SumItems recomputes a budget total from its items.
func SumItems(items []*Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Valor
	}
	return round2(total)
}

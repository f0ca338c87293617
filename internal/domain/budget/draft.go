package budget

import (
	"github.com/google/uuid"

	"github.com/labsuite/labsuite/internal/domain/catalog"
)

// PlanRef is the pricing snapshot a draft line carries: enough to re-price
// the line and to label it after the live plan is gone.
type PlanRef struct {
	ID     uuid.UUID `json:"id"`
	Nombre string    `json:"nombre"`
	NBU    float64   `json:"nbu"`
}

// DraftLine is one selected study inside a draft, priced against its
// assigned plan.
type DraftLine struct {
	StudyID uuid.UUID `json:"studyId"`
	Codigo  int       `json:"codigo"`
	Nombre  string    `json:"nombre"`
	UB      float64   `json:"ub"`
	Plan    PlanRef   `json:"plan"`
	Valor   float64   `json:"valor"`
}

// Draft is the serializable accumulation state of a budget before it is
// committed: a patient, contact info, a default plan and the selected lines.
// All mutation goes through its methods; Total is always derived.
type Draft struct {
	Paciente string      `json:"paciente"`
	Telefono string      `json:"telefono"`
	Email    string      `json:"email"`
	Plan     *PlanRef    `json:"plan,omitempty"`
	Lines    []DraftLine `json:"items"`
}

// SelectPlan assigns the default pricing list. The administrative act study
// (catalog.ActoBioquimicoCodigo) is prepended priced against the new plan if
// absent; if it is already selected, only its plan assignment is re-priced.
// Other lines keep their existing plan assignment.
func (d *Draft) SelectPlan(plan PlanRef, acto *catalog.Study) {
	d.Plan = &plan

	for i := range d.Lines {
		if d.Lines[i].Codigo == catalog.ActoBioquimicoCodigo {
			d.Lines[i].Plan = plan
			d.Lines[i].Valor = LineValue(d.Lines[i].UB, plan.NBU)
			return
		}
	}

	if acto == nil {
		return
	}
	line := DraftLine{
		StudyID: acto.ID,
		Codigo:  acto.Codigo,
		Nombre:  acto.Determinacion,
		UB:      acto.UB,
		Plan:    plan,
		Valor:   LineValue(acto.UB, plan.NBU),
	}
	d.Lines = append([]DraftLine{line}, d.Lines...)
}

// AddStudy appends a study priced against the default plan. Adding a study
// that is already selected is a no-op; the existing line is not modified.
// Returns false when nothing was added.
func (d *Draft) AddStudy(st *catalog.Study) bool {
	if d.Plan == nil || st == nil {
		return false
	}
	for _, line := range d.Lines {
		if line.StudyID == st.ID {
			return false
		}
	}
	d.Lines = append(d.Lines, DraftLine{
		StudyID: st.ID,
		Codigo:  st.Codigo,
		Nombre:  st.Determinacion,
		UB:      st.UB,
		Plan:    *d.Plan,
		Valor:   LineValue(st.UB, d.Plan.NBU),
	})
	return true
}

// OverrideLinePlan re-prices a single line against a different plan, leaving
// every other line untouched. Returns false when the study is not selected.
func (d *Draft) OverrideLinePlan(studyID uuid.UUID, plan PlanRef) bool {
	for i := range d.Lines {
		if d.Lines[i].StudyID == studyID {
			d.Lines[i].Plan = plan
			d.Lines[i].Valor = LineValue(d.Lines[i].UB, plan.NBU)
			return true
		}
	}
	return false
}

// RemoveStudy drops a line unconditionally.
func (d *Draft) RemoveStudy(studyID uuid.UUID) bool {
	for i := range d.Lines {
		if d.Lines[i].StudyID == studyID {
			d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// Total is the sum of all line valores, derived on every call.
func (d *Draft) Total() float64 {
	var total float64
	for _, line := range d.Lines {
		total += line.Valor
	}
	return round2(total)
}

// Validate checks that the draft can be persisted.
func (d *Draft) Validate() error {
	if len(d.Lines) == 0 {
		return ErrNoItems
	}
	return nil
}

// ValidateForSend additionally requires a delivery address.
func (d *Draft) ValidateForSend() error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.Email == "" {
		return ErrNoEmail
	}
	return nil
}

// CreateRequest converts the draft into the payload the store accepts.
func (d *Draft) CreateRequest() CreateRequest {
	req := CreateRequest{
		Paciente: d.Paciente,
		Telefono: d.Telefono,
		Email:    d.Email,
		Total:    d.Total(),
	}
	if d.Plan != nil {
		planID := d.Plan.ID
		req.PlanID = &planID
	}
	for _, line := range d.Lines {
		planID := line.Plan.ID
		req.Items = append(req.Items, ItemRequest{
			StudyID:    line.StudyID,
			Codigo:     line.Codigo,
			Nombre:     line.Nombre,
			UB:         line.UB,
			PlanID:     &planID,
			PlanNombre: line.Plan.Nombre,
			Valor:      line.Valor,
		})
	}
	return req
}

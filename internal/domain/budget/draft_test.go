package budget

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/labsuite/labsuite/internal/domain/catalog"
)

func newStudy(codigo int, nombre string, ub float64) *catalog.Study {
	return &catalog.Study{ID: uuid.New(), Codigo: codigo, Determinacion: nombre, UB: ub}
}

func newPlan(nombre string, nbu float64) PlanRef {
	return PlanRef{ID: uuid.New(), Nombre: nombre, NBU: nbu}
}

func TestDraftSelectPlanAddsActoBioquimico(t *testing.T) {
	acto := newStudy(catalog.ActoBioquimicoCodigo, "Acto Bioquímico", 10)
	plan := newPlan("OSDE", 100)

	d := &Draft{}
	d.SelectPlan(plan, acto)

	if len(d.Lines) != 1 {
		t.Fatalf("expected acto line after plan selection, got %d lines", len(d.Lines))
	}
	if d.Lines[0].Codigo != catalog.ActoBioquimicoCodigo {
		t.Errorf("expected codigo %d, got %d", catalog.ActoBioquimicoCodigo, d.Lines[0].Codigo)
	}
	if d.Lines[0].Valor != 1000 {
		t.Errorf("expected valor 1000, got %v", d.Lines[0].Valor)
	}
}

func TestDraftSelectPlanRepricesExistingActo(t *testing.T) {
	acto := newStudy(catalog.ActoBioquimicoCodigo, "Acto Bioquímico", 10)
	d := &Draft{}
	d.SelectPlan(newPlan("OSDE", 100), acto)
	d.SelectPlan(newPlan("Swiss", 150), acto)

	if len(d.Lines) != 1 {
		t.Fatalf("re-selecting a plan must not duplicate the acto line, got %d", len(d.Lines))
	}
	if d.Lines[0].Valor != 1500 {
		t.Errorf("expected re-priced valor 1500, got %v", d.Lines[0].Valor)
	}
}

func TestDraftAddStudyPricesAgainstDefaultPlan(t *testing.T) {
	plan := newPlan("OSDE", 1000)
	d := &Draft{}
	d.SelectPlan(plan, nil)

	glucemia := newStudy(450, "Glucemia", 3)
	if !d.AddStudy(glucemia) {
		t.Fatal("expected study to be added")
	}
	hemograma := newStudy(460, "Hemograma", 2)
	if !d.AddStudy(hemograma) {
		t.Fatal("expected study to be added")
	}

	if d.Lines[0].Valor != 3000 || d.Lines[1].Valor != 2000 {
		t.Errorf("unexpected line valores: %v, %v", d.Lines[0].Valor, d.Lines[1].Valor)
	}
	if got := d.Total(); got != 5000 {
		t.Errorf("expected total 5000, got %v", got)
	}
}

func TestDraftAddStudyIsIdempotent(t *testing.T) {
	d := &Draft{}
	d.SelectPlan(newPlan("OSDE", 1000), nil)

	st := newStudy(450, "Glucemia", 3)
	if !d.AddStudy(st) {
		t.Fatal("first add must succeed")
	}
	if d.AddStudy(st) {
		t.Error("second add of the same study must be a no-op")
	}
	if len(d.Lines) != 1 {
		t.Errorf("expected a single line, got %d", len(d.Lines))
	}
}

func TestDraftAddStudyRequiresPlan(t *testing.T) {
	d := &Draft{}
	if d.AddStudy(newStudy(450, "Glucemia", 3)) {
		t.Error("adding a study without a selected plan must fail")
	}
}

func TestDraftOverrideLinePlan(t *testing.T) {
	d := &Draft{}
	d.SelectPlan(newPlan("OSDE", 1000), nil)

	st := newStudy(450, "Glucemia", 2)
	d.AddStudy(st)
	if d.Lines[0].Valor != 2000 {
		t.Fatalf("expected 2000 before override, got %v", d.Lines[0].Valor)
	}

	if !d.OverrideLinePlan(st.ID, newPlan("Particular", 800)) {
		t.Fatal("expected override to find the line")
	}
	if d.Lines[0].Valor != 1600 {
		t.Errorf("expected 1600 after override, got %v", d.Lines[0].Valor)
	}
	if d.OverrideLinePlan(uuid.New(), newPlan("Otra", 500)) {
		t.Error("override on an unselected study must return false")
	}
}

func TestDraftOverrideLeavesOtherLinesUntouched(t *testing.T) {
	d := &Draft{}
	d.SelectPlan(newPlan("OSDE", 1000), nil)

	a := newStudy(450, "Glucemia", 3)
	b := newStudy(460, "Hemograma", 2)
	d.AddStudy(a)
	d.AddStudy(b)

	d.OverrideLinePlan(b.ID, newPlan("Particular", 800))

	if d.Lines[0].Valor != 3000 {
		t.Errorf("line a must keep its price, got %v", d.Lines[0].Valor)
	}
	if d.Lines[1].Valor != 1600 {
		t.Errorf("line b must be re-priced, got %v", d.Lines[1].Valor)
	}
	if got := d.Total(); got != 4600 {
		t.Errorf("expected total 4600, got %v", got)
	}
}

func TestDraftRemoveStudy(t *testing.T) {
	d := &Draft{}
	d.SelectPlan(newPlan("OSDE", 1000), nil)
	st := newStudy(450, "Glucemia", 3)
	d.AddStudy(st)

	if !d.RemoveStudy(st.ID) {
		t.Fatal("expected removal to succeed")
	}
	if len(d.Lines) != 0 {
		t.Errorf("expected no lines left, got %d", len(d.Lines))
	}
	if d.RemoveStudy(st.ID) {
		t.Error("removing an absent study must return false")
	}
}

func TestDraftValidate(t *testing.T) {
	d := &Draft{}
	if err := d.Validate(); !errors.Is(err, ErrNoItems) {
		t.Errorf("expected ErrNoItems, got %v", err)
	}

	d.SelectPlan(newPlan("OSDE", 1000), nil)
	d.AddStudy(newStudy(450, "Glucemia", 3))
	if err := d.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := d.ValidateForSend(); !errors.Is(err, ErrNoEmail) {
		t.Errorf("expected ErrNoEmail without an address, got %v", err)
	}

	d.Email = "paciente@example.com"
	if err := d.ValidateForSend(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDraftCreateRequestCarriesSnapshots(t *testing.T) {
	plan := newPlan("OSDE", 1000)
	d := &Draft{Paciente: "Juan Pérez", Email: "juan@example.com"}
	d.SelectPlan(plan, nil)

	st := newStudy(450, "Glucemia", 3)
	d.AddStudy(st)
	d.OverrideLinePlan(st.ID, newPlan("Particular", 800))

	req := d.CreateRequest()
	if req.Paciente != "Juan Pérez" || req.Email != "juan@example.com" {
		t.Errorf("contact data not carried over: %+v", req)
	}
	if req.PlanID == nil || *req.PlanID != plan.ID {
		t.Errorf("expected default plan id %s, got %v", plan.ID, req.PlanID)
	}
	if len(req.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(req.Items))
	}
	if req.Items[0].PlanNombre != "Particular" || req.Items[0].Valor != 2400 {
		t.Errorf("expected per-line plan snapshot, got %+v", req.Items[0])
	}
	if req.Total != 2400 {
		t.Errorf("expected total 2400, got %v", req.Total)
	}
}

func TestLineValueRounding(t *testing.T) {
	if got := LineValue(0.333, 10); got != 3.33 {
		t.Errorf("expected 3.33, got %v", got)
	}
	if got := LineValue(1.005, 100); got != 100.5 {
		t.Errorf("expected 100.5, got %v", got)
	}
}

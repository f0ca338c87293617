package budget

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/labsuite/labsuite/internal/domain/catalog"
	"github.com/labsuite/labsuite/internal/domain/laboratory"
	"github.com/labsuite/labsuite/internal/platform/mail"
)

// -- Mock Repositories --

type mockBudgetRepo struct {
	budgets map[uuid.UUID]*Budget
	items   map[uuid.UUID][]*Item
}

func newMockBudgetRepo() *mockBudgetRepo {
	return &mockBudgetRepo{
		budgets: make(map[uuid.UUID]*Budget),
		items:   make(map[uuid.UUID][]*Item),
	}
}

func (m *mockBudgetRepo) CreateWithItems(_ context.Context, b *Budget, items []*Item) error {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.budgets[b.ID] = b
	for _, it := range items {
		it.ID = uuid.New()
		it.BudgetID = b.ID
	}
	m.items[b.ID] = items
	return nil
}

func (m *mockBudgetRepo) GetWithItems(_ context.Context, id uuid.UUID) (*WithItems, error) {
	b, ok := m.budgets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &WithItems{Budget: *b, Items: m.items[id]}, nil
}

func (m *mockBudgetRepo) List(_ context.Context, q string, day *time.Time, limit, offset int) ([]*Budget, int, error) {
	var result []*Budget
	for _, b := range m.budgets {
		if q != "" {
			paciente := ""
			if b.Paciente != nil {
				paciente = *b.Paciente
			}
			if !strings.Contains(strings.ToLower(paciente), strings.ToLower(q)) {
				continue
			}
		}
		if day != nil && !sameDay(b.CreatedAt, *day) {
			continue
		}
		result = append(result, b)
	}
	return result, len(result), nil
}

func (m *mockBudgetRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.budgets, id)
	delete(m.items, id)
	return nil
}

func (m *mockBudgetRepo) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	b, ok := m.budgets[id]
	if !ok {
		return ErrNotFound
	}
	b.SentAt = &at
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

type mockStudyRepo struct {
	items map[uuid.UUID]*catalog.Study
}

func newMockStudyRepo() *mockStudyRepo {
	return &mockStudyRepo{items: make(map[uuid.UUID]*catalog.Study)}
}

func (m *mockStudyRepo) add(codigo int, nombre string, ub float64) *catalog.Study {
	st := &catalog.Study{ID: uuid.New(), Codigo: codigo, Determinacion: nombre, UB: ub}
	m.items[st.ID] = st
	return st
}

func (m *mockStudyRepo) Create(_ context.Context, s *catalog.Study) error {
	s.ID = uuid.New()
	m.items[s.ID] = s
	return nil
}

func (m *mockStudyRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.Study, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return s, nil
}

func (m *mockStudyRepo) GetByCodigo(_ context.Context, codigo int) (*catalog.Study, error) {
	for _, s := range m.items {
		if s.Codigo == codigo {
			return s, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (m *mockStudyRepo) Update(_ context.Context, s *catalog.Study) error {
	m.items[s.ID] = s
	return nil
}

func (m *mockStudyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockStudyRepo) List(_ context.Context, q string, limit, offset int) ([]*catalog.Study, int, error) {
	var result []*catalog.Study
	for _, s := range m.items {
		result = append(result, s)
	}
	return result, len(result), nil
}

type mockPlanRepo struct {
	items map[uuid.UUID]*catalog.Plan
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{items: make(map[uuid.UUID]*catalog.Plan)}
}

func (m *mockPlanRepo) add(nombre string, nbu float64) *catalog.Plan {
	p := &catalog.Plan{ID: uuid.New(), Nombre: nombre, NBU: nbu}
	m.items[p.ID] = p
	return p
}

func (m *mockPlanRepo) Create(_ context.Context, p *catalog.Plan) error {
	p.ID = uuid.New()
	m.items[p.ID] = p
	return nil
}

func (m *mockPlanRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.Plan, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func (m *mockPlanRepo) GetByNombre(_ context.Context, nombre string) (*catalog.Plan, error) {
	for _, p := range m.items {
		if strings.EqualFold(p.Nombre, nombre) {
			return p, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (m *mockPlanRepo) Update(_ context.Context, p *catalog.Plan) error {
	m.items[p.ID] = p
	return nil
}

func (m *mockPlanRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockPlanRepo) List(_ context.Context, limit, offset int) ([]*catalog.Plan, int, error) {
	var result []*catalog.Plan
	for _, p := range m.items {
		result = append(result, p)
	}
	return result, len(result), nil
}

type mockLabRepo struct {
	profile *laboratory.Laboratory
}

func (m *mockLabRepo) Create(_ context.Context, l *laboratory.Laboratory) error {
	l.ID = uuid.New()
	m.profile = l
	return nil
}

func (m *mockLabRepo) GetByID(_ context.Context, id uuid.UUID) (*laboratory.Laboratory, error) {
	if m.profile == nil || m.profile.ID != id {
		return nil, laboratory.ErrNotFound
	}
	return m.profile, nil
}

func (m *mockLabRepo) GetProfile(_ context.Context) (*laboratory.Laboratory, error) {
	if m.profile == nil {
		return nil, laboratory.ErrNotFound
	}
	return m.profile, nil
}

func (m *mockLabRepo) Update(_ context.Context, l *laboratory.Laboratory) error {
	m.profile = l
	return nil
}

func (m *mockLabRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.profile = nil
	return nil
}

func (m *mockLabRepo) List(_ context.Context, limit, offset int) ([]*laboratory.Laboratory, int, error) {
	if m.profile == nil {
		return nil, 0, nil
	}
	return []*laboratory.Laboratory{m.profile}, 1, nil
}

type testEnv struct {
	svc     *Service
	repo    *mockBudgetRepo
	studies *mockStudyRepo
	plans   *mockPlanRepo
	sender  *mail.MockSender
}

func newTestEnv() *testEnv {
	repo := newMockBudgetRepo()
	studies := newMockStudyRepo()
	plans := newMockPlanRepo()
	labs := &mockLabRepo{profile: &laboratory.Laboratory{ID: uuid.New(), Nombre: "Laboratorio Central"}}
	sender := mail.NewMockSender()
	svc := NewService(repo, studies, plans, labs, sender, 30)
	return &testEnv{svc: svc, repo: repo, studies: studies, plans: plans, sender: sender}
}

// -- Composition tests --

func TestServiceSelectPlanAddsActo(t *testing.T) {
	env := newTestEnv()
	env.studies.add(catalog.ActoBioquimicoCodigo, "Acto Bioquímico", 10)
	plan := env.plans.add("OSDE", 100)

	d := &Draft{}
	if err := env.svc.SelectPlan(context.Background(), d, plan.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Lines) != 1 || d.Lines[0].Codigo != catalog.ActoBioquimicoCodigo {
		t.Fatalf("expected acto line, got %+v", d.Lines)
	}
	if d.Lines[0].Valor != 1000 {
		t.Errorf("expected valor 1000, got %v", d.Lines[0].Valor)
	}
}

func TestServiceSelectPlanWithoutActoInCatalog(t *testing.T) {
	env := newTestEnv()
	plan := env.plans.add("OSDE", 100)

	d := &Draft{}
	if err := env.svc.SelectPlan(context.Background(), d, plan.ID); err != nil {
		t.Fatalf("a missing acto study must not fail plan selection: %v", err)
	}
	if len(d.Lines) != 0 {
		t.Errorf("expected no lines, got %d", len(d.Lines))
	}
}

func TestServiceAddStudyAndOverride(t *testing.T) {
	env := newTestEnv()
	plan := env.plans.add("OSDE", 1000)
	particular := env.plans.add("Particular", 800)
	glucemia := env.studies.add(450, "Glucemia", 2)

	d := &Draft{}
	if err := env.svc.SelectPlan(context.Background(), d, plan.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := env.svc.AddStudy(context.Background(), d, glucemia.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Lines[0].Valor != 2000 {
		t.Fatalf("expected 2000, got %v", d.Lines[0].Valor)
	}

	if err := env.svc.OverrideLinePlan(context.Background(), d, glucemia.ID, particular.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Lines[0].Valor != 1600 {
		t.Errorf("expected 1600 after override, got %v", d.Lines[0].Valor)
	}
}

func TestServiceAddStudyRequiresPlan(t *testing.T) {
	env := newTestEnv()
	st := env.studies.add(450, "Glucemia", 2)

	if err := env.svc.AddStudy(context.Background(), &Draft{}, st.ID); err == nil {
		t.Error("expected error when no plan is selected")
	}
}

// -- Create tests --

func TestCreate_RejectsEmptyItems(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.Create(context.Background(), CreateRequest{Paciente: "Juan"})
	if !errors.Is(err, ErrNoItems) {
		t.Errorf("expected ErrNoItems, got %v", err)
	}
}

func TestCreate_RecomputesTotal(t *testing.T) {
	env := newTestEnv()
	req := CreateRequest{
		Paciente: "Juan Pérez",
		Total:    1, // client-supplied totals are not trusted
		Items: []ItemRequest{
			{StudyID: uuid.New(), Codigo: 450, Nombre: "Glucemia", UB: 3, Valor: 3000},
			{StudyID: uuid.New(), Codigo: 460, Nombre: "Hemograma", UB: 2, Valor: 2000},
		},
	}
	b, err := env.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Total != 5000 {
		t.Errorf("expected recomputed total 5000, got %v", b.Total)
	}
}

func TestCreate_EmptyContactFieldsStoredAsNull(t *testing.T) {
	env := newTestEnv()
	req := CreateRequest{
		Items: []ItemRequest{{StudyID: uuid.New(), Codigo: 450, Nombre: "Glucemia", UB: 1, Valor: 100}},
	}
	b, err := env.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Paciente != nil || b.Telefono != nil || b.Email != nil {
		t.Errorf("expected nil contact fields, got %+v", b)
	}
}

func TestDelete_RemovesItems(t *testing.T) {
	env := newTestEnv()
	b, err := env.svc.Create(context.Background(), CreateRequest{
		Items: []ItemRequest{{StudyID: uuid.New(), Codigo: 450, Nombre: "Glucemia", UB: 1, Valor: 100}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := env.svc.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := env.repo.items[b.ID]; ok {
		t.Error("expected items to be removed with the header")
	}
}

// -- Render / delivery tests --

func TestRender_ProducesPDF(t *testing.T) {
	env := newTestEnv()
	b, err := env.svc.Create(context.Background(), CreateRequest{
		Paciente: "Juan Pérez",
		Items:    []ItemRequest{{StudyID: uuid.New(), Codigo: 450, Nombre: "Glucemia", UB: 3, Valor: 3000}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	filename, buf, err := env.svc.Render(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filename != "Presupuesto_Juan_Pérez.pdf" {
		t.Errorf("unexpected filename: %s", filename)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Error("expected a PDF document")
	}
}

func TestSendEmail_RequiresStoredAddress(t *testing.T) {
	env := newTestEnv()
	b, err := env.svc.Create(context.Background(), CreateRequest{
		Paciente: "Juan",
		Items:    []ItemRequest{{StudyID: uuid.New(), Codigo: 450, Nombre: "Glucemia", UB: 1, Valor: 100}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = env.svc.SendEmail(context.Background(), b.ID)
	if !errors.Is(err, ErrNoEmail) {
		t.Errorf("expected ErrNoEmail, got %v", err)
	}
	if env.repo.budgets[b.ID].SentAt != nil {
		t.Error("sent_at must not be touched on a failed precondition")
	}
	if len(env.sender.Calls()) != 0 {
		t.Error("nothing must be sent without an address")
	}
}

func TestSendEmail_TransportFailureLeavesSentAtUnset(t *testing.T) {
	env := newTestEnv()
	env.sender.ShouldFail = true
	b, err := env.svc.Create(context.Background(), CreateRequest{
		Email: "juan@example.com",
		Items: []ItemRequest{{StudyID: uuid.New(), Codigo: 450, Nombre: "Glucemia", UB: 1, Valor: 100}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = env.svc.SendEmail(context.Background(), b.ID)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if errors.Is(err, ErrNoEmail) {
		t.Error("transport failure must be distinguishable from a missing address")
	}
	if !errors.Is(err, mail.ErrTransport) {
		t.Errorf("expected wrapped transport error, got %v", err)
	}
	if env.repo.budgets[b.ID].SentAt != nil {
		t.Error("sent_at must stay unset after a failed delivery")
	}
}

func TestSendEmail_Success(t *testing.T) {
	env := newTestEnv()
	b, err := env.svc.Create(context.Background(), CreateRequest{
		Paciente: "Juan Pérez",
		Email:    "juan@example.com",
		Items:    []ItemRequest{{StudyID: uuid.New(), Codigo: 450, Nombre: "Glucemia", UB: 3, Valor: 3000}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sentAt, err := env.svc.SendEmail(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sentAt.IsZero() {
		t.Error("expected a delivery timestamp")
	}
	if got := env.repo.budgets[b.ID].SentAt; got == nil || !got.Equal(sentAt) {
		t.Errorf("expected sent_at %v recorded, got %v", sentAt, got)
	}

	calls := env.sender.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one delivery, got %d", len(calls))
	}
	msg := calls[0]
	if msg.To != "juan@example.com" {
		t.Errorf("unexpected recipient: %s", msg.To)
	}
	if msg.Subject != "Presupuesto de Análisis Clínicos" {
		t.Errorf("unexpected subject: %s", msg.Subject)
	}
	if len(msg.Attachments) != 1 || msg.Attachments[0].Filename != "Presupuesto_Juan_Pérez.pdf" {
		t.Errorf("unexpected attachments: %+v", msg.Attachments)
	}
	if !strings.HasPrefix(string(msg.Attachments[0].Content), "%PDF") {
		t.Error("attachment must be a PDF document")
	}
}

func TestSendEmail_NotFound(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.SendEmail(context.Background(), uuid.New())
	if !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

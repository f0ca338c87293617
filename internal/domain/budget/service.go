package budget

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/labsuite/labsuite/internal/domain/catalog"
	"github.com/labsuite/labsuite/internal/domain/laboratory"
	"github.com/labsuite/labsuite/internal/platform/mail"
	"github.com/labsuite/labsuite/internal/platform/render"
)

// CreateRequest is the payload accepted by Create. Item valores arrive
// pre-priced from composition; the total is recomputed server-side and any
// caller-supplied total that disagrees is overwritten.
type CreateRequest struct {
	Paciente string        `json:"paciente"`
	Telefono string        `json:"telefono"`
	Email    string        `json:"email"`
	PlanID   *uuid.UUID    `json:"planId"`
	Total    float64       `json:"total"`
	Items    []ItemRequest `json:"items"`
}

type ItemRequest struct {
	StudyID    uuid.UUID  `json:"studyId"`
	Codigo     int        `json:"codigo"`
	Nombre     string     `json:"nombre"`
	UB         float64    `json:"ub"`
	PlanID     *uuid.UUID `json:"planId"`
	PlanNombre string     `json:"planNombre"`
	Valor      float64    `json:"valor"`
}

type Service struct {
	budgets Repository
	studies catalog.StudyRepository
	plans   catalog.PlanRepository
	labs    laboratory.Repository
	sender  mail.Sender

	validityDays int
	now          func() time.Time
}

func NewService(budgets Repository, studies catalog.StudyRepository, plans catalog.PlanRepository,
	labs laboratory.Repository, sender mail.Sender, validityDays int) *Service {
	return &Service{
		budgets:      budgets,
		studies:      studies,
		plans:        plans,
		labs:         labs,
		sender:       sender,
		validityDays: validityDays,
		now:          time.Now,
	}
}

// SelectPlan applies a default plan choice to a draft, fetching the plan and
// the administrative act study on the caller's behalf.
func (s *Service) SelectPlan(ctx context.Context, d *Draft, planID uuid.UUID) error {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return fmt.Errorf("plan %s: %w", planID, err)
	}
	acto, err := s.studies.GetByCodigo(ctx, catalog.ActoBioquimicoCodigo)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return err
	}
	d.SelectPlan(PlanRef{ID: plan.ID, Nombre: plan.Nombre, NBU: plan.NBU}, acto)
	return nil
}

// AddStudy resolves a study and appends it to the draft. Re-selecting a
// study that is already in the draft leaves it untouched.
func (s *Service) AddStudy(ctx context.Context, d *Draft, studyID uuid.UUID) error {
	if d.Plan == nil {
		return fmt.Errorf("debe seleccionar una lista antes de agregar estudios")
	}
	st, err := s.studies.GetByID(ctx, studyID)
	if err != nil {
		return fmt.Errorf("study %s: %w", studyID, err)
	}
	d.AddStudy(st)
	return nil
}

// OverrideLinePlan re-prices one draft line against another plan.
func (s *Service) OverrideLinePlan(ctx context.Context, d *Draft, studyID, planID uuid.UUID) error {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return fmt.Errorf("plan %s: %w", planID, err)
	}
	if !d.OverrideLinePlan(studyID, PlanRef{ID: plan.ID, Nombre: plan.Nombre, NBU: plan.NBU}) {
		return fmt.Errorf("study %s is not part of the draft", studyID)
	}
	return nil
}

// Create persists a budget with its priced items. The stored total is the
// sum of the item valores regardless of what the caller computed.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Budget, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}

	b := &Budget{
		Paciente: nilIfEmpty(req.Paciente),
		Telefono: nilIfEmpty(req.Telefono),
		Email:    nilIfEmpty(req.Email),
		PlanID:   req.PlanID,
	}
	items := make([]*Item, 0, len(req.Items))
	for _, ir := range req.Items {
		if ir.StudyID == uuid.Nil {
			return nil, errInvalid("studyId is required on every item")
		}
		items = append(items, &Item{
			StudyID:    ir.StudyID,
			PlanID:     ir.PlanID,
			PlanNombre: ir.PlanNombre,
			Codigo:     ir.Codigo,
			Nombre:     ir.Nombre,
			UB:         ir.UB,
			Valor:      ir.Valor,
		})
	}
	b.Total = SumItems(items)

	if err := s.budgets.CreateWithItems(ctx, b, items); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithItems, error) {
	return s.budgets.GetWithItems(ctx, id)
}

func (s *Service) List(ctx context.Context, q string, day *time.Time, limit, offset int) ([]*Budget, int, error) {
	return s.budgets.List(ctx, q, day, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.budgets.Delete(ctx, id)
}

// Render produces the budget PDF and its attachment filename.
func (s *Service) Render(ctx context.Context, id uuid.UUID) (string, *bytes.Buffer, error) {
	bw, err := s.budgets.GetWithItems(ctx, id)
	if err != nil {
		return "", nil, err
	}
	doc := s.document(ctx, bw)
	buf, err := render.BudgetPDF(doc)
	if err != nil {
		return "", nil, err
	}
	return render.AttachmentFilename(doc.Paciente), buf, nil
}

// SendEmail renders the budget and delivers it to the stored address.
// A budget without an email fails with ErrNoEmail before anything is sent;
// transport failures are returned without touching sent_at. On success the
// delivery timestamp is recorded and returned.
func (s *Service) SendEmail(ctx context.Context, id uuid.UUID) (time.Time, error) {
	bw, err := s.budgets.GetWithItems(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	if bw.Email == nil || *bw.Email == "" {
		return time.Time{}, ErrNoEmail
	}

	doc := s.document(ctx, bw)
	buf, err := render.BudgetPDF(doc)
	if err != nil {
		return time.Time{}, fmt.Errorf("render presupuesto %s: %w", id, err)
	}

	msg := mail.Message{
		To:      *bw.Email,
		Subject: "Presupuesto de Análisis Clínicos",
		Body:    s.emailBody(doc),
		Attachments: []mail.Attachment{
			{Filename: render.AttachmentFilename(doc.Paciente), Content: buf.Bytes()},
		},
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return time.Time{}, fmt.Errorf("enviar presupuesto %s: %w", id, err)
	}

	sentAt := s.now().UTC()
	if err := s.budgets.MarkSent(ctx, id, sentAt); err != nil {
		return time.Time{}, err
	}
	return sentAt, nil
}

func (s *Service) document(ctx context.Context, bw *WithItems) render.BudgetDocument {
	doc := render.BudgetDocument{
		Paciente:     strVal(bw.Paciente),
		Telefono:     strVal(bw.Telefono),
		Email:        strVal(bw.Email),
		PlanNombre:   strVal(bw.PlanNombre),
		IssuedAt:     s.now(),
		Total:        bw.Total,
		ValidityDays: s.validityDays,
	}
	for _, it := range bw.Items {
		doc.Lines = append(doc.Lines, render.Line{Nombre: it.Nombre, Valor: it.Valor})
	}
	// Letterhead is best effort: the document still renders without a profile
	if lab, err := s.labs.GetProfile(ctx); err == nil {
		doc.Lab = render.Laboratory{
			Nombre:       lab.Nombre,
			Email:        strVal(lab.Email),
			Direccion:    strVal(lab.Direccion),
			CodigoPostal: strVal(lab.CodigoPostal),
			Ciudad:       strVal(lab.Ciudad),
			Provincia:    strVal(lab.Provincia),
			Pais:         strVal(lab.Pais),
			Telefono:     strVal(lab.Telefono),
			SitioWeb:     strVal(lab.SitioWeb),
			Logo:         strVal(lab.Logo),
		}
	}
	return doc
}

func (s *Service) emailBody(doc render.BudgetDocument) string {
	saludo := "Estimado/a"
	if doc.Paciente != "" {
		saludo += " " + doc.Paciente
	}
	body := saludo + ":\n\n" +
		"Adjunto encontrará el presupuesto solicitado.\n"
	if s.validityDays > 0 {
		body += fmt.Sprintf("El mismo tiene una validez de %d días a partir de la fecha de emisión.\n", s.validityDays)
	}
	if doc.Lab.Nombre != "" {
		body += "\n" + doc.Lab.Nombre
	}
	return body
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
// storage or dependency failure.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

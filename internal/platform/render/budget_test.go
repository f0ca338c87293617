package render

import (
	"bytes"
	"testing"
	"time"
)

func fixtureDocument() BudgetDocument {
	return BudgetDocument{
		Lab: Laboratory{
			Nombre:    "Laboratorio Central",
			Email:     "info@labcentral.com.ar",
			Direccion: "Av. Rivadavia 1234",
			Ciudad:    "Buenos Aires",
			Provincia: "CABA",
			Pais:      "Argentina",
			Telefono:  "011-4444-5555",
		},
		Paciente:   "Juan Pérez",
		Telefono:   "011-6666-7777",
		Email:      "juan@example.com",
		PlanNombre: "OSDE",
		IssuedAt:   time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		Lines: []Line{
			{Nombre: "Acto Bioquímico", Valor: 3000},
			{Nombre: "Glucemia", Valor: 2000},
		},
		Total:        5000,
		ValidityDays: 30,
	}
}

func TestBudgetPDF_ProducesDocument(t *testing.T) {
	buf, err := BudgetPDF(fixtureDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty PDF output")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
}

func TestBudgetPDF_DeterministicForEqualInput(t *testing.T) {
	doc := fixtureDocument()
	a, err := BudgetPDF(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := BudgetPDF(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() != b.Len() {
		t.Errorf("expected stable output length, got %d and %d", a.Len(), b.Len())
	}
}

func TestBudgetPDF_SkipsBrokenLogo(t *testing.T) {
	doc := fixtureDocument()
	doc.Lab.Logo = "data:image/png;base64,not-base64!!"
	if _, err := BudgetPDF(doc); err != nil {
		t.Fatalf("broken logo should be skipped, got %v", err)
	}

	doc.Lab.Logo = "plain-string-not-a-data-url"
	if _, err := BudgetPDF(doc); err != nil {
		t.Fatalf("non data-url logo should be skipped, got %v", err)
	}
}

func TestAttachmentFilename(t *testing.T) {
	tests := []struct {
		paciente string
		want     string
	}{
		{"Juan Pérez", "Presupuesto_Juan_Pérez.pdf"},
		{"", "Presupuesto_Paciente.pdf"},
		{"  ", "Presupuesto_Paciente.pdf"},
		{"Ana", "Presupuesto_Ana.pdf"},
	}
	for _, tt := range tests {
		if got := AttachmentFilename(tt.paciente); got != tt.want {
			t.Errorf("AttachmentFilename(%q) = %q, want %q", tt.paciente, got, tt.want)
		}
	}
}

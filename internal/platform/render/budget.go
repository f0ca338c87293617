// Package render turns a budget with its priced lines into a fixed-layout
// PDF document, used both for downloads and as the email attachment.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Laboratory is the issuing lab's letterhead data.
type Laboratory struct {
	Nombre       string
	Email        string
	Direccion    string
	CodigoPostal string
	Ciudad       string
	Provincia    string
	Pais         string
	Telefono     string
	SitioWeb     string
	// Logo is a data URL (data:image/png;base64,...) or empty.
	Logo string
}

// Line is one priced study row.
type Line struct {
	Nombre string
	Valor  float64
}

// BudgetDocument is the full input of the renderer. Given equal input it
// produces the same layout; only IssuedAt varies between generations.
type BudgetDocument struct {
	Lab          Laboratory
	Paciente     string
	Telefono     string
	Email        string
	PlanNombre   string
	IssuedAt     time.Time
	Lines        []Line
	Total        float64
	ValidityDays int
}

// AttachmentFilename builds the download/attachment name for a budget,
// replacing spaces in the patient name with underscores.
func AttachmentFilename(paciente string) string {
	name := strings.TrimSpace(paciente)
	if name == "" {
		name = "Paciente"
	}
	return fmt.Sprintf("Presupuesto_%s.pdf", strings.ReplaceAll(name, " ", "_"))
}

// BudgetPDF renders the document into an in-memory PDF.
func BudgetPDF(doc BudgetDocument) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	drawLogo(pdf, doc.Lab.Logo)

	// Letterhead: lab identity on the left, contact block on the right
	pdf.SetXY(15, 14)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(110, 7, tr(doc.Lab.Nombre))
	pdf.SetFont("Arial", "", 9)
	contact := labContactLines(doc.Lab)
	y := 14.0
	for _, line := range contact {
		pdf.SetXY(125, y)
		pdf.CellFormat(70, 4.5, tr(line), "", 0, "R", false, 0, "")
		y += 4.5
	}

	// Title and emission date
	pdf.SetY(46)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(180, 10, "PRESUPUESTO", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(180, 6, tr(fmt.Sprintf("Fecha de emisión: %s", doc.IssuedAt.Format("02/01/2006"))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Patient and contact grid, two columns
	plan := doc.PlanNombre
	if plan == "" {
		plan = "Personalizada"
	}
	grid := [][2]string{
		{"Paciente", orDash(doc.Paciente)},
		{"Teléfono", orDash(doc.Telefono)},
		{"Email", orDash(doc.Email)},
		{"Lista", plan},
	}
	pdf.SetFillColor(245, 245, 245)
	for i := 0; i < len(grid); i += 2 {
		for j := 0; j < 2 && i+j < len(grid); j++ {
			cell := grid[i+j]
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(20, 7, tr(cell[0]), "1", 0, "L", true, 0, "")
			pdf.SetFont("Arial", "", 9)
			pdf.CellFormat(70, 7, tr(cell[1]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	// Line items
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(140, 8, "Estudio", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Precio", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(180, 7, tr("Análisis Clínico"), "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, line := range doc.Lines {
		pdf.CellFormat(140, 7, tr(line.Nombre), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, FormatARS(line.Valor), "1", 1, "R", false, 0, "")
	}

	// Total
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(140, 9, "TOTAL", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 9, FormatARS(doc.Total), "1", 1, "R", true, 0, "")

	// Validity footer
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(90, 90, 90)
	days := doc.ValidityDays
	if days <= 0 {
		days = 30
	}
	pdf.MultiCell(180, 4.5, tr(fmt.Sprintf(
		"Presupuesto válido por %d días a partir de la fecha de emisión. "+
			"Los valores pueden sufrir modificaciones sin previo aviso.", days)), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render budget pdf: %w", err)
	}
	return &buf, nil
}

func labContactLines(lab Laboratory) []string {
	var lines []string
	if lab.Direccion != "" {
		addr := lab.Direccion
		if lab.CodigoPostal != "" {
			addr += " (" + lab.CodigoPostal + ")"
		}
		lines = append(lines, addr)
	}
	if loc := joinNonEmpty(", ", lab.Ciudad, lab.Provincia, lab.Pais); loc != "" {
		lines = append(lines, loc)
	}
	if lab.Telefono != "" {
		lines = append(lines, "Tel: "+lab.Telefono)
	}
	if lab.Email != "" {
		lines = append(lines, lab.Email)
	}
	if lab.SitioWeb != "" {
		lines = append(lines, lab.SitioWeb)
	}
	return lines
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// drawLogo decodes a data-URL logo and places it top-left. Undecodable or
// unsupported logos are skipped; the document renders without them.
func drawLogo(pdf *gofpdf.Fpdf, dataURL string) {
	imgType, raw, ok := decodeDataURL(dataURL)
	if !ok {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: true}
	pdf.RegisterImageOptionsReader("lab-logo", opts, bytes.NewReader(raw))
	if pdf.Err() {
		// Reset so a broken logo does not poison the whole document
		pdf.ClearError()
		return
	}
	pdf.ImageOptions("lab-logo", 15, 10, 30, 0, false, opts, 0, "")
}

func decodeDataURL(dataURL string) (imgType string, raw []byte, ok bool) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return "", nil, false
	}
	rest := strings.TrimPrefix(dataURL, "data:image/")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", nil, false
	}
	imgType = strings.ToUpper(rest[:sep])
	if imgType != "PNG" && imgType != "JPG" && imgType != "JPEG" {
		return "", nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return "", nil, false
	}
	return imgType, raw, true
}

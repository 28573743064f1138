package infra

// pdf.go: audit report of one day's reconciliation using go-pdf/fpdf.
// Landscape A4 with:
//   - Title and date
//   - One row per point of sale, one column per reconciliation field
//   - Severity mark next to the variance percentage
//   - Bold totals row
//   - Comments block

import (
	"bytes"
	"fmt"
	"time"

	"mata/internal/reconciliation"

	"github.com/go-pdf/fpdf"
)

var severityFill = map[reconciliation.Severity][3]int{
	reconciliation.SeverityHigh:   {244, 199, 195},
	reconciliation.SeverityMedium: {255, 242, 204},
	reconciliation.SeverityLow:    {217, 234, 211},
}

// GenerateReconciliationPDF renders the session as a PDF document. points sets
// the row order; points of sale absent from it follow alphabetically.
func GenerateReconciliationPDF(s *reconciliation.Session, points []string, generatedAt time.Time) ([]byte, error) {
	if s == nil || !s.Ready() {
		return nil, reconciliation.ErrSessionNotReady
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(8, 8, 8)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 16

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr("Réconciliation du "+reconciliation.DisplayDate(s.Date)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Source: %s  |  Version: %d  |  Généré le %s",
		s.State, s.Version, generatedAt.Format("02/01/2006 15:04"))), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Table header ─────────────────────────────────────────────────────────
	firstCol := contentW * 0.16
	colW := (contentW - firstCol) / float64(len(reconciliation.Fields))

	pdf.SetFont("Helvetica", "B", 7)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(firstCol, 6, tr("Point de vente"), "1", 0, "L", true, 0, "")
	for _, f := range reconciliation.Fields {
		pdf.CellFormat(colW, 6, tr(f.Label()), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	// ── Rows ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	for _, pdv := range s.Points(points) {
		writeRow(pdf, tr, pdv, s.Entries[pdv], firstCol, colW)
	}

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 7)
	writeRow(pdf, tr, "Total", s.Totals(), firstCol, colW)

	// ── Comments ─────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 6, "Commentaires", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	wrote := false
	for _, pdv := range s.Points(points) {
		text := s.Entries[pdv].Commentaire
		if text == "" {
			continue
		}
		pdf.MultiCell(contentW, 4, tr(pdv+": "+text), "", "L", false)
		wrote = true
	}
	if !wrote {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 4, "Aucun commentaire", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render report: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(pdf *fpdf.Fpdf, tr func(string) string, label string, e reconciliation.Entry, firstCol, colW float64) {
	pdf.CellFormat(firstCol, 5, tr(label), "1", 0, "L", false, 0, "")
	sev := e.Severity()
	for _, f := range reconciliation.Fields {
		fill := false
		if f == reconciliation.FieldEcartPct {
			if rgb, ok := severityFill[sev]; ok {
				pdf.SetFillColor(rgb[0], rgb[1], rgb[2])
				fill = true
			}
		}
		pdf.CellFormat(colW, 5, tr(f.Format(f.Value(e))), "1", 0, "R", fill, 0, "")
	}
	pdf.Ln(-1)
}

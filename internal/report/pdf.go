package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/balkashynov/whm/internal/models"
)

// column widths in mm on landscape A4 (277mm printable)
var pdfWidths = []float64{42, 105, 45, 25, 25, 35}

// WritePDF renders the session table as a landscape A4 report
func WritePDF(w io.Writer, sessions []models.Session) error {
	rows := Project(sessions)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Work hours", true)
	pdf.SetCreator("whm", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(124, 58, 237) // accent purple
		pdf.SetTextColor(255, 255, 255)
		for i, h := range Headers {
			pdf.CellFormat(pdfWidths[i], 8, h, "1", 0, pdfAlign(i), true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, "Work hours", "", 1, "L", false, 0, "")
		header()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	for n, r := range rows {
		fill := n%2 == 1
		pdf.SetFillColor(240, 238, 248)
		for i, cell := range r.Cells() {
			text := fitText(pdf, tr(cell), pdfWidths[i]-2)
			pdf.CellFormat(pdfWidths[i], 7, text, "1", 0, pdfAlign(i), fill, 0, "")
		}
		pdf.Ln(-1)
	}

	hours, subtotal := Totals(rows)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(pdfWidths[0]+pdfWidths[1]+pdfWidths[2], 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(pdfWidths[3], 8, formatAmount(hours), "1", 0, "R", false, 0, "")
	pdf.CellFormat(pdfWidths[4], 8, "", "1", 0, "R", false, 0, "")
	pdf.CellFormat(pdfWidths[5], 8, formatAmount(subtotal), "1", 1, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func pdfAlign(col int) string {
	if rightAlign[col] {
		return "R"
	}
	return "L"
}

// fitText shortens s with an ellipsis until it fits width. s must already be in
// the font encoding (cp1252), one byte per glyph, as GetStringWidth measures bytes.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	b := []byte(s)
	for len(b) > 0 && pdf.GetStringWidth(string(b)+"...") > width {
		b = b[:len(b)-1]
	}
	return string(b) + "..."
}

package report

import (
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
)

func TestFitText_MeasuresEncodedText(t *testing.T) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	encoded := tr(strings.Repeat("é", 200))
	assert.Len(t, encoded, 200, "cp1252 uses one byte per glyph")

	got := fitText(pdf, encoded, 40)
	assert.LessOrEqual(t, pdf.GetStringWidth(got), 40.0)
	assert.True(t, strings.HasSuffix(got, "..."))

	body := strings.TrimSuffix(got, "...")
	assert.NotEmpty(t, body)
	assert.Equal(t, strings.Repeat("\xe9", len(body)), body, "cut on glyph boundaries")
}

func TestFitText_ShortTextUnchanged(t *testing.T) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 9)

	assert.Equal(t, "Standup", fitText(pdf, "Standup", 40))
}

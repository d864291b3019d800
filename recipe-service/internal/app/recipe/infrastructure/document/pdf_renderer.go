package document

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"recipehub/recipe-service/internal/app/recipe/entity"
)

const (
	maxTitleRunes = 80
	maxLineRunes  = 100
)

// PDFRenderer lays out a recipe on A4 pages with the core Helvetica font.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) RenderRecipe(recipe *entity.Recipe) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetMargins(18, 18, 18)
	// core fonts are cp1252, this keeps umlauts intact
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := truncate(recipe.Title, maxTitleRunes)
	if title == "" {
		title = "Untitled"
	}
	pdf.SetTitle(title, true)
	pdf.SetAuthor(recipe.Author, true)
	pdf.SetCreator("recipehub", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 9, tr(title), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	details := []string{
		"Category: " + orDash(recipe.Category),
		"Cuisine: " + orDash(recipe.Cuisine),
		fmt.Sprintf("Time: %d min", recipe.TotalTimeMin),
	}
	for _, line := range details {
		pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Ingredients", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range recipe.Ingredients {
		pdf.MultiCell(0, 5.5, tr("- "+truncate(item, maxLineRunes)), "", "L", false)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Preparation", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for i, step := range recipe.Steps {
		pdf.MultiCell(0, 5.5, tr(fmt.Sprintf("%d. %s", i+1, truncate(step, maxLineRunes))), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

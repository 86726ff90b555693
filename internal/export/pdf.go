// Package export renders recipes into downloadable documents.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"larder/internal/models"
	"larder/internal/observability"

	"github.com/phpdave11/gofpdf"
)

// RecipePDF renders a recipe as a single-document PDF: title, author and
// timing line, ingredients, then numbered instructions. Step images are
// referenced by URL rather than embedded; the document stays text-only so it
// renders without touching storage.
func RecipePDF(r *models.Recipe) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 10, r.Title, "", "L", false)

	meta := metaLine(r)
	if meta != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(110, 110, 110)
		pdf.MultiCell(0, 5, meta, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(2)

	if desc := r.DescriptionText(); desc != "" {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 6, desc, "", "L", false)
		pdf.Ln(2)
	}

	if len(r.Tags) > 0 {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(110, 110, 110)
		pdf.MultiCell(0, 5, strings.Join(r.Tags, " · "), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	if len(r.Ingredients) > 0 {
		sectionHeading(pdf, "Ingredients")
		pdf.SetFont("Helvetica", "", 11)
		for _, ing := range r.Ingredients {
			pdf.MultiCell(0, 6, "- "+ing, "", "L", false)
		}
		pdf.Ln(2)
	}

	steps := r.EffectiveSteps()
	if len(steps) > 0 {
		sectionHeading(pdf, "Instructions")
		for i, step := range steps {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(10, 6, fmt.Sprintf("%d.", i+1), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, step.Text, "", "L", false)
			if step.ImageURL != nil {
				pdf.SetFont("Helvetica", "I", 8)
				pdf.SetTextColor(110, 110, 110)
				pdf.CellFormat(10, 4, "", "", 0, "L", false, 0, "")
				pdf.MultiCell(0, 4, "Photo: "+*step.ImageURL, "", "L", false)
				pdf.SetTextColor(0, 0, 0)
			}
			pdf.Ln(1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render recipe PDF: %w", err)
	}

	observability.PDFExports.Inc()
	return buf.Bytes(), nil
}

// Filename builds a safe download filename from the recipe title.
func Filename(r *models.Recipe) string {
	slug := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			return c
		case c >= 'A' && c <= 'Z':
			return c + ('a' - 'A')
		case c == ' ' || c == '-' || c == '_':
			return '-'
		default:
			return -1
		}
	}, r.Title)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = fmt.Sprintf("recipe-%d", r.ID)
	}
	return slug + ".pdf"
}

func metaLine(r *models.Recipe) string {
	var parts []string
	if r.AuthorName != "" {
		parts = append(parts, "By "+r.AuthorName)
	} else if r.User.Username != "" {
		parts = append(parts, "By "+r.User.Username)
	}
	if r.PrepTime > 0 {
		parts = append(parts, fmt.Sprintf("Prep %d min", r.PrepTime))
	}
	if r.CookTime > 0 {
		parts = append(parts, fmt.Sprintf("Cook %d min", r.CookTime))
	}
	if r.Servings > 0 {
		parts = append(parts, fmt.Sprintf("Serves %d", r.Servings))
	}
	return strings.Join(parts, "  |  ")
}

func sectionHeading(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, title, "", "L", false)
}

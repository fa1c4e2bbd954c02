// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Renderer draws laid-out pages into a PDF document.
type Renderer interface {
	Render(title string, pages []Page) ([]byte, error)
}

// FPDFRenderer renders pages with one of the PDF core fonts. Text outside
// the cp1252 range is substituted by the font's translator.
type FPDFRenderer struct {
	// FontFamily defaults to Helvetica.
	FontFamily string
}

// Render writes each page as a Letter page with black text.
func (r FPDFRenderer) Render(title string, pages []Page) ([]byte, error) {
	family := r.FontFamily
	if family == "" {
		family = "Helvetica"
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: PageWidth, Ht: PageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetCreator("pagecraft", true)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, p := range pages {
		pdf.AddPage()
		pdf.SetTextColor(0, 0, 0)
		for _, l := range p.Lines {
			style := ""
			if l.Bold {
				style = "B"
			}
			pdf.SetFont(family, style, l.Size)
			pdf.Text(l.X, l.Y, tr(l.Text))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering %d page(s): %w", len(pages), err)
	}
	return buf.Bytes(), nil
}

package pdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"

	"abcstore/internal/domain/service"
	"abcstore/pkg/logger"
)

// PathResolver maps a stored asset URL onto a readable file path.
type PathResolver interface {
	FilePath(url string) (string, bool)
}

// Generator renders a product catalog PDF: one section per product with a
// header line, the description and every stored image scaled to the
// content width. Unreadable images are skipped, never failing the export.
type Generator struct {
	paths PathResolver
}

func NewGenerator(paths PathResolver) *Generator {
	return &Generator{paths: paths}
}

func (g *Generator) ProductCatalog(products []service.ExportProduct) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetAutoPageBreak(true, 10)

	pageW, pageH := doc.GetPageSize()
	const margin = 10.0
	contentW := pageW - margin*2

	for _, product := range products {
		doc.AddPage()

		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(contentW, 8, tr(product.Name), "", 1, "L", false, 0, "")

		doc.SetFont("Helvetica", "", 10)
		meta := fmt.Sprintf("$%.2f  |  %s", product.Price, product.Category)
		if product.UploaderName != "" {
			meta += fmt.Sprintf("  |  uploaded by %s (%s)", product.UploaderName, product.UploaderEmail)
		}
		doc.CellFormat(contentW, 6, tr(meta), "", 1, "L", false, 0, "")

		if product.Description != "" {
			doc.MultiCell(contentW, 5, tr(product.Description), "", "L", false)
		}
		doc.Ln(4)

		for _, img := range product.Images {
			path, ok := g.paths.FilePath(img.URL)
			if !ok {
				continue
			}
			if _, err := os.Stat(path); err != nil {
				logger.Warn("Skipping missing image in PDF export: %s", img.URL)
				continue
			}

			info := doc.RegisterImageOptions(path, gofpdf.ImageOptions{})
			if doc.Err() {
				logger.Warn("Skipping unreadable image in PDF export: %s", img.URL)
				doc.ClearError()
				continue
			}

			w, h := info.Extent()
			if w > contentW {
				ratio := contentW / w
				w = contentW
				h *= ratio
			}
			maxH := pageH - margin*2
			if h > maxH {
				ratio := maxH / h
				h = maxH
				w *= ratio
			}

			if doc.GetY()+h > pageH-margin {
				doc.AddPage()
			}
			x := margin + (contentW-w)/2
			doc.ImageOptions(path, x, doc.GetY(), w, h, false, gofpdf.ImageOptions{}, 0, "")
			doc.SetY(doc.GetY() + h + 4)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

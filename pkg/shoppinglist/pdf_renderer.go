package shoppinglist

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"foodgram-backend/domain"
)

const (
	pdfTitle = "Shopping list of recipes"
	pdfSign  = "Foodgram"
)

type (
	// PDFRenderer turns an aggregated shopping list into a downloadable PDF.
	PDFRenderer interface {
		Render(items []domain.ShoppingListItem) ([]byte, error)
	}

	pdfRenderer struct{}
)

func NewPDFRenderer() PDFRenderer {
	return &pdfRenderer{}
}

func (p *pdfRenderer) Render(items []domain.ShoppingListItem) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(pdfTitle, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, time.Now().Format("02/01/06"), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, pdfSign, "", 1, "R", false, 0, "")

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, pdfTitle, "", 1, "C", false, 0, "")
	pdf.SetLineWidth(0.4)
	pdf.Line(10, pdf.GetY()+2, 200, pdf.GetY()+2)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 14)
	for _, item := range items {
		line := fmt.Sprintf("%s - %d %s.", item.Name, item.Amount, item.MeasurementUnit)
		pdf.CellFormat(0, 9, line, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

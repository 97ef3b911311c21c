// Package sampledoc renders demo "scanned" sales-order PDFs so the upload
// and review flow can be exercised without real customer documents.
package sampledoc

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// OrderLine is one requested product row on the generated document
type OrderLine struct {
	Description string
	Quantity    int
}

// OrderDoc describes the document to render
type OrderDoc struct {
	Filename string // stamped on the page and encoded in the QR
	Customer string
	Lines    []OrderLine
}

// Generate renders the sales-order PDF and returns its bytes.
func Generate(doc OrderDoc) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(120, 12, "PURCHASE ORDER")

	// QR stamp in the top-right corner carrying the document name, the way
	// scanned intake documents are tagged
	qrPng, err := qrcode.Encode(doc.Filename, qrcode.Low, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPng))
	pdf.ImageOptions("qr", 160, 15, 25, 25, false, opts, 0, "")

	pdf.Ln(18)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(100, 8, "Customer: "+doc.Customer)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Document: "+doc.Filename)
	pdf.Ln(14)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(140, 8, "Request Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, line := range doc.Lines {
		pdf.CellFormat(140, 8, line.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, strconv.Itoa(line.Quantity), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

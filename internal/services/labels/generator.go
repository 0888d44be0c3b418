package labels

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/livrex-com/livrexgo/internal/models"
)

// A6 label, landscape
const (
	pageWidth  = 148.0
	pageHeight = 105.0
	margin     = 6.0
)

// GenerateDeliveryLabel renders a printable PDF label for one
// delivery order: scannable QR of the order number, customer block,
// and the scheduled slot. Works for temporary orders too; the label
// then carries the provisional number.
func GenerateDeliveryLabel(c *models.Commande) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("no commande to print")
	}

	pdf := gofpdf.New("L", "mm", "A6", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Header: order number
	pdf.SetFont("Arial", "B", 16)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(pageWidth-2*margin, 8, c.NumeroCommande, "", 0, "L", false, 0, "")

	if c.IsTemporary() {
		pdf.SetFont("Arial", "I", 8)
		pdf.SetXY(margin, margin+8)
		pdf.CellFormat(pageWidth-2*margin, 4, "Commande en attente de synchronisation", "", 0, "L", false, 0, "")
	}

	// QR code, right-hand side
	qrPng, err := qrcode.Encode(c.NumeroCommande, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR: %w", err)
	}

	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr", imgOptions, bytes.NewReader(qrPng))

	qrSize := 42.0
	pdf.ImageOptions("qr", pageWidth-margin-qrSize, margin+14, qrSize, qrSize, false, imgOptions, 0, "")

	// Customer block, left-hand side
	textWidth := pageWidth - 3*margin - qrSize
	y := margin + 18.0

	pdf.SetFont("Arial", "B", 11)
	pdf.SetXY(margin, y)
	pdf.CellFormat(textWidth, 6, c.ClientNom, "", 0, "L", false, 0, "")
	y += 7

	pdf.SetFont("Arial", "", 10)
	if c.ClientTelephone != "" {
		pdf.SetXY(margin, y)
		pdf.CellFormat(textWidth, 5, c.ClientTelephone, "", 0, "L", false, 0, "")
		y += 6
	}
	if c.ClientAdresse != "" {
		pdf.SetXY(margin, y)
		pdf.MultiCell(textWidth, 5, c.ClientAdresse, "", "L", false)
		y = pdf.GetY() + 1
	}

	// Scheduling footer
	pdf.SetFont("Arial", "B", 10)
	pdf.SetXY(margin, pageHeight-margin-12)
	schedule := c.DateLivraison
	if c.CreneauLivraison != "" {
		schedule += "  " + c.CreneauLivraison
	}
	pdf.CellFormat(pageWidth-2*margin, 5, "Livraison: "+schedule, "", 0, "L", false, 0, "")

	if c.Montant > 0 {
		pdf.SetXY(margin, pageHeight-margin-6)
		pdf.CellFormat(pageWidth-2*margin, 5, fmt.Sprintf("Montant: %.2f EUR", c.Montant), "", 0, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render label: %w", err)
	}
	return buf.Bytes(), nil
}

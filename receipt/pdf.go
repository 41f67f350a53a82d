// Package receipt renders printable payment receipts.
package receipt

import (
	"fmt"
	"io"
	"time"

	"formatrack_backend/models"

	"github.com/phpdave11/gofpdf"
)

// Data is everything a receipt shows: the payment and the client's current balance.
type Data struct {
	Payment models.PaymentRow
	Client  models.Client
}

type Renderer interface {
	Render(w io.Writer, d Data) error
	ContentType() string
}

// PDFRenderer lays out an A4 receipt.
type PDFRenderer struct {
	center   string
	location *time.Location
}

func NewPDFRenderer(center string, location *time.Location) *PDFRenderer {
	if location == nil {
		location = time.Local
	}
	return &PDFRenderer{center: center, location: location}
}

func (r *PDFRenderer) ContentType() string { return "application/pdf" }

func (r *PDFRenderer) Render(w io.Writer, d Data) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Reçu "+Number(d.Payment.ID), true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	line := func(size float64, style, text, align string, height float64) {
		pdf.SetFont("Helvetica", style, size)
		pdf.CellFormat(0, height, tr(text), "", 1, align, false, 0, "")
	}

	pdf.SetY(20)
	line(20, "B", "REÇU DE PAIEMENT", "C", 12)
	line(12, "", r.center, "C", 10)
	pdf.Ln(10)

	line(14, "", "Reçu N°: "+Number(d.Payment.ID), "L", 9)
	line(14, "", "Date: "+d.Payment.DatePaiement.In(r.location).Format("02/01/2006"), "L", 9)
	pdf.Ln(8)

	line(14, "B", "INFORMATIONS CLIENT", "L", 10)
	line(12, "", fmt.Sprintf("Nom: %s %s", d.Client.Nom, d.Client.Prenom), "L", 8)
	line(12, "", "Téléphone: "+d.Client.TelephoneParent, "L", 8)
	line(12, "", "Type: "+d.Client.TypeFormation, "L", 8)
	pdf.Ln(8)

	line(14, "B", "DÉTAILS DU PAIEMENT", "L", 10)
	line(12, "", "Montant versé: "+FormatCurrency(d.Payment.Montant), "L", 8)
	line(12, "", "Prix total formation: "+FormatCurrency(d.Client.PrixFormation), "L", 8)
	line(12, "", "Total versé: "+FormatCurrency(d.Client.MontantVerse), "L", 8)
	line(12, "", "Montant restant: "+FormatCurrency(d.Client.MontantRestant), "L", 8)
	pdf.Ln(20)

	receivedBy := "-"
	if d.Payment.Username != nil {
		receivedBy = *d.Payment.Username
	}
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(95, 8, tr("Signature:"), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, tr("Reçu par: "+receivedBy), "", 1, "L", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("layout receipt: %w", err)
	}
	return pdf.Output(w)
}

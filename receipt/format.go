package receipt

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	frPrinter = message.NewPrinter(language.French)
	// French grouping uses (narrow) no-break spaces; the PDF core fonts only carry a plain space.
	spaceNormalizer = strings.NewReplacer("\u202f", " ", "\u00a0", " ")
)

// FormatCurrency renders an amount the way the center prints it: "1 250 000 FCFA".
func FormatCurrency(amount int64) string {
	return spaceNormalizer.Replace(frPrinter.Sprintf("%d", amount)) + " FCFA"
}

// Number is the six-digit receipt number of a payment.
func Number(paymentID int) string {
	return fmt.Sprintf("%06d", paymentID)
}

// Filename is the suggested download name of a receipt.
func Filename(d Data) string {
	name := fmt.Sprintf("recu_%s_%s_%d.pdf", d.Client.Nom, d.Client.Prenom, d.Payment.ID)
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '/', '\\', ' ', '\r', '\n':
			return '_'
		}
		return r
	}, name)
}

package rules

import "formatrack_backend/apperr"

// ValidatePayment checks a payment amount against the client's remaining balance.
func ValidatePayment(montant, restant int64) error {
	if montant <= 0 {
		return apperr.Validation("Le montant doit être supérieur à 0")
	}
	if montant > restant {
		return apperr.Validation("Le montant ne peut pas être supérieur au montant restant")
	}
	return nil
}

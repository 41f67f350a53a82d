package models

import "time"

type CreatePaymentRequest struct {
	ClientID int   `json:"client_id" binding:"required"`
	Montant  int64 `json:"montant"`
}

type Payment struct {
	ID            int       `json:"id"`
	ClientID      int       `json:"client_id"`
	Montant       int64     `json:"montant"`
	DatePaiement  time.Time `json:"date_paiement"`
	UtilisateurID *int      `json:"utilisateur_id"`
}

// PaymentRow is a payment joined with the client's name and the actor's username.
// Username is nil once the recording user has been deleted.
type PaymentRow struct {
	Payment
	Nom      string  `json:"nom,omitempty"`
	Prenom   string  `json:"prenom,omitempty"`
	Username *string `json:"username"`
}

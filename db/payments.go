package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"formatrack_backend/models"
	"formatrack_backend/store"
)

// paymentActorFK is violated when the token's user was deleted after it was issued.
const paymentActorFK = "paiements_utilisateur_id_fkey"

const paymentColumns = `
	p.id, p.client_id, p.montant, p.date_paiement, p.utilisateur_id, c.nom, c.prenom, u.username`

// The actor join is LEFT: utilisateur_id is nulled when the user is deleted.
const paymentFrom = `
	FROM paiements p
	JOIN clients c ON c.id = p.client_id
	LEFT JOIN users u ON u.id = p.utilisateur_id`

func scanPayment(row rowScanner) (models.PaymentRow, error) {
	var p models.PaymentRow
	var userID sql.NullInt64
	var username sql.NullString
	err := row.Scan(&p.ID, &p.ClientID, &p.Montant, &p.DatePaiement, &userID, &p.Nom, &p.Prenom, &username)
	if userID.Valid {
		id := int(userID.Int64)
		p.UtilisateurID = &id
	}
	p.Username = nullString(username)
	return p, err
}

func scanPayments(rows *sql.Rows) ([]models.PaymentRow, error) {
	defer rows.Close()
	payments := []models.PaymentRow{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func getPayment(ctx context.Context, q querier, id int) (models.PaymentRow, error) {
	p, err := scanPayment(q.QueryRowContext(ctx, `SELECT `+paymentColumns+paymentFrom+` WHERE p.id = $1`, id))
	return p, mapError(err)
}

func (s *Store) ListPayments(ctx context.Context) ([]models.PaymentRow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT `+paymentColumns+paymentFrom+` ORDER BY p.date_paiement DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error fetching payments: %w", err)
	}
	return scanPayments(rows)
}

func (s *Store) GetPayment(ctx context.Context, id int) (models.PaymentRow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return getPayment(ctx, s.db, id)
}

// RecordPayment inserts the payment then increments montant_verse in the same
// transaction. The increment is a single conditional UPDATE so concurrent payments
// for one client cannot lose updates or overdraw the remaining balance.
func (s *Store) RecordPayment(ctx context.Context, clientID int, montant int64, userID int, at time.Time) (models.PaymentRow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var payment models.PaymentRow
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var id int
		err := tx.QueryRowContext(ctx, `
			INSERT INTO paiements (client_id, montant, date_paiement, utilisateur_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, clientID, montant, at, userID).Scan(&id)
		if constraintOf(err) == paymentActorFK {
			return store.ErrActorNotFound
		} else if err != nil {
			return mapError(err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE clients
			SET montant_verse = montant_verse + $1
			WHERE id = $2 AND montant_restant >= $1
		`, montant, clientID)
		if err != nil {
			return fmt.Errorf("error updating client balance: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrInsufficientBalance
		}

		payment, err = getPayment(ctx, tx, id)
		return err
	})
	return payment, err
}

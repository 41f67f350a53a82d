package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"formatrack_backend/models"
)

const clientColumns = `
	c.id, c.nom, c.prenom, c.localite, c.telephone_parent, c.niveau_scolaire, c.domaine_etude,
	to_char(c.date_inscription, 'YYYY-MM-DD'), c.duree_formation, c.type_formation,
	c.statut_formation, c.date_statut_modifie, c.prix_formation, c.montant_verse,
	c.montant_restant, c.created_at`

func scanClient(row rowScanner) (models.Client, error) {
	var c models.Client
	var statutModifie sql.NullTime
	err := row.Scan(
		&c.ID, &c.Nom, &c.Prenom, &c.Localite, &c.TelephoneParent, &c.NiveauScolaire, &c.DomaineEtude,
		&c.DateInscription, &c.DureeFormation, &c.TypeFormation,
		&c.StatutFormation, &statutModifie, &c.PrixFormation, &c.MontantVerse,
		&c.MontantRestant, &c.CreatedAt,
	)
	if statutModifie.Valid {
		t := statutModifie.Time
		c.DateStatutModifie = &t
	}
	return c, err
}

func scanClients(rows *sql.Rows) ([]models.Client, error) {
	defer rows.Close()
	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients c ORDER BY c.created_at DESC, c.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error fetching clients: %w", err)
	}
	return scanClients(rows)
}

func (s *Store) GetClient(ctx context.Context, id int) (models.Client, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := scanClient(s.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients c WHERE c.id = $1`, id))
	return c, mapError(err)
}

func (s *Store) CreateClient(ctx context.Context, in models.Client) (models.Client, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO clients AS c (
			nom, prenom, localite, telephone_parent, niveau_scolaire, domaine_etude,
			date_inscription, duree_formation, type_formation, statut_formation,
			prix_formation, montant_verse
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+clientColumns,
		in.Nom, in.Prenom, in.Localite, in.TelephoneParent, in.NiveauScolaire, in.DomaineEtude,
		in.DateInscription, in.DureeFormation, in.TypeFormation, in.StatutFormation,
		in.PrixFormation, in.MontantVerse,
	)
	c, err := scanClient(row)
	return c, mapError(err)
}

// UpdateClient builds its SET list from a fixed column whitelist; only the fields
// present in p are written. montant_restant is a generated column and follows.
func (s *Store) UpdateClient(ctx context.Context, id int, p models.ClientPatch, now time.Time) (models.Client, error) {
	if p.Empty() {
		return s.GetClient(ctx, id)
	}

	var sets []string
	var args []any
	set := func(column string, value any) int {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		return len(args)
	}

	if p.Nom != nil {
		set("nom", *p.Nom)
	}
	if p.Prenom != nil {
		set("prenom", *p.Prenom)
	}
	if p.Localite != nil {
		set("localite", *p.Localite)
	}
	if p.TelephoneParent != nil {
		set("telephone_parent", *p.TelephoneParent)
	}
	if p.NiveauScolaire != nil {
		set("niveau_scolaire", *p.NiveauScolaire)
	}
	if p.DomaineEtude != nil {
		set("domaine_etude", *p.DomaineEtude)
	}
	if p.DateInscription != nil {
		set("date_inscription", *p.DateInscription)
	}
	if p.DureeFormation != nil {
		set("duree_formation", *p.DureeFormation)
	}
	if p.TypeFormation != nil {
		set("type_formation", *p.TypeFormation)
	}
	if p.StatutFormation != nil {
		n := set("statut_formation", *p.StatutFormation)
		args = append(args, now)
		// The right-hand side sees the pre-update row.
		sets = append(sets, fmt.Sprintf(
			"date_statut_modifie = CASE WHEN statut_formation IS DISTINCT FROM $%d THEN $%d ELSE date_statut_modifie END",
			n, len(args)))
	}
	if p.PrixFormation != nil {
		set("prix_formation", *p.PrixFormation)
	}
	if p.MontantVerse != nil {
		set("montant_verse", *p.MontantVerse)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE clients AS c SET %s WHERE c.id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), clientColumns)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := scanClient(s.db.QueryRowContext(ctx, query, args...))
	return c, mapError(err)
}

// DeleteClient cascades to enrollments, attendance, incidents and payments.
func (s *Store) DeleteClient(ctx context.Context, id int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return deleteByID(ctx, s.db, `DELETE FROM clients WHERE id = $1`, id)
}

func (s *Store) ListClientPayments(ctx context.Context, clientID int) ([]models.PaymentRow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := exists(ctx, s.db, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, clientID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+paymentColumns+paymentFrom+`
		WHERE p.client_id = $1
		ORDER BY p.date_paiement DESC, p.id DESC
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("error fetching client payments: %w", err)
	}
	return scanPayments(rows)
}

func (s *Store) ListClientIncidents(ctx context.Context, clientID int) ([]models.IncidentRow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := exists(ctx, s.db, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, clientID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+incidentColumns+incidentFrom+`
		WHERE ar.client_id = $1
		ORDER BY ar.date DESC, ar.id DESC
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("error fetching client incidents: %w", err)
	}
	return scanIncidents(rows)
}

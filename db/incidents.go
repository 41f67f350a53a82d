package db

import (
	"context"
	"database/sql"
	"fmt"

	"formatrack_backend/models"
)

const incidentColumns = `
	ar.id, ar.client_id, ar.cours_id, to_char(ar.date, 'YYYY-MM-DD'),
	to_char(ar.heure_presence, 'HH24:MI'), ar.type, ar.remarque, c.nom, c.prenom, co.intitule`

const incidentFrom = `
	FROM absences_retards ar
	JOIN clients c ON c.id = ar.client_id
	JOIN cours co ON co.id = ar.cours_id`

func scanIncidents(rows *sql.Rows) ([]models.IncidentRow, error) {
	defer rows.Close()
	incidents := []models.IncidentRow{}
	for rows.Next() {
		var inc models.IncidentRow
		var heure, remarque sql.NullString
		err := rows.Scan(&inc.ID, &inc.ClientID, &inc.CoursID, &inc.Date,
			&heure, &inc.Type, &remarque, &inc.Nom, &inc.Prenom, &inc.CoursNom)
		if err != nil {
			return nil, fmt.Errorf("error scanning incident: %w", err)
		}
		inc.HeurePresence = nullString(heure)
		inc.Remarque = nullString(remarque)
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}

func (s *Store) ListIncidents(ctx context.Context) ([]models.IncidentRow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT `+incidentColumns+incidentFrom+` ORDER BY ar.date DESC, ar.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error fetching incidents: %w", err)
	}
	return scanIncidents(rows)
}

// DeleteIncident removes the log entry only; no balance or attendance is touched.
func (s *Store) DeleteIncident(ctx context.Context, id int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return deleteByID(ctx, s.db, `DELETE FROM absences_retards WHERE id = $1`, id)
}

func insertIncident(ctx context.Context, q querier, inc models.Incident) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO absences_retards (client_id, cours_id, date, heure_presence, type, remarque)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, inc.ClientID, inc.CoursID, inc.Date, inc.HeurePresence, inc.Type, inc.Remarque)
	return mapError(err)
}

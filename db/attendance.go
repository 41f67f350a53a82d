package db

import (
	"context"
	"database/sql"
	"fmt"

	"formatrack_backend/models"
)

func (s *Store) ListAttendance(ctx context.Context) ([]models.AttendanceRow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			p.id,
			p.client_id,
			p.cours_id,
			to_char(p.date_presence, 'YYYY-MM-DD'),
			to_char(p.heure_presence, 'HH24:MI'),
			p.etat,
			c.nom,
			c.prenom,
			co.intitule
		FROM presences p
		JOIN clients c ON c.id = p.client_id
		JOIN cours co ON co.id = p.cours_id
		ORDER BY p.date_presence DESC, p.heure_presence DESC NULLS LAST, p.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("error fetching attendance records: %w", err)
	}
	defer rows.Close()

	records := []models.AttendanceRow{}
	for rows.Next() {
		var a models.AttendanceRow
		var heure sql.NullString
		if err := rows.Scan(&a.ID, &a.ClientID, &a.CoursID, &a.DatePresence, &heure, &a.Etat, &a.Nom, &a.Prenom, &a.CoursNom); err != nil {
			return nil, fmt.Errorf("error scanning attendance: %w", err)
		}
		a.HeurePresence = nullString(heure)
		records = append(records, a)
	}
	return records, rows.Err()
}

// RecordAttendance writes the attendance row and its derived incident together.
func (s *Store) RecordAttendance(ctx context.Context, a models.Attendance, inc *models.Incident) (models.Attendance, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var saved models.Attendance
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var heure sql.NullString
		err := tx.QueryRowContext(ctx, `
			INSERT INTO presences (client_id, cours_id, date_presence, heure_presence, etat)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, client_id, cours_id, to_char(date_presence, 'YYYY-MM-DD'), to_char(heure_presence, 'HH24:MI'), etat
		`, a.ClientID, a.CoursID, a.DatePresence, a.HeurePresence, a.Etat).Scan(
			&saved.ID, &saved.ClientID, &saved.CoursID, &saved.DatePresence, &heure, &saved.Etat,
		)
		if err != nil {
			return mapError(err)
		}
		saved.HeurePresence = nullString(heure)

		if inc != nil {
			return insertIncident(ctx, tx, *inc)
		}
		return nil
	})
	return saved, err
}

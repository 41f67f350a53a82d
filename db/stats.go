package db

import (
	"context"
	"fmt"
	"time"

	"formatrack_backend/models"
)

// DashboardStats runs every aggregate in one statement so the figures share a snapshot.
func (s *Store) DashboardStats(ctx context.Context, dayStart time.Time) (models.DashboardStats, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var st models.DashboardStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM clients),
			(SELECT COUNT(*) FROM clients WHERE statut_formation = 'en_cours'),
			(SELECT COUNT(*) FROM cours),
			(SELECT COALESCE(SUM(montant), 0)::bigint FROM paiements WHERE date_paiement >= $1 AND date_paiement < $2),
			(SELECT COUNT(*) FROM absences_retards WHERE date = $3 AND type = 'absence'),
			(SELECT COALESCE(SUM(montant), 0)::bigint FROM paiements)
	`, dayStart, dayStart.AddDate(0, 0, 1), dayStart.Format("2006-01-02")).Scan(
		&st.TotalClients,
		&st.ClientsActifs,
		&st.TotalCours,
		&st.PaiementsAujourdhui,
		&st.AbsentsAujourdhui,
		&st.TotalRecettes,
	)
	if err != nil {
		return st, fmt.Errorf("error computing dashboard stats: %w", err)
	}
	return st, nil
}

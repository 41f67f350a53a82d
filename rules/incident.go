package rules

import (
	"formatrack_backend/apperr"
	"formatrack_backend/models"
)

// DeriveIncident returns the incident an attendance record produces, or nil.
// An absence is dated to the attendance day with no time; a late arrival keeps its time.
func DeriveIncident(a models.Attendance) (*models.Incident, error) {
	switch a.Etat {
	case models.EtatAbsent:
		return &models.Incident{
			ClientID: a.ClientID,
			CoursID:  a.CoursID,
			Date:     a.DatePresence,
			Type:     models.IncidentAbsence,
		}, nil
	case models.EtatPresent:
		if a.HeurePresence == nil {
			return nil, apperr.Validation("Heure de présence manquante")
		}
		late, err := IsLate(*a.HeurePresence)
		if err != nil {
			return nil, apperr.Validation("Heure de présence invalide (format HH:MM attendu)")
		}
		if !late {
			return nil, nil
		}
		heure := *a.HeurePresence
		return &models.Incident{
			ClientID:      a.ClientID,
			CoursID:       a.CoursID,
			Date:          a.DatePresence,
			HeurePresence: &heure,
			Type:          models.IncidentRetard,
		}, nil
	default:
		return nil, apperr.Validation("État de présence invalide")
	}
}

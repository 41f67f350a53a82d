package models

const (
	IncidentAbsence = "absence"
	IncidentRetard  = "retard"
)

// Incident is an absence or lateness entry derived from an attendance record.
type Incident struct {
	ID            int     `json:"id"`
	ClientID      int     `json:"client_id"`
	CoursID       int     `json:"cours_id"`
	Date          string  `json:"date"`
	HeurePresence *string `json:"heure_presence"`
	Type          string  `json:"type"`
	Remarque      *string `json:"remarque"`
}

type IncidentRow struct {
	Incident
	Nom      string `json:"nom,omitempty"`
	Prenom   string `json:"prenom,omitempty"`
	CoursNom string `json:"cours_nom"`
}

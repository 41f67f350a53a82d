package models

const (
	EtatPresent = "present"
	EtatAbsent  = "absent"
)

type CreateAttendanceRequest struct {
	ClientID      int    `json:"client_id" binding:"required"`
	CoursID       int    `json:"cours_id" binding:"required"`
	Etat          string `json:"etat" binding:"required,oneof=present absent"`
	HeurePresence string `json:"heure_presence"`
}

type Attendance struct {
	ID            int     `json:"id"`
	ClientID      int     `json:"client_id"`
	CoursID       int     `json:"cours_id"`
	DatePresence  string  `json:"date_presence"`
	HeurePresence *string `json:"heure_presence"`
	Etat          string  `json:"etat"`
}

// AttendanceRow is an attendance record joined with client and course names.
type AttendanceRow struct {
	Attendance
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
	CoursNom string `json:"cours_nom"`
}

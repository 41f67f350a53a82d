package models

import "time"

type CourseRequest struct {
	Intitule   string `json:"intitule" binding:"required,max=200"`
	Enseignant string `json:"enseignant" binding:"required,max=100"`
	Clients    []int  `json:"clients"`
}

type Course struct {
	ID         int       `json:"id"`
	Intitule   string    `json:"intitule"`
	Enseignant string    `json:"enseignant"`
	CreatedAt  time.Time `json:"created_at"`
	Clients    []int     `json:"clients"`
}

// CourseSummary is a course row of the listing, with its enrollment roll-up.
type CourseSummary struct {
	Course
	ClientsNoms   *string `json:"clients_noms"`
	NombreClients int     `json:"nombre_clients"`
}

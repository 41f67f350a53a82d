package models

import "time"

const (
	TypeStagiaire = "stagiaire"
	TypeApprenant = "apprenant"

	StatutEnCours  = "en_cours"
	StatutSuspendu = "suspendu"
	StatutTermine  = "termine"
)

type Client struct {
	ID                int        `json:"id"`
	Nom               string     `json:"nom"`
	Prenom            string     `json:"prenom"`
	Localite          string     `json:"localite"`
	TelephoneParent   string     `json:"telephone_parent"`
	NiveauScolaire    string     `json:"niveau_scolaire"`
	DomaineEtude      string     `json:"domaine_etude"`
	DateInscription   string     `json:"date_inscription"`
	DureeFormation    int        `json:"duree_formation"`
	TypeFormation     string     `json:"type_formation"`
	StatutFormation   string     `json:"statut_formation"`
	DateStatutModifie *time.Time `json:"date_statut_modifie"`
	PrixFormation     int64      `json:"prix_formation"`
	MontantVerse      int64      `json:"montant_verse"`
	MontantRestant    int64      `json:"montant_restant"`
	CreatedAt         time.Time  `json:"created_at"`
}

// CreateClientRequest is the full set of writable client fields.
// montant_restant is derived and therefore absent.
type CreateClientRequest struct {
	Nom             string `json:"nom" binding:"required,max=100"`
	Prenom          string `json:"prenom" binding:"required,max=100"`
	Localite        string `json:"localite" binding:"max=100"`
	TelephoneParent string `json:"telephone_parent" binding:"max=30"`
	NiveauScolaire  string `json:"niveau_scolaire" binding:"max=100"`
	DomaineEtude    string `json:"domaine_etude" binding:"max=100"`
	DateInscription string `json:"date_inscription" binding:"omitempty,datetime=2006-01-02"`
	DureeFormation  int    `json:"duree_formation" binding:"min=0"`
	TypeFormation   string `json:"type_formation" binding:"omitempty,oneof=stagiaire apprenant"`
	StatutFormation string `json:"statut_formation" binding:"omitempty,oneof=en_cours suspendu termine"`
	PrixFormation   int64  `json:"prix_formation" binding:"min=0"`
	MontantVerse    int64  `json:"montant_verse" binding:"min=0"`
}

// ClientPatch is a partial client update: nil fields are left untouched.
type ClientPatch struct {
	Nom             *string `json:"nom"`
	Prenom          *string `json:"prenom"`
	Localite        *string `json:"localite"`
	TelephoneParent *string `json:"telephone_parent"`
	NiveauScolaire  *string `json:"niveau_scolaire"`
	DomaineEtude    *string `json:"domaine_etude"`
	DateInscription *string `json:"date_inscription"`
	DureeFormation  *int    `json:"duree_formation"`
	TypeFormation   *string `json:"type_formation"`
	StatutFormation *string `json:"statut_formation"`
	PrixFormation   *int64  `json:"prix_formation"`
	MontantVerse    *int64  `json:"montant_verse"`
}

// Empty reports whether the patch changes nothing.
func (p ClientPatch) Empty() bool {
	return p == ClientPatch{}
}

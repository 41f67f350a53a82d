// Package rules holds the business rules that sit between the API handlers and the store:
// balance reconciliation, client defaults, the lateness cutoff and payment validation.
package rules

import (
	"time"

	"formatrack_backend/apperr"
	"formatrack_backend/models"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Remaining is the derived montant_restant of a client.
func Remaining(prixFormation, montantVerse int64) int64 {
	return prixFormation - montantVerse
}

// NewClient builds a client from a creation request, filling the defaults
// the registration form relies on.
func NewClient(req models.CreateClientRequest, now time.Time) models.Client {
	c := models.Client{
		Nom:             req.Nom,
		Prenom:          req.Prenom,
		Localite:        req.Localite,
		TelephoneParent: req.TelephoneParent,
		NiveauScolaire:  req.NiveauScolaire,
		DomaineEtude:    req.DomaineEtude,
		DateInscription: req.DateInscription,
		DureeFormation:  req.DureeFormation,
		TypeFormation:   req.TypeFormation,
		StatutFormation: req.StatutFormation,
		PrixFormation:   req.PrixFormation,
		MontantVerse:    req.MontantVerse,
	}
	if c.DateInscription == "" {
		c.DateInscription = now.Format(DateLayout)
	}
	if c.TypeFormation == "" {
		c.TypeFormation = models.TypeStagiaire
	}
	if c.StatutFormation == "" {
		c.StatutFormation = models.StatutEnCours
	}
	c.MontantRestant = Remaining(c.PrixFormation, c.MontantVerse)
	return c
}

// ApplyClientPatch returns c with the fields present in p replaced. The derived
// balance is recomputed from the post-update operands whichever field changed,
// and a status change is stamped with now.
func ApplyClientPatch(c models.Client, p models.ClientPatch, now time.Time) models.Client {
	if p.Nom != nil {
		c.Nom = *p.Nom
	}
	if p.Prenom != nil {
		c.Prenom = *p.Prenom
	}
	if p.Localite != nil {
		c.Localite = *p.Localite
	}
	if p.TelephoneParent != nil {
		c.TelephoneParent = *p.TelephoneParent
	}
	if p.NiveauScolaire != nil {
		c.NiveauScolaire = *p.NiveauScolaire
	}
	if p.DomaineEtude != nil {
		c.DomaineEtude = *p.DomaineEtude
	}
	if p.DateInscription != nil {
		c.DateInscription = *p.DateInscription
	}
	if p.DureeFormation != nil {
		c.DureeFormation = *p.DureeFormation
	}
	if p.TypeFormation != nil {
		c.TypeFormation = *p.TypeFormation
	}
	if p.StatutFormation != nil && *p.StatutFormation != c.StatutFormation {
		c.StatutFormation = *p.StatutFormation
		stamp := now
		c.DateStatutModifie = &stamp
	}
	if p.PrixFormation != nil {
		c.PrixFormation = *p.PrixFormation
	}
	if p.MontantVerse != nil {
		c.MontantVerse = *p.MontantVerse
	}
	c.MontantRestant = Remaining(c.PrixFormation, c.MontantVerse)
	return c
}

// ValidateClient checks the invariants a stored client must satisfy.
func ValidateClient(c models.Client) error {
	if c.Nom == "" || c.Prenom == "" {
		return apperr.Validation("Le nom et le prénom sont obligatoires")
	}
	switch c.TypeFormation {
	case models.TypeStagiaire, models.TypeApprenant:
	default:
		return apperr.Validation("Type de formation invalide")
	}
	switch c.StatutFormation {
	case models.StatutEnCours, models.StatutSuspendu, models.StatutTermine:
	default:
		return apperr.Validation("Statut de formation invalide")
	}
	if _, err := time.Parse(DateLayout, c.DateInscription); err != nil {
		return apperr.Validation("Date d'inscription invalide")
	}
	if c.DureeFormation < 0 {
		return apperr.Validation("La durée de formation ne peut pas être négative")
	}
	if c.PrixFormation < 0 || c.MontantVerse < 0 {
		return apperr.Validation("Les montants ne peuvent pas être négatifs")
	}
	return nil
}

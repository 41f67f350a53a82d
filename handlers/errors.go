package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"formatrack_backend/apperr"
	"formatrack_backend/store"

	"github.com/gin-gonic/gin"
)

// respondError writes the JSON error body for err. Anything that is not a known
// kind is reported as a generic server error and logged through c.Error.
func respondError(c *gin.Context, err error, notFoundMessage string) {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		if appErr.Kind == apperr.KindInternal {
			c.Error(err)
		}
		c.JSON(appErr.Kind.Status(), gin.H{"error": appErr.Message})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Cette ressource existe déjà"})
	case errors.Is(err, store.ErrActorNotFound):
		c.JSON(http.StatusForbidden, gin.H{"error": "Utilisateur non trouvé"})
	case errors.Is(err, store.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le montant ne peut pas être supérieur au montant restant"})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
	}
}

// invalidRequest turns a body decoding or binding failure into a validation error.
// The decoder and validator text stays in the wrapped cause.
func invalidRequest(err error) *apperr.Error {
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return apperr.Wrap(apperr.KindValidation, "Champ inconnu: "+field, err)
	}
	return apperr.Wrap(apperr.KindValidation, "Requête invalide", err)
}

func badRequest(c *gin.Context, err error) {
	respondError(c, invalidRequest(err), "")
}

// paramID parses the :id path parameter.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return 0, false
	}
	return id, true
}

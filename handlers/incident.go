package handlers

import (
	"net/http"

	"formatrack_backend/store"

	"github.com/gin-gonic/gin"
)

type IncidentHandler struct {
	store store.Incidents
}

func NewIncidentHandler(st store.Incidents) *IncidentHandler {
	return &IncidentHandler{store: st}
}

func (h *IncidentHandler) GetIncidents(c *gin.Context) {
	incidents, err := h.store.ListIncidents(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, incidents)
}

func (h *IncidentHandler) DeleteIncident(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteIncident(c.Request.Context(), id); err != nil {
		respondError(c, err, "Absence/Retard non trouvé")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Absence/Retard supprimé avec succès"})
}

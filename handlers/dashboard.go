package handlers

import (
	"net/http"
	"time"

	"formatrack_backend/store"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	store store.Stats
	now   Clock
}

func NewDashboardHandler(st store.Stats, now Clock) *DashboardHandler {
	return &DashboardHandler{store: st, now: now}
}

// GetStats computes the figures at request time; nothing is cached.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	now := h.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats, err := h.store.DashboardStats(c.Request.Context(), dayStart)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

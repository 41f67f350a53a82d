package handlers

import (
	"net/http"

	"formatrack_backend/models"
	"formatrack_backend/rules"
	"formatrack_backend/store"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	store store.Attendance
	now   Clock
}

func NewAttendanceHandler(st store.Attendance, now Clock) *AttendanceHandler {
	return &AttendanceHandler{store: st, now: now}
}

// CreateAttendance records a check and, through the lateness rule, any absence or
// late-arrival incident it implies.
func (h *AttendanceHandler) CreateAttendance(c *gin.Context) {
	var req models.CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	attendance, err := rules.NewAttendance(req, h.now())
	if err != nil {
		respondError(c, err, "")
		return
	}
	incident, err := rules.DeriveIncident(attendance)
	if err != nil {
		respondError(c, err, "")
		return
	}

	saved, err := h.store.RecordAttendance(c.Request.Context(), attendance, incident)
	if err != nil {
		respondError(c, err, "Client ou cours non trouvé")
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *AttendanceHandler) GetAttendances(c *gin.Context) {
	records, err := h.store.ListAttendance(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, records)
}

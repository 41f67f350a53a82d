package handlers

import (
	"errors"
	"net/http"
	"strings"

	"formatrack_backend/apperr"
	"formatrack_backend/models"
	"formatrack_backend/store"

	"github.com/gin-gonic/gin"
)

const courseNotFound = "Cours non trouvé"

type CourseHandler struct {
	store store.Courses
}

func NewCourseHandler(st store.Courses) *CourseHandler {
	return &CourseHandler{store: st}
}

func bindCourse(c *gin.Context) (models.CourseRequest, bool) {
	var req models.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return req, false
	}
	req.Intitule = strings.TrimSpace(req.Intitule)
	req.Enseignant = strings.TrimSpace(req.Enseignant)
	if req.Intitule == "" || req.Enseignant == "" {
		respondError(c, apperr.Validation("L'intitulé et l'enseignant sont obligatoires"), "")
		return req, false
	}
	for _, id := range req.Clients {
		if id <= 0 {
			respondError(c, apperr.Validation("Identifiant de client invalide"), "")
			return req, false
		}
	}
	return req, true
}

// courseWriteError distinguishes a duplicate or unknown enrolled client from a missing course.
func courseWriteError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, store.ErrConflict) {
		respondError(c, apperr.Conflict("Un client ne peut être inscrit qu'une fois au même cours"), "")
		return
	}
	respondError(c, err, notFound)
}

func (h *CourseHandler) GetCourses(c *gin.Context) {
	courses, err := h.store.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	course, err := h.store.GetCourse(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, courseNotFound)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	req, ok := bindCourse(c)
	if !ok {
		return
	}
	course, err := h.store.CreateCourse(c.Request.Context(), req)
	if err != nil {
		courseWriteError(c, err, "Client non trouvé")
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	req, ok := bindCourse(c)
	if !ok {
		return
	}
	course, err := h.store.UpdateCourse(c.Request.Context(), id, req)
	if err != nil {
		courseWriteError(c, err, "Cours ou client non trouvé")
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteCourse(c.Request.Context(), id); err != nil {
		respondError(c, err, courseNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cours supprimé avec succès"})
}

func (h *CourseHandler) GetCourseClients(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	clients, err := h.store.ListCourseClients(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, courseNotFound)
		return
	}
	c.JSON(http.StatusOK, clients)
}

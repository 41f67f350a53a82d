package handlers

import (
	"errors"
	"net/http"
	"strings"

	"formatrack_backend/apperr"
	"formatrack_backend/middleware"
	"formatrack_backend/models"
	"formatrack_backend/store"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	store store.Users
}

func NewUserHandler(st store.Users) *UserHandler {
	return &UserHandler{store: st}
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		respondError(c, apperr.Validation("Le nom d'utilisateur est obligatoire"), "")
		return
	}

	hashedPassword, err := middleware.HashPassword(req.Password)
	if err != nil {
		respondError(c, err, "")
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), req.Username, hashedPassword)
	if errors.Is(err, store.ErrConflict) {
		respondError(c, apperr.Conflict("Ce nom d'utilisateur existe déjà"), "")
		return
	} else if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// DeleteUser removes any user but the caller.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	current, _ := middleware.CurrentUser(c)
	if id == current.ID {
		respondError(c, apperr.New(apperr.KindSelfDeletionForbidden, "Vous ne pouvez pas supprimer votre propre compte"), "")
		return
	}

	if err := h.store.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err, "Utilisateur non trouvé")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur supprimé avec succès"})
}

package handlers

import (
	"errors"
	"net/http"

	"formatrack_backend/middleware"
	"formatrack_backend/models"
	"formatrack_backend/store"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	store  store.Users
	tokens *middleware.TokenService
}

func NewAuthHandler(st store.Users, tokens *middleware.TokenService) *AuthHandler {
	return &AuthHandler{store: st, tokens: tokens}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.store.UserByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non trouvé"})
		return
	} else if err != nil {
		respondError(c, err, "Utilisateur non trouvé")
		return
	}

	if !middleware.VerifyPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe incorrect"})
		return
	}

	token, err := h.tokens.Generate(models.Identity{ID: user.ID, Username: user.Username})
	if err != nil {
		respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: token, User: user.User})
}

// Me returns the identity carried by the caller's token.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, identity)
}

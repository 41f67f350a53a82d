package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"formatrack_backend/apperr"
	"formatrack_backend/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)

// ErrInvalidToken is returned for any token that fails signature, format or expiry checks.
var ErrInvalidToken = errors.New("invalid or expired token")

// AuthMiddleware requires a valid bearer token and attaches the acting user to the context.
// No header yields 401; a token that does not verify yields 403.
func AuthMiddleware(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, apperr.New(apperr.KindUnauthenticated, "Token d'accès requis"))
			return
		}

		identity, err := tokens.Parse(tokenString)
		if err != nil {
			slog.DebugContext(c.Request.Context(), "token rejected", "error", err, "request_id", RequestIDFrom(c))
			abort(c, apperr.New(apperr.KindForbidden, "Token invalide"))
			return
		}

		c.Set(ctxUserID, identity.ID)
		c.Set(ctxUsername, identity.Username)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abort(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(err.Kind.Status(), gin.H{"error": err.Message})
}

// CurrentUser returns the identity attached by AuthMiddleware.
func CurrentUser(c *gin.Context) (models.Identity, bool) {
	id, ok := c.Get(ctxUserID)
	if !ok {
		return models.Identity{}, false
	}
	return models.Identity{ID: id.(int), Username: c.GetString(ctxUsername)}, true
}

// TokenService issues and verifies signed access tokens. There is no server-side
// session state: a token is valid until it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock returns a copy of s that reads time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// Generate signs a token embedding the user's id and username.
func (s *TokenService) Generate(user models.Identity) (string, error) {
	issued := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		ID:       user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the identity it carries.
func (s *TokenService) Parse(tokenString string) (models.Identity, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID <= 0 {
		return models.Identity{}, ErrInvalidToken
	}
	return models.Identity{ID: claims.ID, Username: claims.Username}, nil
}

// VerifyPassword checks if a password matches the hashed version
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// HashPassword creates a bcrypt hash of a password
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Wrap(apperr.KindValidation, "Le mot de passe est trop long", err)
	} else if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

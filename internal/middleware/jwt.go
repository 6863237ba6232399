package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/instasocial/social-api/internal/models"
)

const (
	currentUserKey = "current_user"
	userIDKey      = "user_id"
)

// Token failures. Messages double as the 401 detail.
var (
	ErrMissingToken   = errors.New("Not authenticated")
	ErrTokenExpired   = errors.New("Token has expired")
	ErrInvalidToken   = errors.New("Could not validate credentials")
	ErrMissingSubject = errors.New("Invalid authentication credentials")
	ErrUnknownUser    = errors.New("User not found")
)

type JWTConfig struct {
	Secret     string
	ExpireTime time.Duration
}

// UserLookup resolves the token subject. A nil user means it no longer exists.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// GenerateToken issues an HS256 token whose subject is userID.
func GenerateToken(cfg *JWTConfig, userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ExpireTime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry and returns the subject.
func ParseToken(cfg *JWTConfig, tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return uuid.Nil, ErrMissingSubject
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		// a subject that is not an id cannot name any user
		return uuid.Nil, ErrUnknownUser
	}
	return userID, nil
}

// NewJWTAuth rejects the request with 401 unless it carries a valid bearer
// token for an existing user, which is then bound to the context.
func NewJWTAuth(cfg *JWTConfig, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, ErrMissingToken)
			return
		}

		userID, err := ParseToken(cfg, tokenString)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}
		if user == nil {
			abortUnauthorized(c, ErrUnknownUser)
			return
		}

		c.Set(currentUserKey, user)
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, err error) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
}

// CurrentUser returns the authenticated user, nil outside NewJWTAuth.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(currentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func GetUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/pkg/response"
)

const identityKey = "identity"

// UserLookup is the slice of the user repository the session resolver needs.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type AuthMiddleware struct {
	users  UserLookup
	secret []byte
}

func NewAuthMiddleware(users UserLookup, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		users:  users,
		secret: []byte(secret),
	}
}

// ResolveSession turns the request's session token into an identity. It never
// aborts: a missing, expired or otherwise unusable token simply leaves the
// request without an identity.
func (m *AuthMiddleware) ResolveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		userID, err := m.parseToken(tokenString)
		if err != nil {
			log.Debug().Err(err).Msg("session token rejected")
			c.Next()
			return
		}

		user, err := m.users.FindByID(c.Request.Context(), userID)
		if err != nil || user == nil || !user.Active {
			c.Next()
			return
		}

		c.Set(identityKey, &authz.Identity{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		})
		c.Next()
	}
}

// RequireAuth rejects requests without an identity with 401.
func RequireAuth() gin.HandlerFunc {
	return RequireRole()
}

// RequireRole rejects with 401 when there is no identity and 403 when the
// identity's role is not one of roles. With no roles it only requires an
// identity.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authz.Authorize(CurrentIdentity(c), roles, nil); err != nil {
			response.ResponseError(c, err)
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity resolved for this request, or nil.
func CurrentIdentity(c *gin.Context) *authz.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*authz.Identity)
	return identity
}

// SetIdentity is used by tests and internal callers that resolve identity elsewhere.
func SetIdentity(c *gin.Context, identity *authz.Identity) {
	c.Set(identityKey, identity)
}

func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	// Fallback to query parameter "token" (useful for WebSockets)
	return c.Query("token")
}

func (m *AuthMiddleware) parseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid or expired token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}
	return uuid.Parse(claims.Subject)
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralacademy.com/academy/internal/entity"
)

const testSecret = "test-secret"

type fakeUsers struct {
	users map[uuid.UUID]*entity.User
	calls int
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.calls++
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return u, nil
}

func signToken(t *testing.T, subject string, secret string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func setupRouter(users *fakeUsers, storeHits *int, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	m := NewAuthMiddleware(users, testSecret)
	r.Use(m.ResolveSession())

	handlers := append([]gin.HandlerFunc{}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		*storeHits++
		identity := CurrentIdentity(c)
		if identity == nil {
			c.JSON(http.StatusOK, gin.H{"identity": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": identity.Role})
	})
	r.POST("/resource", handlers...)
	return r
}

func newUser(role string, active bool) *entity.User {
	return &entity.User{ID: uuid.New(), Email: "u@example.com", Role: role, Active: active}
}

func TestResolveSessionFailsOpen(t *testing.T) {
	student := newUser(entity.RoleStudent, true)
	inactive := newUser(entity.RoleStudent, false)
	users := &fakeUsers{users: map[uuid.UUID]*entity.User{student.ID: student, inactive.ID: inactive}}

	tests := []struct {
		name   string
		header string
	}{
		{"no token", ""},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + signToken(t, student.ID.String(), "other", time.Hour)},
		{"expired", "Bearer " + signToken(t, student.ID.String(), testSecret, -time.Minute)},
		{"unknown user", "Bearer " + signToken(t, uuid.NewString(), testSecret, time.Hour)},
		{"inactive user", "Bearer " + signToken(t, inactive.ID.String(), testSecret, time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := 0
			r := setupRouter(users, &hits)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/resource", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"identity":null}`, w.Body.String())
			assert.Equal(t, 1, hits)
		})
	}
}

func TestRequireAuthRejectsBeforeHandler(t *testing.T) {
	users := &fakeUsers{users: map[uuid.UUID]*entity.User{}}
	hits := 0
	r := setupRouter(users, &hits, RequireAuth())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/resource", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, hits, "handler must not run")
	assert.Equal(t, 0, users.calls, "no token means no store access")
}

func TestRequireRole(t *testing.T) {
	student := newUser(entity.RoleStudent, true)
	mentor := newUser(entity.RoleMentor, true)
	users := &fakeUsers{users: map[uuid.UUID]*entity.User{student.ID: student, mentor.ID: mentor}}

	tests := []struct {
		name string
		user *entity.User
		want int
	}{
		{"student is forbidden", student, http.StatusForbidden},
		{"mentor passes", mentor, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := 0
			r := setupRouter(users, &hits, RequireRole(entity.RoleMentor, entity.RoleAdmin))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/resource", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, tt.user.ID.String(), testSecret, time.Hour))
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, 0, hits)
			}
		})
	}
}

func TestTokenFromQuery(t *testing.T) {
	mentor := newUser(entity.RoleMentor, true)
	users := &fakeUsers{users: map[uuid.UUID]*entity.User{mentor.ID: mentor}}
	hits := 0
	r := setupRouter(users, &hits, RequireAuth())

	w := httptest.NewRecorder()
	token := signToken(t, mentor.ID.String(), testSecret, time.Hour)
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/resource?token="+token, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"MENTOR"}`, w.Body.String())
}

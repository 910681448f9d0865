package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/modules/user/dto"
	user "viralacademy.com/academy/internal/modules/user/service"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/response"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	service      user.AuthService
	secureCookie bool
}

func NewAuthHandler(service user.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: service, secureCookie: secureCookie}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusTemporaryRedirect, h.service.GoogleLoginURL(state))
}

func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		response.ResponseError(c, apperror.Validation("invalid oauth state"))
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookie, true)

	code := c.Query("code")
	if code == "" {
		response.ResponseError(c, apperror.Validation("missing authorization code"))
		return
	}

	resp, err := h.service.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Me(c *gin.Context) {
	resp, err := h.service.Me(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

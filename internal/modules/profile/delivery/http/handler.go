package handler

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	profileDto "viralacademy.com/academy/internal/modules/profile/dto"
	profile "viralacademy.com/academy/internal/modules/profile/service"
	"viralacademy.com/academy/pkg/response"
)

type ProfileHandler struct {
	profileService profile.ProfileService
}

func NewProfileHandler(profileService profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) GetCurrentProfile(c *gin.Context) {
	res, err := h.profileService.GetCurrentProfile(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var input profileDto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.profileService.UpdateProfile(c.Request.Context(), middleware.CurrentIdentity(c), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res)
}

func (h *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	res, err := h.profileService.CompleteOnboarding(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res)
}

func (h *ProfileHandler) GetPublicProfile(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	res, err := h.profileService.GetPublicProfile(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res)
}

package http

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/modules/leaderboard/dto"
	leaderboardService "viralacademy.com/academy/internal/modules/leaderboard/service"
	"viralacademy.com/academy/pkg/response"
)

type LeaderboardHandler struct {
	service leaderboardService.LeaderboardService
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	var query dto.LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.GetLeaderboard(c.Request.Context(), middleware.CurrentIdentity(c), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *LeaderboardHandler) GetMyStanding(c *gin.Context) {
	resp, err := h.service.GetMyStanding(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

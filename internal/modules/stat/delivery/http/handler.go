package http

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	statService "viralacademy.com/academy/internal/modules/stat/service"
	"viralacademy.com/academy/pkg/response"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{
		statService: statService,
	}
}

func (h *StatHandler) GetStats(c *gin.Context) {
	stats, err := h.statService.GetStats(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, stats)
}

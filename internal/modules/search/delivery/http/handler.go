package handler

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/modules/search/dto"
	search "viralacademy.com/academy/internal/modules/search/service"
	"viralacademy.com/academy/pkg/response"
)

type SearchHandler struct {
	service search.SearchService
}

func NewSearchHandler(service search.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.Search(c.Request.Context(), middleware.CurrentIdentity(c), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

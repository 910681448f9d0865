package handler

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	like "viralacademy.com/academy/internal/modules/like/service"
	"viralacademy.com/academy/pkg/response"
)

type LikeHandler struct {
	service like.LikeService
}

func NewLikeHandler(service like.LikeService) *LikeHandler {
	return &LikeHandler{service: service}
}

func (h *LikeHandler) TogglePostLike(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	resp, err := h.service.TogglePostLike(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *LikeHandler) ToggleCommentLike(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	resp, err := h.service.ToggleCommentLike(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

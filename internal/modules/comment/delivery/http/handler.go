package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/modules/comment/dto"
	comment "viralacademy.com/academy/internal/modules/comment/service"
	commonDto "viralacademy.com/academy/pkg/dto"
	"viralacademy.com/academy/pkg/response"
)

type CommentHandler struct {
	service comment.CommentService
}

func NewCommentHandler(service comment.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.CreateComment(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, resp)
}

func (h *CommentHandler) GetComments(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	var page commonDto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.GetComments(c.Request.Context(), middleware.CurrentIdentity(c), id, page)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.UpdateComment(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, "comment deleted successfully")
}

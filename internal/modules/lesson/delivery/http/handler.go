package handler

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/modules/lesson/dto"
	lesson "viralacademy.com/academy/internal/modules/lesson/service"
	"viralacademy.com/academy/pkg/response"
)

type LessonHandler struct {
	service lesson.LessonService
}

func NewLessonHandler(service lesson.LessonService) *LessonHandler {
	return &LessonHandler{service: service}
}

func (h *LessonHandler) CreateLesson(c *gin.Context) {
	moduleID, ok := response.BindID(c)
	if !ok {
		return
	}

	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.CreateLesson(c.Request.Context(), middleware.CurrentIdentity(c), moduleID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, resp)
}

func (h *LessonHandler) GetLesson(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetLesson(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.UpdateLesson(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteLesson(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, "lesson deleted successfully")
}

func (h *LessonHandler) CompleteLesson(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	resp, err := h.service.CompleteLesson(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *LessonHandler) UncompleteLesson(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	resp, err := h.service.UncompleteLesson(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *LessonHandler) GetProgress(c *gin.Context) {
	courseID, ok := response.BindID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetProgress(c.Request.Context(), middleware.CurrentIdentity(c), courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

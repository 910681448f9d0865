package handler

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/modules/course/dto"
	course "viralacademy.com/academy/internal/modules/course/service"
	"viralacademy.com/academy/pkg/response"
)

type CourseHandler struct {
	service course.CourseService
}

func NewCourseHandler(service course.CourseService) *CourseHandler {
	return &CourseHandler{service: service}
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	var filter dto.CourseFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.ListCourses(c.Request.Context(), middleware.CurrentIdentity(c), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	var req dto.SlugRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.GetCourse(c.Request.Context(), middleware.CurrentIdentity(c), req.Slug)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.CreateCourse(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, resp)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.UpdateCourse(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCourse(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, "course deleted successfully")
}

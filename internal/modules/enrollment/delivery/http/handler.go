package handler

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	enrollment "viralacademy.com/academy/internal/modules/enrollment/service"
	"viralacademy.com/academy/pkg/response"
)

type EnrollmentHandler struct {
	service enrollment.EnrollmentService
}

func NewEnrollmentHandler(service enrollment.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	resp, err := h.service.Enroll(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, resp)
}

func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	if err := h.service.Unenroll(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, "unenrolled successfully")
}

func (h *EnrollmentHandler) MyEnrollments(c *gin.Context) {
	resp, err := h.service.MyEnrollments(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

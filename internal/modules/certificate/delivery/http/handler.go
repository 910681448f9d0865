package handler

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/modules/certificate/dto"
	certificate "viralacademy.com/academy/internal/modules/certificate/service"
	"viralacademy.com/academy/pkg/response"
)

type CertificateHandler struct {
	service certificate.CertificateService
}

func NewCertificateHandler(service certificate.CertificateService) *CertificateHandler {
	return &CertificateHandler{service: service}
}

func (h *CertificateHandler) MyCertificates(c *gin.Context) {
	resp, err := h.service.MyCertificates(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *CertificateHandler) Verify(c *gin.Context) {
	var req dto.CodeRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.Verify(c.Request.Context(), req.Code)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

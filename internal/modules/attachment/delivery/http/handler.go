package handler

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/modules/attachment/dto"
	attachment "viralacademy.com/academy/internal/modules/attachment/service"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/response"
)

type AttachmentHandler struct {
	service attachment.AttachmentService
}

func NewAttachmentHandler(service attachment.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	var query dto.UploadQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.ResponseError(c, apperror.Validation("file is required"))
		return
	}

	content, err := file.Open()
	if err != nil {
		response.ResponseError(c, apperror.Validation("failed to read uploaded file"))
		return
	}
	defer content.Close()

	resp, err := h.service.UploadAttachment(c.Request.Context(), middleware.CurrentIdentity(c), attachment.Upload{
		Kind:     query.Kind,
		FileName: file.Filename,
		Size:     file.Size,
		Content:  content,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, resp)
}

func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAttachment(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, "attachment deleted successfully")
}

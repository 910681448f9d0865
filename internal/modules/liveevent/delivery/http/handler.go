package handler

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/modules/liveevent/dto"
	liveevent "viralacademy.com/academy/internal/modules/liveevent/service"
	"viralacademy.com/academy/pkg/response"
)

type LiveEventHandler struct {
	service liveevent.LiveEventService
}

func NewLiveEventHandler(service liveevent.LiveEventService) *LiveEventHandler {
	return &LiveEventHandler{service: service}
}

func (h *LiveEventHandler) ListUpcoming(c *gin.Context) {
	resp, err := h.service.ListUpcoming(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *LiveEventHandler) GetEvent(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetEvent(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *LiveEventHandler) CreateEvent(c *gin.Context) {
	var req dto.LiveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.CreateEvent(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, resp)
}

func (h *LiveEventHandler) UpdateEvent(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	var req dto.LiveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.UpdateEvent(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *LiveEventHandler) DeleteEvent(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteEvent(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, "live event deleted successfully")
}


package handler

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/modules/coursemodule/dto"
	module "viralacademy.com/academy/internal/modules/coursemodule/service"
	"viralacademy.com/academy/pkg/response"
)

type ModuleHandler struct {
	service module.ModuleService
}

func NewModuleHandler(service module.ModuleService) *ModuleHandler {
	return &ModuleHandler{service: service}
}

func (h *ModuleHandler) CreateModule(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	var req dto.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.CreateModule(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, resp)
}

func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	var req dto.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.UpdateModule(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteModule(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, "module deleted successfully")
}

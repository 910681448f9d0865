package handler

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/modules/category/dto"
	category "viralacademy.com/academy/internal/modules/category/service"
	"viralacademy.com/academy/pkg/response"
)

type CategoryHandler struct {
	service category.CategoryService
}

func NewCategoryHandler(service category.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.CreateCategory(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, resp)
}

func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	var filter dto.CategoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	categories, err := h.service.GetAllCategories(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, categories)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, "category deleted successfully")
}

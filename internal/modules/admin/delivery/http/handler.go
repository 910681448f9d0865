package handler

import (
	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/modules/admin/dto"
	adminService "viralacademy.com/academy/internal/modules/admin/service"
	"viralacademy.com/academy/pkg/response"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var query dto.UserListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.adminService.ListUsers(c.Request.Context(), middleware.CurrentIdentity(c), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res)
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var input dto.CreateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.adminService.CreateUser(c.Request.Context(), middleware.CurrentIdentity(c), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, res)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := response.BindID(c)
	if !ok {
		return
	}

	var input dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.adminService.UpdateUser(c.Request.Context(), middleware.CurrentIdentity(c), id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res)
}

func (h *AdminHandler) Announce(c *gin.Context) {
	var input dto.AnnouncementRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.adminService.Announce(c.Request.Context(), middleware.CurrentIdentity(c), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, res)
}

package dto

import (
	userDto "viralacademy.com/academy/internal/modules/user/dto"
	commonDto "viralacademy.com/academy/pkg/dto"
)

type UserListQuery struct {
	commonDto.PageQuery
	Search string `form:"search" binding:"omitempty,max=100"`
	Role   string `form:"role" binding:"omitempty,oneof=STUDENT MENTOR ADMIN"`
}

type UserListResponse struct {
	Data []userDto.UserResponse   `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

// CreateUserRequest lets an admin provision staff accounts directly.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=100"`
	Role     string `json:"role" binding:"required,oneof=STUDENT MENTOR ADMIN"`
}

type UpdateUserRequest struct {
	Role   *string `json:"role" binding:"omitempty,oneof=STUDENT MENTOR ADMIN"`
	Active *bool   `json:"active"`
}

type AnnouncementRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Message string `json:"message" binding:"required,max=2000"`
	Link    string `json:"link" binding:"omitempty,max=500"`
}

type AnnouncementResponse struct {
	Recipients int `json:"recipients"`
}

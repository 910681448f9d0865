package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
)

type CodeRequest struct {
	Code string `uri:"code" binding:"required,max=32"`
}

type CertificateResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	CourseID    uuid.UUID `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	IssuedAt    time.Time `json:"issued_at"`
}

// VerificationResponse is public, so it carries the holder's name only.
type VerificationResponse struct {
	Code        string    `json:"code"`
	HolderName  string    `json:"holder_name"`
	CourseTitle string    `json:"course_title"`
	IssuedAt    time.Time `json:"issued_at"`
}

func ToCertificateResponse(c *entity.Certificate) CertificateResponse {
	return CertificateResponse{
		ID:          c.ID,
		Code:        c.Code,
		CourseID:    c.CourseID,
		CourseTitle: c.Course.Title,
		IssuedAt:    c.IssuedAt,
	}
}

func ToVerificationResponse(c *entity.Certificate) VerificationResponse {
	return VerificationResponse{
		Code:        c.Code,
		HolderName:  c.User.Name,
		CourseTitle: c.Course.Title,
		IssuedAt:    c.IssuedAt,
	}
}

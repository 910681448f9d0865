package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"viralacademy.com/academy/pkg/dto"
)

// BindID binds and parses the :id path parameter. On failure it writes the
// error response and returns false.
func BindID(c *gin.Context) (uuid.UUID, bool) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		ValidationError(c, err)
		return uuid.Nil, false
	}
	id, err := dto.ParseID("id", uri.ID)
	if err != nil {
		ResponseError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

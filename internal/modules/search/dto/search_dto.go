package dto

import "encoding/json"

const (
	IndexCourses = "courses"
	IndexPosts   = "posts"
)

type SearchQuery struct {
	Query string `form:"q" binding:"required,max=200"`
	Index string `form:"index" binding:"omitempty,oneof=courses posts"`
	Limit int64  `form:"limit" binding:"omitempty,min=1,max=50"`
}

type SearchResponse struct {
	Index string            `json:"index"`
	Hits  []json.RawMessage `json:"hits"`
	Total int64             `json:"total"`
}

package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v123456789/viral_academy/sample.webp", "viral_academy/sample"},
		{"https://res.cloudinary.com/demo/image/upload/viral_academy/sample.jpg", "viral_academy/sample"},
		{"https://res.cloudinary.com/demo/raw/upload/v1/notes/week-1.pdf", "notes/week-1"},
		{"https://example.com/no-upload-segment.png", ""},
		{"::not a url", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractPublicID(tt.url), tt.url)
	}
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "week-1-notes", sanitizeName("Week 1 Notes"))
	assert.Equal(t, "file", sanitizeName("$$$"))
}

func TestDisabledStorage(t *testing.T) {
	s := Disabled()

	_, err := s.Upload(context.Background(), strings.NewReader("x"), "folder", "a.txt")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, s.Delete(context.Background(), "https://res.cloudinary.com/demo/image/upload/a.png"), ErrNotConfigured)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrNotConfigured = errors.New("file storage is not configured")

// FileStorage is the blob store that holds uploaded images and attachments.
type FileStorage interface {
	// Upload stores the content under folder and returns its public URL.
	Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// Delete removes a previously uploaded file by its URL.
	Delete(ctx context.Context, fileURL string) error
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type cloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// Disabled returns a FileStorage whose calls all fail with ErrNotConfigured.
func Disabled() FileStorage {
	return (*cloudinaryStorage)(nil)
}

// NewCloudinaryStorage creates Cloudinary-backed implementation of FileStorage.
// When the explicit credentials are empty the SDK falls back to CLOUDINARY_URL.
func NewCloudinaryStorage(cfg CloudinaryConfig) (FileStorage, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cfg.CloudName != "" && cfg.APIKey != "" && cfg.APISecret != "" {
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	} else {
		cld, err = cloudinary.New()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true

	return &cloudinaryStorage{cld: cld}, nil
}

func (s *cloudinaryStorage) Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	if s == nil || s.cld == nil {
		return "", ErrNotConfigured
	}

	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	publicID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitizeName(base))

	params := uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
		ResourceType:   "auto",
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		params.Format = "webp"
		params.Transformation = "q_auto"
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload file to cloudinary: %w", err)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

func (s *cloudinaryStorage) Delete(ctx context.Context, fileURL string) error {
	if s == nil || s.cld == nil {
		return ErrNotConfigured
	}

	publicID := extractPublicID(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}
	return nil
}

// extractPublicID turns
// https://res.cloudinary.com/demo/image/upload/v123456789/folder/sample.jpg into folder/sample.
func extractPublicID(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}
	if uploadIndex == -1 || uploadIndex+1 >= len(parts) {
		return ""
	}

	rest := parts[uploadIndex+1:]
	if len(rest) > 1 && isVersionSegment(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return ""
	}

	withExt := strings.Join(rest, "/")
	return strings.TrimSuffix(withExt, filepath.Ext(withExt))
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/attachment/dto"
	attachmentRepo "viralacademy.com/academy/internal/modules/attachment/repository"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
	"viralacademy.com/academy/pkg/storage"
)

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

var allowedTypes = map[string][]string{
	entity.AttachmentImage: {
		"image/jpeg", "image/png", "image/gif", "image/webp",
	},
	entity.AttachmentFile: {
		"image/jpeg", "image/png", "image/gif", "image/webp",
		"application/pdf",
		"application/zip",
		"text/plain",
		"text/csv",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	},
}

// Upload is the file handed over by the transport layer.
type Upload struct {
	Kind     string
	FileName string
	Size     int64
	Content  io.Reader
}

type Config struct {
	Folder        string
	ImageMaxBytes int64
	FileMaxBytes  int64
}

type AttachmentService interface {
	UploadAttachment(ctx context.Context, identity *authz.Identity, upload Upload) (*dto.AttachmentResponse, error)
	DeleteAttachment(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
}

type attachmentService struct {
	attachmentRepo attachmentRepo.AttachmentRepository
	fileStorage    storage.FileStorage
	cfg            Config
}

func NewAttachmentService(attachmentRepo attachmentRepo.AttachmentRepository, fileStorage storage.FileStorage, cfg Config) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		fileStorage:    fileStorage,
		cfg:            cfg,
	}
}

func (s *attachmentService) UploadAttachment(ctx context.Context, identity *authz.Identity, upload Upload) (*dto.AttachmentResponse, error) {
	if upload.Kind == "" {
		upload.Kind = entity.AttachmentImage
	}

	roles := authz.Anyone
	if upload.Kind == entity.AttachmentFile {
		roles = authz.Staff
	}
	if err := authz.Authorize(identity, roles, nil); err != nil {
		return nil, err
	}

	allowed, ok := allowedTypes[upload.Kind]
	if !ok {
		return nil, apperror.Validation("unknown upload kind")
	}

	limit := s.maxBytes(upload.Kind)
	if upload.Size > limit {
		return nil, apperror.Validation(fmt.Sprintf("file exceeds the %d byte limit for %s uploads", limit, upload.Kind))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(upload.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperror.Internal(err)
	}
	head = head[:n]
	if n == 0 {
		return nil, apperror.Validation("file is empty")
	}

	detected := mimetype.Detect(head)
	if !mimetype.EqualsAny(detected.String(), allowed...) {
		return nil, apperror.Validation(fmt.Sprintf("file type %s is not allowed for %s uploads", detected.String(), upload.Kind))
	}

	// The declared size comes from the client; the reader is capped as well.
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), upload.Content), limit)

	url, err := s.fileStorage.Upload(ctx, body, path.Join(s.cfg.Folder, upload.Kind+"s"), upload.FileName)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	attachment := &entity.Attachment{
		UploaderID: identity.ID,
		Kind:       upload.Kind,
		FileName:   path.Base(upload.FileName),
		URL:        url,
		MimeType:   detected.String(),
		Size:       upload.Size,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		if delErr := s.fileStorage.Delete(ctx, url); delErr != nil {
			log.Warn().Err(delErr).Str("url", url).Msg("failed to remove blob after insert failure")
		}
		return nil, apperror.Internal(err)
	}

	resp := dto.ToAttachmentResponse(attachment)
	return &resp, nil
}

func (s *attachmentService) DeleteAttachment(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return err
	}

	attachment, err := s.attachmentRepo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return apperror.NotFound("attachment not found")
		}
		return apperror.Internal(err)
	}

	if err := authz.Authorize(identity, authz.Staff, &attachment.UploaderID); err != nil {
		return err
	}

	// The row must go before the blob.
	if err := s.attachmentRepo.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}

	if err := s.fileStorage.Delete(ctx, attachment.URL); err != nil {
		log.Warn().Err(err).Str("attachment_id", id.String()).Msg("failed to delete blob")
	}
	return nil
}

func (s *attachmentService) maxBytes(kind string) int64 {
	if kind == entity.AttachmentFile {
		return s.cfg.FileMaxBytes
	}
	return s.cfg.ImageMaxBytes
}

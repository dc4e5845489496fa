package serviceimpl

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"taskboard/domain/models"
	"taskboard/domain/ports"
	"taskboard/domain/repositories"
	"taskboard/domain/services"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

// AttachmentConfig ข้อจำกัดของไฟล์ที่รับ
type AttachmentConfig struct {
	MaxFileSize       int64
	MaxFiles          int
	AllowedExtensions []string
}

// sniffedTypes MIME ที่ยอมรับจากการอ่าน content จริง ต่อนามสกุล
var sniffedTypes = map[string][]string{
	"pdf":  {"application/pdf"},
	"jpg":  {"image/jpeg"},
	"jpeg": {"image/jpeg"},
	"png":  {"image/png"},
	"gif":  {"image/gif"},
	"doc":  {"application/msword", "application/x-ole-storage"},
	"docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

type AttachmentServiceImpl struct {
	storage      ports.StoragePort
	deletionRepo repositories.FileDeletionRepository
	config       AttachmentConfig
	allowed      map[string]bool
}

func NewAttachmentService(storage ports.StoragePort, deletionRepo repositories.FileDeletionRepository, config AttachmentConfig) services.AttachmentService {
	if config.MaxFiles <= 0 || config.MaxFiles > models.MaxTaskAttachments {
		config.MaxFiles = models.MaxTaskAttachments
	}

	allowed := make(map[string]bool, len(config.AllowedExtensions))
	for _, ext := range config.AllowedExtensions {
		ext = strings.TrimPrefix(strings.ToLower(ext), ".")
		if _, known := sniffedTypes[ext]; known {
			allowed[ext] = true
		}
	}

	return &AttachmentServiceImpl{
		storage:      storage,
		deletionRepo: deletionRepo,
		config:       config,
		allowed:      allowed,
	}
}

func (s *AttachmentServiceImpl) Accept(files []*multipart.FileHeader, freeSlots int) ([]*multipart.FileHeader, error) {
	limit := s.config.MaxFiles
	if freeSlots < limit {
		limit = freeSlots
	}
	if limit < 0 {
		limit = 0
	}
	if len(files) > limit {
		// ไฟล์เกินจำนวนช่องว่างถูกตัดทิ้งเงียบๆ
		files = files[:limit]
	}

	for _, fh := range files {
		if err := s.validate(fh); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (s *AttachmentServiceImpl) validate(fh *multipart.FileHeader) error {
	name := utils.SanitizeFileName(fh.Filename)
	ext := utils.FileExtension(name)

	if !s.allowed[ext] {
		return fmt.Errorf("%w: file %q has a disallowed type", services.ErrValidation, name)
	}
	if fh.Size <= 0 {
		return fmt.Errorf("%w: file %q is empty", services.ErrValidation, name)
	}
	if s.config.MaxFileSize > 0 && fh.Size > s.config.MaxFileSize {
		return fmt.Errorf("%w: file %q exceeds the %s limit", services.ErrValidation, name, utils.FormatBytes(uint64(s.config.MaxFileSize)))
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload %q: %w", name, err)
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return fmt.Errorf("sniff upload %q: %w", name, err)
	}
	if !matchesAny(detected, sniffedTypes[ext]) {
		return fmt.Errorf("%w: content of %q (%s) does not match its extension", services.ErrValidation, name, detected.String())
	}
	return nil
}

// matchesAny เช็ค type ที่ตรวจพบและ parent ของมัน (เช่น docx -> zip)
func matchesAny(detected *mimetype.MIME, accepted []string) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, want := range accepted {
			if m.Is(want) {
				return true
			}
		}
	}
	return false
}

func (s *AttachmentServiceImpl) Store(ctx context.Context, taskID uuid.UUID, files []*multipart.FileHeader, firstPosition int) ([]models.Attachment, error) {
	stored := make([]models.Attachment, 0, len(files))

	for i, fh := range files {
		attachment, err := s.storeOne(ctx, taskID, fh)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to store attachment, rolling back batch",
				"task_id", taskID, "filename", fh.Filename, "stored", len(stored), "error", err)
			s.Discard(ctx, stored)
			return nil, err
		}
		attachment.Position = firstPosition + i
		stored = append(stored, *attachment)
	}

	return stored, nil
}

func (s *AttachmentServiceImpl) storeOne(ctx context.Context, taskID uuid.UUID, fh *multipart.FileHeader) (*models.Attachment, error) {
	originalName := utils.SanitizeFileName(fh.Filename)
	storedName := utils.GenerateStoredFileName(originalName)
	key := utils.TaskFilePath(taskID.String(), storedName)
	mimeType := utils.MimeTypeFromExtension(originalName)

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", originalName, err)
	}
	defer f.Close()

	url, err := s.storage.UploadFile(f, key, fh.Size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("store %q: %w", originalName, err)
	}

	logger.InfoContext(ctx, "Attachment stored", "task_id", taskID, "path", key, "size", fh.Size)

	return &models.Attachment{
		TaskID:       taskID,
		Filename:     storedName,
		OriginalName: originalName,
		Path:         key,
		URL:          url,
		Size:         fh.Size,
		MimeType:     mimeType,
	}, nil
}

func (s *AttachmentServiceImpl) Discard(ctx context.Context, attachments []models.Attachment) {
	for _, a := range attachments {
		if err := s.storage.DeleteFile(a.Path); err != nil {
			logger.WarnContext(ctx, "Failed to discard stored file", "path", a.Path, "error", err)
		}
	}
}

func (s *AttachmentServiceImpl) RemovePending(ctx context.Context, pending []models.PendingFileDeletion) int {
	removed := 0
	for _, p := range pending {
		if err := s.storage.DeleteFile(p.Path); err != nil {
			logger.WarnContext(ctx, "File removal failed, left in outbox", "path", p.Path, "attempts", p.Attempts+1, "error", err)
			if markErr := s.deletionRepo.MarkFailed(ctx, p.ID, err.Error()); markErr != nil {
				logger.ErrorContext(ctx, "Failed to update outbox row", "id", p.ID, "error", markErr)
			}
			continue
		}

		if err := s.deletionRepo.Delete(ctx, p.ID); err != nil {
			// ไฟล์หายแล้ว รอบหน้า DeleteFile จะ no-op แล้วลบ row ให้
			logger.WarnContext(ctx, "Failed to clear outbox row", "id", p.ID, "error", err)
		}
		removed++
	}
	return removed
}

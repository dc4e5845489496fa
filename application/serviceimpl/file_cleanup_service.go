package serviceimpl

import (
	"context"
	"time"

	"taskboard/domain/repositories"
	"taskboard/domain/services"
	"taskboard/pkg/logger"
	"taskboard/pkg/scheduler"
)

const fileCleanupJobID = "file-cleanup"

type FileCleanupServiceImpl struct {
	scheduler         scheduler.EventScheduler
	deletionRepo      repositories.FileDeletionRepository
	attachmentService services.AttachmentService
	cronExpr          string
	batchSize         int
}

func NewFileCleanupService(
	eventScheduler scheduler.EventScheduler,
	deletionRepo repositories.FileDeletionRepository,
	attachmentService services.AttachmentService,
	cronExpr string,
	batchSize int,
) services.FileCleanupService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &FileCleanupServiceImpl{
		scheduler:         eventScheduler,
		deletionRepo:      deletionRepo,
		attachmentService: attachmentService,
		cronExpr:          cronExpr,
		batchSize:         batchSize,
	}
}

func (s *FileCleanupServiceImpl) RegisterCleanupJob() error {
	if err := scheduler.ValidateCronExpression(s.cronExpr); err != nil {
		return err
	}

	return s.scheduler.AddJob(fileCleanupJobID, s.cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if _, err := s.RunCleanup(ctx); err != nil {
			logger.Error("File cleanup sweep failed", "error", err)
		}
	})
}

// RunCleanup ลองลบไฟล์ใน outbox หนึ่ง batch
func (s *FileCleanupServiceImpl) RunCleanup(ctx context.Context) (int, error) {
	pending, err := s.deletionRepo.ListPending(ctx, s.batchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	removed := s.attachmentService.RemovePending(ctx, pending)
	logger.InfoContext(ctx, "File cleanup sweep finished", "pending", len(pending), "removed", removed)
	return removed, nil
}

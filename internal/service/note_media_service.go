package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/metrics"
	"github.com/adeshyearanty/crm-lead-service/internal/storage"
)

// NoteMediaService uploads images embedded in note content
type NoteMediaService struct {
	store   storage.Storage
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewNoteMediaService(store storage.Storage, m *metrics.Metrics, logger *zap.Logger) *NoteMediaService {
	if m == nil {
		m = metrics.NewNop()
	}
	return &NoteMediaService{
		store:   store,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Upload stores the file under notes/ and returns its key
func (s *NoteMediaService) Upload(ctx context.Context, file *Upload) (string, error) {
	if file == nil {
		return "", invalidInput("No file provided")
	}

	key := fmt.Sprintf("notes/%d-%s-%s", s.now().UnixMilli(), uuid.NewString(), baseName(file.Filename))
	if _, err := s.store.Upload(ctx, key, file.ContentType, file.Data); err != nil {
		s.metrics.RecordImageUpload("note", false)
		s.logger.Error("Failed to upload note image", zap.String("key", key), zap.Error(err))
		return "", upstream("Image upload failed: %v", err)
	}

	s.metrics.RecordImageUpload("note", true)
	s.logger.Debug("Note image uploaded", zap.String("key", key), zap.Int64("size", file.Size))
	return key, nil
}

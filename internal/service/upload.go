package service

import (
	"context"
	"fmt"

	"github.com/joeblew999/plat-ingest/internal/backend"
)

// UploadService forwards archives to the backend and records the outcome.
type UploadService struct {
	backend  Uploader
	activity *ActivityService
}

// NewUploadService creates an upload service.
func NewUploadService(b Uploader, activity *ActivityService) *UploadService {
	return &UploadService{backend: b, activity: activity}
}

// Upload sends one archive. Exactly one backend request is made; nothing is
// retried.
func (s *UploadService) Upload(ctx context.Context, f backend.File) (backend.UploadResult, error) {
	res, err := s.backend.Upload(ctx, f)
	if err != nil {
		s.activity.Record(ctx, KindUpload, f.Name, "", err)
		return backend.UploadResult{}, fmt.Errorf("upload %s: %w", f.Name, err)
	}
	s.activity.Record(ctx, KindUpload, f.Name, fmt.Sprintf("stored as %s (%s)", res.Filename, res.ContentType), nil)
	return res, nil
}

package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/instasocial/social-api/pkg/logger"
)

// UploadService accepts inline image data. There is no media storage behind
// it: the data itself is handed back as the image URL.
type UploadService struct {
	logger *logger.Logger
}

func NewUploadService(logger *logger.Logger) *UploadService {
	return &UploadService{logger: logger}
}

type UploadImageRequest struct {
	ImageData string `json:"imageData"`
}

func (s *UploadService) UploadImage(ctx context.Context, userID uuid.UUID, req *UploadImageRequest) (string, error) {
	if req.ImageData == "" {
		return "", ErrEmptyUpload
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"bytes":   len(req.ImageData),
	}).Debug("Image accepted")
	return req.ImageData, nil
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/yourusername/beams-api/internal/config"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// MaxAvatarSizeBytes caps avatar uploads at 200 KB.
const MaxAvatarSizeBytes = 200 * 1024

// MediaUploader stores user images and returns their public URL.
type MediaUploader interface {
	UploadAvatar(ctx context.Context, userID uint, data []byte) (string, error)
}

// NoopMediaUploader is used when image hosting is disabled.
type NoopMediaUploader struct{}

func (s *NoopMediaUploader) UploadAvatar(ctx context.Context, userID uint, data []byte) (string, error) {
	log.Printf("[MediaService] noop avatar upload user=%d size=%d", userID, len(data))
	return "", ErrFeatureDisabled
}

// CloudinaryMediaService uploads images to Cloudinary.
type CloudinaryMediaService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryMediaService(cfg config.CloudinaryConfig) (*CloudinaryMediaService, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary configuration is missing")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryMediaService{cld: cld}, nil
}

// UploadAvatar validates the image and uploads it, overwriting the
// user's previous avatar. Only JPEG, PNG and GIF up to 200 KB pass.
func (s *CloudinaryMediaService) UploadAvatar(ctx context.Context, userID uint, data []byte) (string, error) {
	if err := ValidateAvatar(data); err != nil {
		return "", err
	}

	publicID := fmt.Sprintf("avatars/%d", userID)
	overwrite := true

	uploadResult, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:       publicID,
		Folder:         "beams/avatars",
		Overwrite:      &overwrite,
		ResourceType:   "image",
		Transformation: "c_fill,g_face,h_500,w_500",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}

	return uploadResult.SecureURL, nil
}

// ValidateAvatar checks size and sniffed content type of an avatar image.
// The declared Content-Type header is ignored; the bytes decide.
func ValidateAvatar(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty file", apperrors.ErrValidation)
	}
	if len(data) > MaxAvatarSizeBytes {
		return fmt.Errorf("%w: image exceeds 200KB limit", apperrors.ErrValidation)
	}

	contentType := http.DetectContentType(data)
	switch contentType {
	case "image/jpeg", "image/png", "image/gif":
		return nil
	default:
		return fmt.Errorf("%w: unsupported image type %s (jpeg, png, gif allowed)", apperrors.ErrValidation, contentType)
	}
}

// ReadAvatarUpload reads an upload stream enforcing the size cap.
func ReadAvatarUpload(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxAvatarSizeBytes {
		return nil, fmt.Errorf("%w: image exceeds 200KB limit", apperrors.ErrValidation)
	}
	return data, nil
}

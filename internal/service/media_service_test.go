package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// Minimal valid file headers, padded so http.DetectContentType has
// enough bytes to sniff.
func jpegBytes() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 64)...)
}

func pngBytes() []byte {
	return append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
}

func gifBytes() []byte {
	return append([]byte("GIF89a"), make([]byte, 64)...)
}

func TestValidateAvatar_AcceptsSupportedFormats(t *testing.T) {
	assert.NoError(t, ValidateAvatar(jpegBytes()))
	assert.NoError(t, ValidateAvatar(pngBytes()))
	assert.NoError(t, ValidateAvatar(gifBytes()))
}

func TestValidateAvatar_RejectsEmptyFile(t *testing.T) {
	assert.ErrorIs(t, ValidateAvatar(nil), apperrors.ErrValidation)
}

func TestValidateAvatar_RejectsOversizedFile(t *testing.T) {
	data := append(jpegBytes(), make([]byte, MaxAvatarSizeBytes)...)
	assert.ErrorIs(t, ValidateAvatar(data), apperrors.ErrValidation)
}

func TestValidateAvatar_RejectsNonImageContent(t *testing.T) {
	err := ValidateAvatar([]byte("<!DOCTYPE html><html><body>not an image</body></html>"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// PDF magic bytes are sniffed and rejected too
	err = ValidateAvatar(append([]byte("%PDF-1.4"), make([]byte, 64)...))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReadAvatarUpload_WithinLimit(t *testing.T) {
	payload := jpegBytes()

	data, err := ReadAvatarUpload(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestReadAvatarUpload_OverLimit(t *testing.T) {
	payload := make([]byte, MaxAvatarSizeBytes+1)

	_, err := ReadAvatarUpload(bytes.NewReader(payload))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestNoopUploaderReportsDisabled(t *testing.T) {
	uploader := &NoopMediaUploader{}

	_, err := uploader.UploadAvatar(context.Background(), 7, jpegBytes())
	assert.ErrorIs(t, err, ErrFeatureDisabled)
}

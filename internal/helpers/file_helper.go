package helpers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/farellandr/thm-registration/internal/models"
)

type UploadConfig struct {
	MaxSizeBytes     int64
	AllowedMimeTypes []string
}

var DefaultImageUploadConfig = UploadConfig{
	MaxSizeBytes: 5 * 1024 * 1024, // 5MB
	AllowedMimeTypes: []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/webp",
	},
}

// FileConstraintError rejects an upload before it reaches the pipeline.
type FileConstraintError struct {
	Reason string
}

func (e *FileConstraintError) Error() string {
	return e.Reason
}

// ReadImageFile checks size and sniffed type of an uploaded image and reads
// it into memory.
func ReadImageFile(fileHeader *multipart.FileHeader, configs ...UploadConfig) (*models.Attachment, error) {
	config := DefaultImageUploadConfig
	if len(configs) > 0 {
		config = configs[0]
	}

	if fileHeader.Size > config.MaxSizeBytes {
		return nil, &FileConstraintError{
			Reason: fmt.Sprintf("file size exceeds maximum limit of %d MB", config.MaxSizeBytes/(1024*1024)),
		}
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// One byte past the limit is enough to tell an oversized stream apart.
	data, err := io.ReadAll(io.LimitReader(src, config.MaxSizeBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > config.MaxSizeBytes {
		return nil, &FileConstraintError{
			Reason: fmt.Sprintf("file size exceeds maximum limit of %d MB", config.MaxSizeBytes/(1024*1024)),
		}
	}

	mimeType := http.DetectContentType(data)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}

	mimeTypeAllowed := false
	for _, allowedType := range config.AllowedMimeTypes {
		if mimeType == allowedType {
			mimeTypeAllowed = true
			break
		}
	}
	if !mimeTypeAllowed {
		return nil, &FileConstraintError{
			Reason: "invalid file type. Only JPEG, PNG and WebP images are allowed",
		}
	}

	return &models.Attachment{
		Filename:    fileHeader.Filename,
		ContentType: mimeType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

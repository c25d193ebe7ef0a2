package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrUnsupportedContentType is returned for uploads that are not a supported image type.
var ErrUnsupportedContentType = errors.New("unsupported image content type")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// ObjectExists reports whether an object has been stored under objectKey.
	ObjectExists(ctx context.Context, objectKey string) (bool, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

const exerciseImagePrefix = "exercises"

// ExerciseImageKey builds a fresh object key for an image of exerciseID.
func ExerciseImageKey(exerciseID primitive.ObjectID, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	return path.Join(exerciseImagePrefix, exerciseID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), ext)), nil
}

// IsExerciseImageKey reports whether key was issued for exerciseID by ExerciseImageKey.
func IsExerciseImageKey(exerciseID primitive.ObjectID, key string) bool {
	dir, file := path.Split(key)
	if path.Clean(dir) != path.Join(exerciseImagePrefix, exerciseID.Hex()) {
		return false
	}
	name, ext, ok := strings.Cut(file, ".")
	if !ok {
		return false
	}
	if _, err := uuid.Parse(name); err != nil {
		return false
	}
	for _, known := range imageExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

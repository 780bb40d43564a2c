package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// StoredObject describes an uploaded object.
type StoredObject struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	ETag     string `json:"etag,omitempty"`
}

// ObjectStorage abstracts the backing blob store.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Config bounds uploads.
type Config struct {
	MaxUploadBytes int64
	PublicBaseURL  string
}

// Service stores user uploads (listing photos, post images).
type Service interface {
	UploadDataURI(ctx context.Context, userID, dataURI string) (StoredObject, error)
	Fetch(ctx context.Context, key string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, key string) error
}

type service struct {
	cfg     Config
	storage ObjectStorage
	now     func() time.Time
}

// NewService builds the media service.
func NewService(cfg Config, storage ObjectStorage) Service {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 8 << 20
	}
	return &service{cfg: cfg, storage: storage, now: time.Now}
}

var dataURIPattern = regexp.MustCompile(`^data:([^;]+);base64,(.+)$`)

// extByMime maps accepted image types to file extensions.
var extByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadDataURI decodes a base64 image data URI and persists it under a
// generated key.
func (s *service) UploadDataURI(ctx context.Context, userID, dataURI string) (StoredObject, error) {
	match := dataURIPattern.FindStringSubmatch(strings.TrimSpace(dataURI))
	if match == nil {
		return StoredObject{}, apperrors.Wrap("invalid_input", "expected a base64 data URI", nil)
	}
	mimeType := match[1]
	ext, ok := extByMime[mimeType]
	if !ok {
		return StoredObject{}, apperrors.Wrap("invalid_input", "unsupported image type "+mimeType, nil)
	}
	data, err := base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return StoredObject{}, apperrors.Wrap("invalid_input", "invalid base64 payload", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return StoredObject{}, apperrors.Wrap("invalid_input", "image exceeds the upload size limit", nil)
	}

	key := fmt.Sprintf("uploads/%s/%s/%s%s", userID, s.now().UTC().Format("2006/01"), uuid.NewString(), ext)
	obj, err := s.storage.Put(ctx, key, data, mimeType)
	if err != nil {
		return StoredObject{}, apperrors.Wrap("storage_error", "failed to store upload", err)
	}
	if s.cfg.PublicBaseURL != "" {
		obj.URL = strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	} else {
		obj.URL = "/api/v1/media/" + key
	}
	return obj, nil
}

func (s *service) Fetch(ctx context.Context, key string) (io.ReadCloser, string, error) {
	mimeType := "application/octet-stream"
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		ext := strings.ToLower(key[dot:])
		for mime, e := range extByMime {
			if e == ext {
				mimeType = mime
				break
			}
		}
	}
	rc, err := s.storage.Get(ctx, key)
	if err != nil {
		return nil, "", apperrors.Wrap("not_found", "object not found", err)
	}
	return rc, mimeType, nil
}

func (s *service) Remove(ctx context.Context, key string) error {
	if err := s.storage.Delete(ctx, key); err != nil {
		return apperrors.Wrap("storage_error", "failed to delete object", err)
	}
	return nil
}

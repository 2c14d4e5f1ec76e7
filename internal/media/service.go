package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/orangegegege/equipment-manager/pkg/config"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
	"github.com/orangegegege/equipment-manager/pkg/logger"
)

type objectStore interface {
	DefaultBucket() string
	ObjectName(fileName string) string
	UploadObject(ctx context.Context, object, contentType string, data []byte) (string, error)
	DeleteObject(ctx context.Context, object string) error
}

// UploadInput carries one raw image submitted alongside an item.
type UploadInput struct {
	ContentType string
	Data        []byte
}

// UploadResult points at the stored object.
type UploadResult struct {
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
}

// Service stores and removes item images in the object bucket.
type Service interface {
	UploadItemImage(ctx context.Context, itemID uuid.UUID, input UploadInput) (*UploadResult, error)
	RemoveItemImage(ctx context.Context, imageURL string) error
}

type service struct {
	store          objectStore
	logg           *logger.Logger
	maxUploadBytes int64
}

// NewService constructs a media service backed by the provided object store.
func NewService(store objectStore, cfg config.MediaConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.MaxUploadMB < 1 {
		return nil, fmt.Errorf("max upload size must be at least 1 MB")
	}
	return &service{
		store:          store,
		logg:           logg,
		maxUploadBytes: int64(cfg.MaxUploadMB) << 20,
	}, nil
}

func (s *service) UploadItemImage(ctx context.Context, itemID uuid.UUID, input UploadInput) (*UploadResult, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if len(input.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image data required")
	}
	if int64(len(input.Data)) > s.maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("image exceeds the %d MB upload limit", s.maxUploadBytes>>20))
	}

	contentType, ok := normalizeImageType(input.ContentType)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("content type must be one of %s", strings.Join(allowedImageTypes(), ", ")))
	}

	object := s.store.ObjectName(fmt.Sprintf("items/%s/%s%s", itemID, uuid.New(), imageExtensions[contentType]))
	publicURL, err := s.store.UploadObject(ctx, object, contentType, input.Data)
	if err != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{"equipment_id": itemID.String(), "object": object})
		s.logg.Error(lctx, "uploading item image", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "image upload failed")
	}

	return &UploadResult{ObjectKey: object, URL: publicURL}, nil
}

func (s *service) RemoveItemImage(ctx context.Context, imageURL string) error {
	object, ok := s.objectKeyFromURL(imageURL)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "image url does not point into the equipment bucket")
	}
	if err := s.store.DeleteObject(ctx, object); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "image delete failed")
	}
	return nil
}

// objectKeyFromURL inverts the public URL printed at upload time. URLs from
// other buckets or hosts are rejected rather than guessed at.
func (s *service) objectKeyFromURL(imageURL string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil || parsed.Host != "storage.googleapis.com" {
		return "", false
	}
	prefix := "/" + s.store.DefaultBucket() + "/"
	if !strings.HasPrefix(parsed.Path, prefix) {
		return "", false
	}
	object := strings.TrimPrefix(parsed.Path, prefix)
	if object == "" {
		return "", false
	}
	return object, true
}

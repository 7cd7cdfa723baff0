package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiabytes/chatX/internal/models"
	"github.com/xiabytes/chatX/internal/repository"
	"github.com/xiabytes/chatX/pkg/apperrors"
)

// ObjectStore is the slice of object storage the media service needs. The
// data layer only ever persists the resulting URL string.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	PublicURL(key string) (string, bool)
}

// Thumbnailer produces a reduced jpeg for image uploads.
type Thumbnailer func(data []byte) ([]byte, error)

type MediaService struct {
	store      repository.Store
	objects    ObjectStore
	thumbnail  Thumbnailer
	presignTTL time.Duration
	log        *zap.SugaredLogger
}

func NewMediaService(store repository.Store, objects ObjectStore, thumbnail Thumbnailer, presignTTL time.Duration, log *zap.SugaredLogger) *MediaService {
	return &MediaService{
		store:      store,
		objects:    objects,
		thumbnail:  thumbnail,
		presignTTL: presignTTL,
		log:        log,
	}
}

// UploadURL is the first half of the two-step upload: the client PUTs the file
// to URL, then asks ResolveURL for a readable one using Key.
type UploadURL struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (s *MediaService) CreateUploadURL(ctx context.Context, userID, filename, contentType string) (UploadURL, error) {
	key := objectKey(userID, filename)
	url, err := s.objects.PresignPut(ctx, key, contentType, s.presignTTL)
	if err != nil {
		return UploadURL{}, apperrors.Persistence("creating upload url failed", err)
	}
	return UploadURL{Key: key, URL: url}, nil
}

// ResolveURL turns a storage key into a readable URL: the public object URL
// when the bucket allows it, a presigned GET otherwise.
func (s *MediaService) ResolveURL(ctx context.Context, key string) (string, error) {
	if url, ok := s.objects.PublicURL(key); ok {
		return url, nil
	}
	url, err := s.objects.PresignGet(ctx, key, s.presignTTL)
	if err != nil {
		return "", apperrors.Persistence("resolving media url failed", err)
	}
	return url, nil
}

// Upload stores the bytes directly, adds a jpeg thumbnail for images, and
// records asset metadata in the media collection.
func (s *MediaService) Upload(ctx context.Context, userID, filename, contentType string, data []byte) (*models.Media, error) {
	key := objectKey(userID, filename)
	url, err := s.objects.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, apperrors.Persistence("file upload failed", err)
	}

	mediaType := models.MessageTypeFile
	thumbKey := ""
	if strings.HasPrefix(contentType, "image/") {
		mediaType = models.MessageTypeImage
		if s.thumbnail != nil {
			if thumb, err := s.thumbnail(data); err == nil {
				thumbKey = key + "_thumb.jpg"
				if _, err := s.objects.Upload(ctx, thumbKey, "image/jpeg", thumb); err != nil {
					s.log.Warnw("thumbnail upload failed", "key", thumbKey, "error", err)
					thumbKey = ""
				}
			}
		}
	}

	m := &models.Media{
		ID:          uuid.NewString(),
		UserID:      userID,
		Key:         key,
		URL:         url,
		Thumbnail:   thumbKey,
		Type:        mediaType,
		Size:        int64(len(data)),
		ContentType: contentType,
		FileName:    filename,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.InsertMedia(ctx, m); err != nil {
		return nil, apperrors.Persistence("recording media metadata failed", err)
	}
	return m, nil
}

func (s *MediaService) Get(ctx context.Context, id string) (*models.Media, error) {
	m, err := s.store.GetMedia(ctx, id)
	if err != nil {
		return nil, apperrors.Persistence("reading media did not work", err)
	}
	if m == nil {
		return nil, apperrors.NotFound("media not found")
	}
	return m, nil
}

func objectKey(userID, filename string) string {
	return userID + "/" + uuid.NewString() + "_" + filename
}

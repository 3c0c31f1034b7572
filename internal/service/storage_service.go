package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	maxAvatarSize    = 5 * 1024 * 1024
	presignedURLTTL  = 15 * time.Minute
	avatarPathPrefix = "avatars"
)

var (
	ErrStorageDisabled     = errors.New("avatar storage is not configured")
	ErrFileTooBig          = errors.New("file size exceeds 5MB limit")
	ErrInvalidFileType     = errors.New("invalid file type, only JPEG and PNG images are allowed")
	ErrBucketInitFailed    = errors.New("failed to prepare storage bucket")
	ErrUploadFailed        = errors.New("failed to upload file")
	ErrDeleteFailed        = errors.New("failed to delete file")
	ErrURLGenerationFailed = errors.New("failed to generate presigned URL")
	ErrUnauthorizedObject  = errors.New("unauthorized access to object")

	allowedAvatarTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
	}
)

type StorageService interface {
	UploadAvatar(ctx context.Context, userID uint, file io.Reader, fileSize int64) (string, error)
	DeleteAvatar(ctx context.Context, userID uint, objectKey string) error
	AvatarURL(ctx context.Context, objectKey string) (string, error)
}

// MinIOStorageService stores avatars in an S3-compatible bucket. Bucket
// creation is deferred to first use so the app can start without the
// object store being reachable.
type MinIOStorageService struct {
	client     *minio.Client
	bucketName string
	initOnce   sync.Once
	initErr    error
}

func NewMinIOStorageService(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOStorageService{client: client, bucketName: bucketName}, nil
}

func (s *MinIOStorageService) lazyInit(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = fmt.Errorf("%w: check bucket existence: %v", ErrBucketInitFailed, err)
			return
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
				s.initErr = fmt.Errorf("%w: create bucket: %v", ErrBucketInitFailed, err)
			}
		}
	})
	return s.initErr
}

// UploadAvatar sniffs the content type from the payload itself; the
// client-declared Content-Type is never trusted.
func (s *MinIOStorageService) UploadAvatar(ctx context.Context, userID uint, file io.Reader, fileSize int64) (string, error) {
	if fileSize > maxAvatarSize {
		return "", ErrFileTooBig
	}

	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("%w: read file for content detection: %v", ErrUploadFailed, err)
	}
	buf = buf[:n]

	detected := strings.ToLower(strings.TrimSpace(http.DetectContentType(buf)))
	if _, ok := allowedAvatarTypes[detected]; !ok {
		return "", ErrInvalidFileType
	}

	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}

	fullFile := io.MultiReader(bytes.NewReader(buf), file)
	objectKey := fmt.Sprintf("%s/user-%d/%s%s", avatarPathPrefix, userID, uuid.New().String(), avatarExtension(detected))
	_, err = s.client.PutObject(ctx, s.bucketName, objectKey, fullFile, fileSize, minio.PutObjectOptions{
		ContentType: detected,
		UserMetadata: map[string]string{
			"User-ID":     fmt.Sprintf("%d", userID),
			"Uploaded-At": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return objectKey, nil
}

// DeleteAvatar removes an object after checking it sits under the user's
// own prefix.
func (s *MinIOStorageService) DeleteAvatar(ctx context.Context, userID uint, objectKey string) error {
	if strings.TrimSpace(objectKey) == "" {
		return nil
	}
	if strings.Contains(objectKey, "..") {
		return ErrUnauthorizedObject
	}
	expectedPrefix := fmt.Sprintf("%s/user-%d/", avatarPathPrefix, userID)
	if !strings.HasPrefix(objectKey, expectedPrefix) {
		return ErrUnauthorizedObject
	}

	if err := s.lazyInit(ctx); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

func (s *MinIOStorageService) AvatarURL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", fmt.Errorf("%w: empty object key", ErrURLGenerationFailed)
	}
	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, presignedURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLGenerationFailed, err)
	}
	return presigned.String(), nil
}

// DisabledStorageService stands in when no object store is configured.
// Uploads fail loudly; reads degrade to "no avatar".
type DisabledStorageService struct{}

func NewDisabledStorageService() *DisabledStorageService {
	return &DisabledStorageService{}
}

func (s *DisabledStorageService) UploadAvatar(context.Context, uint, io.Reader, int64) (string, error) {
	return "", ErrStorageDisabled
}

func (s *DisabledStorageService) DeleteAvatar(context.Context, uint, string) error {
	return nil
}

func (s *DisabledStorageService) AvatarURL(context.Context, string) (string, error) {
	return "", nil
}

func avatarExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ""
	}
}

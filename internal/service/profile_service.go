package service

import (
	"context"
	"io"
	"strings"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/observability"
	"go-blog-rbac-service/internal/repository"
)

type ProfileInput struct {
	Name  string
	Phone string
}

// ProfileService lets a signed-in user edit their own account. It needs
// no permission checks beyond an authenticated identity.
type ProfileService struct {
	userRepo repository.UserRepository
	storage  StorageService
}

func NewProfileService(userRepo repository.UserRepository, storage StorageService) *ProfileService {
	return &ProfileService{userRepo: userRepo, storage: storage}
}

func (s *ProfileService) Update(ctx context.Context, current *domain.User, in ProfileInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)

	fields := map[string]string{}
	if len(in.Name) < 2 {
		fields["name"] = "Name must be at least 2 characters long."
	} else if len(in.Name) > 100 {
		fields["name"] = "Name must be less than 100 characters."
	}
	if in.Phone != "" && !phoneRe.MatchString(in.Phone) {
		fields["phone"] = "Please enter a valid phone number."
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.userRepo.Update(current.ID, map[string]any{"name": in.Name, "phone": in.Phone}); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(current.ID)
}

// UpdateAvatar stores the new avatar before dropping the old one so a
// failed upload never leaves the profile pointing at nothing.
func (s *ProfileService) UpdateAvatar(ctx context.Context, current *domain.User, file io.Reader, fileSize int64) (*domain.User, error) {
	objectKey, err := s.storage.UploadAvatar(ctx, current.ID, file, fileSize)
	if err != nil {
		observability.RecordAvatarUpload(ctx, "error")
		return nil, err
	}
	oldKey := current.AvatarURL
	if err := s.userRepo.Update(current.ID, map[string]any{"avatar_url": objectKey}); err != nil {
		observability.RecordAvatarUpload(ctx, "error")
		return nil, err
	}
	if oldKey != "" {
		_ = s.storage.DeleteAvatar(ctx, current.ID, oldKey)
	}
	observability.RecordAvatarUpload(ctx, "success")
	return s.userRepo.FindByID(current.ID)
}

// AvatarURL resolves the stored object key to a short-lived presigned
// URL. Empty keys yield an empty URL, not an error.
func (s *ProfileService) AvatarURL(ctx context.Context, user *domain.User) (string, error) {
	if user.AvatarURL == "" {
		return "", nil
	}
	return s.storage.AvatarURL(ctx, user.AvatarURL)
}

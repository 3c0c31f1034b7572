package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/observability"
	"go-blog-rbac-service/internal/repository"
)

var ErrPermissionDenied = errors.New("permission denied")

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

type PostInput struct {
	Title   string
	Content string
	Excerpt string
	Status  string
}

type PostService struct {
	postRepo repository.PostRepository
	authz    *AuthzService
}

func NewPostService(postRepo repository.PostRepository, authz *AuthzService) *PostService {
	return &PostService{postRepo: postRepo, authz: authz}
}

// ListPublished serves the public feed. No identity required.
func (s *PostService) ListPublished(req repository.PageRequest) (repository.PageResult[domain.Post], error) {
	return s.postRepo.ListPublished(req)
}

// GetPublished serves the public post page. Unpublished posts are
// indistinguishable from missing ones.
func (s *PostService) GetPublished(id uint) (*domain.Post, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post.Status != domain.PostStatusPublished {
		return nil, repository.ErrPostNotFound
	}
	return post, nil
}

// List returns the dashboard listing: every post for holders of
// posts:read, otherwise only the caller's own.
func (s *PostService) List(ctx context.Context, current *domain.User, req repository.PageRequest) (repository.PageResult[domain.Post], error) {
	if current == nil {
		return repository.PageResult[domain.Post]{}, ErrPermissionDenied
	}
	filter := repository.PostFilter{}
	if !s.authz.HasPermission(ctx, current, "posts", "read") {
		filter.AuthorID = current.ID
	}
	return s.postRepo.ListPaged(req, filter)
}

// Get loads a post for the dashboard. Drafts are visible to the owner and
// to holders of posts:read.
func (s *PostService) Get(ctx context.Context, current *domain.User, id uint) (*domain.Post, error) {
	if current == nil {
		return nil, ErrPermissionDenied
	}
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != current.ID && !s.authz.HasPermission(ctx, current, "posts", "read") {
		return nil, ErrPermissionDenied
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, current *domain.User, in PostInput) (*domain.Post, error) {
	if !s.authz.HasPermission(ctx, current, "posts", "create") {
		observability.RecordPostMutation(ctx, "create", "denied")
		return nil, ErrPermissionDenied
	}
	if err := validatePostInput(&in); err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:    in.Title,
		Slug:     slugify(in.Title),
		Content:  in.Content,
		Excerpt:  in.Excerpt,
		Status:   in.Status,
		AuthorID: current.ID,
	}
	if in.Status == domain.PostStatusPublished {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}
	if err := s.postRepo.Create(post); err != nil {
		observability.RecordPostMutation(ctx, "create", "error")
		return nil, err
	}
	observability.RecordPostMutation(ctx, "create", "success")
	return post, nil
}

func (s *PostService) Update(ctx context.Context, current *domain.User, id uint, in PostInput) (*domain.Post, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanModifyOwned(ctx, current, "posts", "update", post.AuthorID) {
		observability.RecordPostMutation(ctx, "update", "denied")
		return nil, ErrPermissionDenied
	}
	if in.Status == "" {
		in.Status = post.Status
	}
	if err := validatePostInput(&in); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"title":   in.Title,
		"content": in.Content,
		"excerpt": in.Excerpt,
		"status":  in.Status,
	}
	// published_at is stamped on the first transition to PUBLISHED and
	// never rewritten after that, even across unpublish/republish.
	if in.Status == domain.PostStatusPublished && post.PublishedAt == nil {
		now := time.Now().UTC()
		updates["published_at"] = &now
	}
	if err := s.postRepo.Update(id, updates); err != nil {
		observability.RecordPostMutation(ctx, "update", "error")
		return nil, err
	}
	observability.RecordPostMutation(ctx, "update", "success")
	return s.postRepo.FindByID(id)
}

func (s *PostService) SetStatus(ctx context.Context, current *domain.User, id uint, status string) (*domain.Post, error) {
	if !domain.ValidPostStatus(status) {
		return nil, &ValidationError{Fields: map[string]string{"status": "Invalid status."}}
	}
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanModifyOwned(ctx, current, "posts", "update", post.AuthorID) {
		observability.RecordPostMutation(ctx, "set_status", "denied")
		return nil, ErrPermissionDenied
	}

	updates := map[string]any{"status": status}
	if status == domain.PostStatusPublished && post.PublishedAt == nil {
		now := time.Now().UTC()
		updates["published_at"] = &now
	}
	if err := s.postRepo.Update(id, updates); err != nil {
		observability.RecordPostMutation(ctx, "set_status", "error")
		return nil, err
	}
	observability.RecordPostMutation(ctx, "set_status", "success")
	return s.postRepo.FindByID(id)
}

func (s *PostService) Delete(ctx context.Context, current *domain.User, id uint) error {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return err
	}
	if !s.authz.CanModifyOwned(ctx, current, "posts", "delete", post.AuthorID) {
		observability.RecordPostMutation(ctx, "delete", "denied")
		return ErrPermissionDenied
	}
	if err := s.postRepo.DeleteByID(id); err != nil {
		observability.RecordPostMutation(ctx, "delete", "error")
		return err
	}
	observability.RecordPostMutation(ctx, "delete", "success")
	return nil
}

func validatePostInput(in *PostInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if in.Status == "" {
		in.Status = domain.PostStatusDraft
	}

	fields := map[string]string{}
	if len(in.Title) < 3 {
		fields["title"] = "Title must be at least 3 characters."
	} else if len(in.Title) > 200 {
		fields["title"] = "Title must be less than 200 characters."
	}
	if len(in.Content) < 10 {
		fields["content"] = "Content must be at least 10 characters."
	}
	if len(in.Excerpt) > 500 {
		fields["excerpt"] = "Excerpt must be less than 500 characters."
	}
	if !domain.ValidPostStatus(in.Status) {
		fields["status"] = "Invalid status."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func slugify(title string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

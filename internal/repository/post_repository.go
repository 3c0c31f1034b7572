package repository

import (
	"context"
	"errors"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/observability"

	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

// PostFilter narrows list queries. Zero values mean "no filter".
type PostFilter struct {
	AuthorID uint
	Status   string
}

type PostRepository interface {
	Create(post *domain.Post) error
	FindByID(id uint) (*domain.Post, error)
	ListPaged(req PageRequest, filter PostFilter) (PageResult[domain.Post], error)
	ListPublished(req PageRequest) (PageResult[domain.Post], error)
	Update(id uint, updates map[string]any) error
	DeleteByID(id uint) error
}

type GormPostRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(post *domain.Post) error {
	if err := r.db.Create(post).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "post", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "post", "create", "success")
	return nil
}

func (r *GormPostRepository) FindByID(id uint) (*domain.Post, error) {
	var post domain.Post
	if err := r.db.Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "post", "find_by_id", "not_found")
			return nil, ErrPostNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "post", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "post", "find_by_id", "success")
	return &post, nil
}

func (r *GormPostRepository) ListPaged(req PageRequest, filter PostFilter) (PageResult[domain.Post], error) {
	normalized := req.clamp()
	result := PageResult[domain.Post]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	base := r.db.Model(&domain.Post{})
	if filter.AuthorID != 0 {
		base = base.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Status != "" {
		base = base.Where("status = ?", filter.Status)
	}
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "post", "list_paged", "error")
		return PageResult[domain.Post]{}, err
	}
	if err := base.Preload("Author").Order("id desc").Offset(normalized.offset()).Limit(normalized.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "post", "list_paged", "error")
		return PageResult[domain.Post]{}, err
	}
	result.finish()
	observability.RecordRepositoryOperation(context.Background(), "post", "list_paged", "success")
	return result, nil
}

func (r *GormPostRepository) ListPublished(req PageRequest) (PageResult[domain.Post], error) {
	normalized := req.clamp()
	result := PageResult[domain.Post]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	base := r.db.Model(&domain.Post{}).Where("status = ?", domain.PostStatusPublished)
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "post", "list_published", "error")
		return PageResult[domain.Post]{}, err
	}
	if err := base.Preload("Author").Order("published_at desc").Offset(normalized.offset()).Limit(normalized.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "post", "list_published", "error")
		return PageResult[domain.Post]{}, err
	}
	result.finish()
	observability.RecordRepositoryOperation(context.Background(), "post", "list_published", "success")
	return result, nil
}

func (r *GormPostRepository) Update(id uint, updates map[string]any) error {
	res := r.db.Model(&domain.Post{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "post", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "post", "update", "not_found")
		return ErrPostNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "post", "update", "success")
	return nil
}

func (r *GormPostRepository) DeleteByID(id uint) error {
	res := r.db.Delete(&domain.Post{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "post", "delete_by_id", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "post", "delete_by_id", "not_found")
		return ErrPostNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "post", "delete_by_id", "success")
	return nil
}

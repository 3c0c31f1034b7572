package repository

import (
	"context"
	"errors"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/observability"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	FindByID(id uint) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	Create(user *domain.User) error
	Update(id uint, updates map[string]any) error
	ListPaged(req PageRequest) (PageResult[domain.User], error)
	SetRole(userID, roleID uint) error
	SetStatus(userID uint, status string) error
	DeleteByID(id uint) error
	CountByRole(roleID uint) (int64, error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.Preload("Role.Permissions").First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "success")
	return &u, nil
}

func (r *GormUserRepository) FindByEmail(email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.Preload("Role.Permissions").Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", "find_by_email", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "find_by_email", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "find_by_email", "success")
	return &u, nil
}

func (r *GormUserRepository) Create(user *domain.User) error {
	if err := r.db.Create(user).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "create", "success")
	return nil
}

func (r *GormUserRepository) Update(id uint, updates map[string]any) error {
	res := r.db.Model(&domain.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "user", "update", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "update", "success")
	return nil
}

func (r *GormUserRepository) ListPaged(req PageRequest) (PageResult[domain.User], error) {
	normalized := req.clamp()
	result := PageResult[domain.User]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	base := r.db.Model(&domain.User{})
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "list_paged", "error")
		return PageResult[domain.User]{}, err
	}
	if err := base.Preload("Role").Order("id desc").Offset(normalized.offset()).Limit(normalized.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "list_paged", "error")
		return PageResult[domain.User]{}, err
	}
	result.finish()
	observability.RecordRepositoryOperation(context.Background(), "user", "list_paged", "success")
	return result, nil
}

func (r *GormUserRepository) SetRole(userID, roleID uint) error {
	return r.Update(userID, map[string]any{"role_id": roleID})
}

func (r *GormUserRepository) SetStatus(userID uint, status string) error {
	return r.Update(userID, map[string]any{"status": status})
}

func (r *GormUserRepository) DeleteByID(id uint) error {
	res := r.db.Delete(&domain.User{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "delete_by_id", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "user", "delete_by_id", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "delete_by_id", "success")
	return nil
}

func (r *GormUserRepository) CountByRole(roleID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.User{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}

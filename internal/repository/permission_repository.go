package repository

import (
	"errors"

	"go-blog-rbac-service/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrPermissionNotFound  = errors.New("permission not found")
	ErrDuplicatePermission = errors.New("permission pair already exists")
)

type PermissionRepository interface {
	List() ([]domain.Permission, error)
	FindByResourceAction(resource, action string) (*domain.Permission, error)
	Create(perm *domain.Permission) error
}

type GormPermissionRepository struct{ db *gorm.DB }

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &GormPermissionRepository{db: db}
}

func (r *GormPermissionRepository) List() ([]domain.Permission, error) {
	var perms []domain.Permission
	err := r.db.Order("resource, action").Find(&perms).Error
	return perms, err
}

func (r *GormPermissionRepository) FindByResourceAction(resource, action string) (*domain.Permission, error) {
	var p domain.Permission
	if err := r.db.Where("resource = ? AND action = ?", resource, action).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormPermissionRepository) Create(perm *domain.Permission) error {
	var existing domain.Permission
	err := r.db.Where("resource = ? AND action = ?", perm.Resource, perm.Action).First(&existing).Error
	if err == nil {
		return ErrDuplicatePermission
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.Create(perm).Error
}

package repository

import (
	"errors"

	"go-blog-rbac-service/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrRoleNotFound    = errors.New("role not found")
	ErrNoDefaultRole   = errors.New("no default role configured")
	ErrDuplicateRole   = errors.New("role name already exists")
	ErrUnknownGrantIDs = errors.New("unknown permission ids in grant set")
)

type RoleRepository interface {
	FindByID(id uint) (*domain.Role, error)
	FindByName(name string) (*domain.Role, error)
	FindDefault() (*domain.Role, error)
	List() ([]domain.Role, error)
	Create(role *domain.Role, permissionIDs []uint) error
	// ReplacePermissions swaps the role's entire grant set atomically.
	// There is no partial edit; callers always send the full desired set.
	ReplacePermissions(roleID uint, permissionIDs []uint) error
}

type GormRoleRepository struct{ db *gorm.DB }

func NewRoleRepository(db *gorm.DB) RoleRepository { return &GormRoleRepository{db: db} }

func (r *GormRoleRepository) FindByID(id uint) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.Preload("Permissions").First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *GormRoleRepository) FindByName(name string) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.Preload("Permissions").Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *GormRoleRepository) FindDefault() (*domain.Role, error) {
	var role domain.Role
	if err := r.db.Where("is_default = ?", true).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDefaultRole
		}
		return nil, err
	}
	return &role, nil
}

func (r *GormRoleRepository) List() ([]domain.Role, error) {
	var roles []domain.Role
	err := r.db.Preload("Permissions").Order("id").Find(&roles).Error
	return roles, err
}

func (r *GormRoleRepository) Create(role *domain.Role, permissionIDs []uint) error {
	var existing domain.Role
	err := r.db.Where("name = ?", role.Name).First(&existing).Error
	if err == nil {
		return ErrDuplicateRole
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		return replacePermissionsTx(tx, role.ID, permissionIDs)
	})
}

func (r *GormRoleRepository) ReplacePermissions(roleID uint, permissionIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var role domain.Role
		if err := tx.First(&role, roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return err
		}
		return replacePermissionsTx(tx, roleID, permissionIDs)
	})
}

func replacePermissionsTx(tx *gorm.DB, roleID uint, permissionIDs []uint) error {
	if err := tx.Where("role_id = ?", roleID).Delete(&domain.RolePermission{}).Error; err != nil {
		return err
	}
	if len(permissionIDs) == 0 {
		return nil
	}
	var count int64
	if err := tx.Model(&domain.Permission{}).Where("id IN ?", permissionIDs).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(permissionIDs)) {
		return ErrUnknownGrantIDs
	}
	rows := make([]domain.RolePermission, 0, len(permissionIDs))
	for _, pid := range permissionIDs {
		rows = append(rows, domain.RolePermission{RoleID: roleID, PermissionID: pid})
	}
	return tx.Create(&rows).Error
}

package postgres

import (
	"context"

	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// roleRepository implements the domain.RoleRepository interface using GORM.
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository is the constructor for roleRepository.
func NewRoleRepository(db *gorm.DB) repository.RoleRepository {
	return &roleRepository{db: db}
}

// FindByID retrieves a single role by its unique ID.
func (repo *roleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Role, error) {
	var roleM model.RoleModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&roleM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoleNotFound
		}

		return nil, errors.Wrap(err, "failed to find role by id")
	}

	return toRoleDomain(&roleM), nil
}

// FindByName retrieves a single role by its normalized name.
func (repo *roleRepository) FindByName(ctx context.Context, name string) (*entity.Role, error) {
	var roleM model.RoleModel
	err := repo.db.WithContext(ctx).
		Where("name = ?", entity.NormalizeRoleName(name)).
		First(&roleM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoleNotFound
		}

		return nil, errors.Wrap(err, "failed to find role by name")
	}

	return toRoleDomain(&roleM), nil
}

// SeedDefaultRoles inserts the built-in roles when the roles table is empty.
// Safe to run on every startup.
func (repo *roleRepository) SeedDefaultRoles(ctx context.Context) error {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.RoleModel{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to count roles")
	}
	if count > 0 {
		return nil
	}

	defaults := entity.DefaultRoles()
	models := make([]*model.RoleModel, 0, len(defaults))
	for _, role := range defaults {
		roleM := fromRoleDomain(role)
		if roleM.ID == uuid.Nil {
			roleM.ID = uuid.New()
		}
		models = append(models, roleM)
	}

	if err := repo.db.WithContext(ctx).Create(models).Error; err != nil {
		// A concurrent replica may have seeded first; the unique index on
		// name turns that race into a duplicate key error we can ignore.
		if isUniqueConstraintViolation(err) {
			return nil
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to seed default roles")
	}

	return nil
}

// --- Mapper Functions ---

// toRoleDomain converts a GORM RoleModel to a domain Role entity.
func toRoleDomain(data *model.RoleModel) *entity.Role {
	if data == nil {
		return nil
	}

	return &entity.Role{
		ID:          data.ID,
		Name:        data.Name,
		Permissions: data.Permissions,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// fromRoleDomain converts a domain Role entity to a GORM RoleModel.
func fromRoleDomain(data *entity.Role) *model.RoleModel {
	if data == nil {
		return nil
	}

	return &model.RoleModel{
		ID:          data.ID,
		Name:        data.Name,
		Permissions: data.Permissions,
	}
}

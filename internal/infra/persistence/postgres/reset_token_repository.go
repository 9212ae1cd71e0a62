package postgres

import (
	"context"
	"time"

	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// resetTokenRepository implements the domain.ResetTokenRepository interface.
type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository is the constructor for resetTokenRepository.
func NewResetTokenRepository(db *gorm.DB) repository.ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Upsert stores the reset token for its user, replacing any pending one. A
// repeated forgot-password request therefore invalidates the earlier link.
func (repo *resetTokenRepository) Upsert(ctx context.Context, token *entity.ResetToken) error {
	tokenM := fromResetTokenDomain(token)
	if tokenM.ID == uuid.Nil {
		tokenM.ID = uuid.New()
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at", "created_at"}),
		}).
		Create(tokenM).Error

	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert reset token")
	}

	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// Consume deletes the live reset token matching the stored hash and returns
// it. The delete and the lookup are one statement, so a token redeems at most
// once even under concurrent requests.
func (repo *resetTokenRepository) Consume(ctx context.Context, tokenHash string) (*entity.ResetToken, error) {
	var tokenM model.ResetTokenModel
	result := repo.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("token_hash = ? AND expires_at > ?", tokenHash, time.Now()).
		Delete(&tokenM)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to consume reset token")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrResetTokenNotFound
	}

	return toResetTokenDomain(&tokenM), nil
}

// --- Mapper Functions ---

// toResetTokenDomain converts a GORM ResetTokenModel to a domain ResetToken entity.
func toResetTokenDomain(data *model.ResetTokenModel) *entity.ResetToken {
	if data == nil {
		return nil
	}

	return &entity.ResetToken{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}

// fromResetTokenDomain converts a domain ResetToken entity to a GORM ResetTokenModel.
func fromResetTokenDomain(data *entity.ResetToken) *model.ResetTokenModel {
	if data == nil {
		return nil
	}

	return &model.ResetTokenModel{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}

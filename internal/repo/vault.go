package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"uunn/internal/model"
)

// VaultRepository хранит по одной резервной копии на пользователя.
type VaultRepository interface {
	// Put заменяет копию пользователя целиком.
	Put(ctx context.Context, v *model.Vault) error
	Get(ctx context.Context, userID int64) (*model.Vault, error)
}

type vaultRepo struct {
	db *gorm.DB
}

func NewVaultRepository(db *gorm.DB) VaultRepository {
	return &vaultRepo{db: db}
}

func (r *vaultRepo) Put(ctx context.Context, v *model.Vault) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(v).Error
}

func (r *vaultRepo) Get(ctx context.Context, userID int64) (*model.Vault, error) {
	var v model.Vault
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"uunn/internal/keyspec"
	"uunn/internal/model"
	"uunn/internal/repo"
)

// VaultService хранит зашифрованные паролем копии приватных ключей.
// Сервер не может их открыть: пароль и выведенный ключ остаются у клиента.
type VaultService struct {
	repo repo.VaultRepository
}

func NewVaultService(r repo.VaultRepository) *VaultService {
	return &VaultService{repo: r}
}

// Put заменяет копию пользователя.
func (s *VaultService) Put(ctx context.Context, userID int64, v *model.Vault) error {
	if len(v.Ciphertext) == 0 || len(v.Nonce) != keyspec.NonceLen || len(v.Salt) != keyspec.SaltLen {
		return ErrInvalidVault
	}
	p := keyspec.KDFParams{Algorithm: keyspec.KDF(v.KDF), Time: v.KDFTime, Memory: v.KDFMemory, Threads: v.KDFThreads}
	if err := p.Validate(); err != nil {
		return ErrInvalidVault
	}
	v.UserID = userID
	return s.repo.Put(ctx, v)
}

func (s *VaultService) Get(ctx context.Context, userID int64) (*model.Vault, error) {
	v, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVaultNotFound
		}
		return nil, err
	}
	return v, nil
}

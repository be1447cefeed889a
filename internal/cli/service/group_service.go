package service

import (
	"context"
	"fmt"

	"uunn/internal/cli/crypto"
	"uunn/internal/cli/model"
)

// GroupKeyService жизненный цикл ключа группы на стороне клиента.
// Сервис не хранит ни ключей, ни identity: всё передаётся в вызов.
type GroupKeyService struct {
	store GroupStore
}

func NewGroupKeyService(store GroupStore) *GroupKeyService {
	return &GroupKeyService{store: store}
}

// HasContentAccess членство и доступ к контенту: независимые состояния.
func HasContentAccess(m model.Membership) bool {
	return m.HasKey()
}

// CreateGroup генерирует ключ группы, оборачивает его под ключ создателя
// и отдаёт серверу только обёртку.
func (s *GroupKeyService) CreateGroup(ctx context.Context, name string, creator *crypto.Identity) (model.Membership, error) {
	if creator == nil || creator.Public == nil {
		return model.Membership{}, crypto.ErrInvalidKey
	}
	k, err := crypto.GenerateKey()
	if err != nil {
		return model.Membership{}, err
	}
	var wk crypto.WrappedKey
	err = crypto.WithKey(k, func(k *crypto.SymmetricKey) error {
		var err error
		wk, err = crypto.Wrap(k, creator.Public)
		return err
	})
	if err != nil {
		return model.Membership{}, fmt.Errorf("wrap group key: %w", err)
	}
	return s.store.CreateGroup(ctx, name, wk)
}

// JoinByLegacyCode вступление по коду: членство без доступа к контенту.
// Повторное вступление возвращает существующее членство как есть.
func (s *GroupKeyService) JoinByLegacyCode(ctx context.Context, code string) (model.Membership, error) {
	return s.store.JoinGroup(ctx, code)
}

// GroupKey разворачивает ключ группы для fn и обнуляет его после.
func (s *GroupKeyService) GroupKey(ctx context.Context, groupID string, id *crypto.Identity, fn func(*crypto.SymmetricKey) error) error {
	if id == nil || id.Private == nil {
		return crypto.ErrInvalidKey
	}
	m, err := s.store.Membership(ctx, groupID)
	if err != nil {
		return err
	}
	if !HasContentAccess(m) {
		return ErrNoContentAccess
	}
	k, err := crypto.Unwrap(*m.WrappedKey, id.Private)
	if err != nil {
		return err
	}
	return crypto.WithKey(k, fn)
}

// EncryptContent шифрует данные группы её ключом.
func (s *GroupKeyService) EncryptContent(ctx context.Context, groupID string, id *crypto.Identity, plain []byte) (crypto.Sealed, error) {
	var out crypto.Sealed
	err := s.GroupKey(ctx, groupID, id, func(k *crypto.SymmetricKey) error {
		var err error
		out, err = crypto.Encrypt(k, plain)
		return err
	})
	return out, err
}

// DecryptContent расшифровывает данные группы. Любой отказ AES-GCM: ErrAuthentication.
func (s *GroupKeyService) DecryptContent(ctx context.Context, groupID string, id *crypto.Identity, sealed crypto.Sealed) ([]byte, error) {
	var out []byte
	err := s.GroupKey(ctx, groupID, id, func(k *crypto.SymmetricKey) error {
		var err error
		out, err = crypto.Decrypt(k, sealed.Ciphertext, sealed.Nonce)
		return err
	})
	return out, err
}

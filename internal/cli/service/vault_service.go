package service

import (
	"context"
	"fmt"
	"time"

	"uunn/internal/cli/crypto"
	"uunn/internal/cli/repo"
)

// VaultService резервная копия приватного ключа под паролем.
type VaultService struct {
	store      VaultStore
	identities repo.IdentityStore
	params     crypto.KDFParams
}

// NewVaultService params: KDF для новых копий, открытие читает параметры из копии.
func NewVaultService(store VaultStore, identities repo.IdentityStore, params crypto.KDFParams) *VaultService {
	return &VaultService{store: store, identities: identities, params: params}
}

// Backup шифрует приватный ключ паролем и отправляет копию на сервер.
func (s *VaultService) Backup(ctx context.Context, id *crypto.Identity, password string) error {
	if id == nil || id.Private == nil {
		return crypto.ErrInvalidKey
	}
	if err := crypto.CheckPassword(password); err != nil {
		return err
	}
	blob, err := crypto.SealVault(id.Private, password, s.params)
	if err != nil {
		return fmt.Errorf("seal vault: %w", err)
	}
	return s.store.PutVault(ctx, blob)
}

// Recover скачивает копию, расшифровывает её и сверяет ключ с
// зарегистрированным на сервере публичным ключом. Восстановленный ключ
// сохраняется на устройстве.
func (s *VaultService) Recover(ctx context.Context, login, password string) (*crypto.Identity, error) {
	blob, err := s.store.GetVault(ctx)
	if err != nil {
		return nil, err
	}
	priv, err := crypto.OpenVault(blob, password)
	if err != nil {
		return nil, err
	}
	spki, err := s.store.PublicKey(ctx)
	if err != nil {
		crypto.WipePrivateKey(priv)
		return nil, err
	}
	pub, err := crypto.ParsePublicKey(spki)
	if err != nil || !priv.PublicKey.Equal(pub) {
		crypto.WipePrivateKey(priv)
		return nil, fmt.Errorf("%w: key does not match the registered public key", crypto.ErrRecovery)
	}
	id := crypto.NewIdentity(login, priv, time.Now().UTC())
	if err := s.identities.Save(login, id); err != nil {
		id.Wipe()
		return nil, fmt.Errorf("save identity: %w", err)
	}
	return id, nil
}

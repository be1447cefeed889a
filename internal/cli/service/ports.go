package service

import (
	"context"

	"uunn/internal/cli/crypto"
	"uunn/internal/cli/model"
)

// AccountStore серверная часть учётных записей.
type AccountStore interface {
	Register(ctx context.Context, login, password string, publicKey []byte) (model.User, error)
	Login(ctx context.Context, login, password string) (model.User, error)
	Me(ctx context.Context) (model.User, error)
}

// GroupStore серверное хранилище групп и членств. Видит только обёрнутые ключи.
type GroupStore interface {
	CreateGroup(ctx context.Context, name string, wk crypto.WrappedKey) (model.Membership, error)
	JoinGroup(ctx context.Context, code string) (model.Membership, error)
	Membership(ctx context.Context, groupID string) (model.Membership, error)
}

// InviteStore серверное хранилище приглашений.
// RedeemInvite для уже имеющего ключ участника возвращает его членство вместе с ошибкой.
type InviteStore interface {
	Me(ctx context.Context) (model.User, error)
	Membership(ctx context.Context, groupID string) (model.Membership, error)
	CreateInvite(ctx context.Context, inv model.NewInvite) (model.Invite, error)
	GetInvite(ctx context.Context, id string) (model.Invite, error)
	RedeemInvite(ctx context.Context, id string, wk crypto.WrappedKey, proof []byte) (model.Membership, error)
}

// VaultStore серверное хранилище резервной копии приватного ключа.
type VaultStore interface {
	PutVault(ctx context.Context, blob crypto.VaultBlob) error
	GetVault(ctx context.Context) (crypto.VaultBlob, error)
	PublicKey(ctx context.Context) ([]byte, error)
}

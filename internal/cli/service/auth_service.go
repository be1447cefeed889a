package service

import (
	"context"
	"errors"
	"fmt"

	"uunn/internal/cli/crypto"
	"uunn/internal/cli/model"
	"uunn/internal/cli/repo"
)

// AuthService описывает юзкейс-уровень аутентификации для CLI.
type AuthService interface {
	// Register создаёт identity на устройстве и регистрирует её публичный ключ.
	Register(ctx context.Context, login, password string) (model.User, *crypto.Identity, error)

	// Login логирование пользователя.
	Login(ctx context.Context, login, password string) (model.User, error)

	// Logout очищает локальный контекст аутентификации.
	Logout() error

	// CurrentUser возвращает логин текущего пользователя, если он установлен.
	CurrentUser() (string, error)

	// Identity возвращает ключ текущего пользователя с этого устройства.
	Identity() (*crypto.Identity, error)
}

// Auth реализация AuthService поверх AccountStore и локальных хранилищ.
type Auth struct {
	accounts   AccountStore
	identities repo.IdentityStore
	tokens     repo.TokenStore
	users      repo.UserContextStore
	// generate подменяется в тестах, чтобы не ждать RSA.
	generate func(userID string) (*crypto.Identity, error)
}

var _ AuthService = (*Auth)(nil)

func NewAuth(accounts AccountStore, identities repo.IdentityStore, tokens repo.TokenStore, users repo.UserContextStore) *Auth {
	return &Auth{
		accounts:   accounts,
		identities: identities,
		tokens:     tokens,
		users:      users,
		generate:   crypto.GenerateIdentity,
	}
}

// Register сначала сохраняет identity локально, затем регистрирует публичный ключ.
// Если сервер отказал, локальная запись удаляется.
func (a *Auth) Register(ctx context.Context, login, password string) (model.User, *crypto.Identity, error) {
	id, err := a.generate(login)
	if err != nil {
		return model.User{}, nil, err
	}
	spki, err := crypto.MarshalPublicKey(id.Public)
	if err != nil {
		id.Wipe()
		return model.User{}, nil, err
	}
	if err := a.identities.Save(login, id); err != nil {
		id.Wipe()
		return model.User{}, nil, fmt.Errorf("save identity: %w", err)
	}
	u, err := a.accounts.Register(ctx, login, password, spki)
	if err != nil {
		_ = a.identities.Delete(login)
		id.Wipe()
		return model.User{}, nil, err
	}
	if err := a.users.SaveLogin(login); err != nil {
		return u, id, fmt.Errorf("save login: %w", err)
	}
	return u, id, nil
}

func (a *Auth) Login(ctx context.Context, login, password string) (model.User, error) {
	u, err := a.accounts.Login(ctx, login, password)
	if err != nil {
		return model.User{}, err
	}
	if err := a.users.SaveLogin(login); err != nil {
		return u, fmt.Errorf("save login: %w", err)
	}
	return u, nil
}

func (a *Auth) Logout() error {
	return a.tokens.Clear()
}

func (a *Auth) CurrentUser() (string, error) {
	login, err := a.users.LoadLogin()
	if err != nil {
		return "", fmt.Errorf("no active user: run login or register: %w", err)
	}
	return login, nil
}

func (a *Auth) Identity() (*crypto.Identity, error) {
	login, err := a.CurrentUser()
	if err != nil {
		return nil, err
	}
	id, err := a.identities.Load(login)
	if errors.Is(err, repo.ErrIdentityNotFound) {
		return nil, ErrNoIdentity
	}
	return id, err
}

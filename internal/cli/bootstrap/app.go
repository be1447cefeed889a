package bootstrap

import (
	"fmt"

	"uunn/internal/cli/api"
	"uunn/internal/cli/crypto"
	fsrepo "uunn/internal/cli/repo/fs"
	reposqlite "uunn/internal/cli/repo/sqlite"
	"uunn/internal/cli/service"
	"uunn/internal/config"
)

// App собранные зависимости клиента для одной команды.
type App struct {
	Client     *api.Client
	Session    fsrepo.AuthFSStore
	Identities *reposqlite.IdentityRepositorySQLite

	Auth    *service.Auth
	Groups  *service.GroupKeyService
	Invites *service.InviteService
	Vault   *service.VaultService
}

// KDFParams параметры KDF для новых резервных копий по конфигу.
func KDFParams(cfg *config.Config) crypto.KDFParams {
	if cfg.VaultKDF == string(crypto.KDFPBKDF2SHA256) {
		return crypto.PBKDF2Params(600000)
	}
	return crypto.DefaultKDFParams()
}

// Open открывает локальное хранилище identity, выполняет миграции и
// собирает сервисы. Возвращает (app, cleanup, error); cleanup закрывает БД.
func Open(cfg *config.Config) (*App, func() error, error) {
	ids, err := reposqlite.Open(cfg.ClientDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open client db: %w", err)
	}
	session := fsrepo.New(cfg.TokenFile)
	client := api.New(cfg.ServerURL, session)

	app := &App{
		Client:     client,
		Session:    session,
		Identities: ids,
		Auth:       service.NewAuth(client, ids, session, session),
		Groups:     service.NewGroupKeyService(client),
		Invites:    service.NewInviteService(client, cfg.ServerURL),
		Vault:      service.NewVaultService(client, ids, KDFParams(cfg)),
	}
	cleanup := func() error { return ids.Close() }
	return app, cleanup, nil
}

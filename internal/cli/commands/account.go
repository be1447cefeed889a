package commands

import (
	"context"
	"errors"

	"uunn/internal/cli/bootstrap"
	"uunn/internal/cli/crypto"
	"uunn/internal/cli/model"
	"uunn/internal/cli/service"
	"uunn/internal/config"
)

type registerCmd struct{}

func (registerCmd) Name() string { return "register" }
func (registerCmd) Description() string {
	return "Create an identity key on this device and register it"
}
func (registerCmd) Usage() string { return "register <login> [password]" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	login := args[0]
	password, err := passwordArg(args, 1, "Password: ")
	if err != nil {
		return err
	}
	app, cleanup, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var (
		u  model.User
		id *crypto.Identity
	)
	err = withSpinner("Generating identity key...", func() error {
		var err error
		u, id, err = app.Auth.Register(ctx, login, password)
		return err
	})
	if err != nil {
		return err
	}
	defer id.Wipe()
	success("Registered %s (id %d)", u.Login, u.ID)
	hint("Key fingerprint: %s", id.Fingerprint())
	hint("Run vault-backup to be able to recover this key on another device")
	return nil
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth cookie" }
func (loginCmd) Usage() string       { return "login <login> [password]" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	password, err := passwordArg(args, 1, "Password: ")
	if err != nil {
		return err
	}
	app, cleanup, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := app.Auth.Login(ctx, args[0], password); err != nil {
		return err
	}
	success("Logged in successfully")
	if _, err := app.Auth.Identity(); errors.Is(err, service.ErrNoIdentity) {
		warn("No identity key on this device")
		hint("Run vault-recover to restore it from your backup")
	}
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored session" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	app, cleanup, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := app.Auth.Logout(); err != nil {
		return err
	}
	success("Logged out")
	return nil
}

type whoamiCmd struct{}

func (whoamiCmd) Name() string        { return "whoami" }
func (whoamiCmd) Description() string { return "Show the current user and key fingerprint" }
func (whoamiCmd) Usage() string       { return "whoami" }

func (whoamiCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	app, cleanup, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	u, err := app.Client.Me(ctx)
	if err != nil {
		return err
	}
	success("%s (id %d)", u.Login, u.ID)
	id, err := app.Auth.Identity()
	switch {
	case errors.Is(err, service.ErrNoIdentity):
		warn("No identity key on this device")
	case err != nil:
		return err
	default:
		defer id.Wipe()
		hint("Key fingerprint: %s", id.Fingerprint())
	}
	return nil
}

func init() {
	RegisterCmd(registerCmd{})
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(whoamiCmd{})
}

package commands

import (
	"context"
	"errors"

	"uunn/internal/cli/bootstrap"
	"uunn/internal/cli/crypto"
	"uunn/internal/config"
)

type vaultBackupCmd struct{}

func (vaultBackupCmd) Name() string        { return "vault-backup" }
func (vaultBackupCmd) Description() string { return "Upload a password-encrypted backup of your key" }
func (vaultBackupCmd) Usage() string       { return "vault-backup [password]" }

func (vaultBackupCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	password, err := passwordArg(args, 0, "Vault password: ")
	if err != nil {
		return err
	}
	if len(args) == 0 {
		confirm, err := readPassword("Repeat password: ")
		if err != nil {
			return err
		}
		if confirm != password {
			return errors.New("passwords do not match")
		}
	}
	if err := crypto.CheckPassword(password); err != nil {
		return err
	}

	app, cleanup, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	id, err := app.Auth.Identity()
	if err != nil {
		return err
	}
	defer id.Wipe()

	err = withSpinner("Encrypting key backup...", func() error {
		return app.Vault.Backup(ctx, id, password)
	})
	if err != nil {
		return err
	}
	success("Key backup stored")
	hint("Key fingerprint: %s", id.Fingerprint())
	return nil
}

type vaultRecoverCmd struct{}

func (vaultRecoverCmd) Name() string        { return "vault-recover" }
func (vaultRecoverCmd) Description() string { return "Restore your key from the backup (login first)" }
func (vaultRecoverCmd) Usage() string       { return "vault-recover [password]" }

func (vaultRecoverCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	password, err := passwordArg(args, 0, "Vault password: ")
	if err != nil {
		return err
	}
	app, cleanup, err := bootstrap.Open(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	login, err := app.Auth.CurrentUser()
	if err != nil {
		return err
	}

	var id *crypto.Identity
	err = withSpinner("Decrypting key backup...", func() error {
		var err error
		id, err = app.Vault.Recover(ctx, login, password)
		return err
	})
	if err != nil {
		return err
	}
	defer id.Wipe()
	success("Key restored on this device")
	hint("Key fingerprint: %s", id.Fingerprint())
	return nil
}

func init() {
	RegisterCmd(vaultBackupCmd{})
	RegisterCmd(vaultRecoverCmd{})
}

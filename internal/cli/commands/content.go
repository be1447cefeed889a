package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"uunn/internal/cli/bootstrap"
	"uunn/internal/cli/crypto"
	"uunn/internal/config"
)

// Stdin источник данных для "-". Подменяется в тестах.
var Stdin io.Reader = os.Stdin

// encodeSealed формат вывода шифртекста: base64url(nonce).base64url(ciphertext).
func encodeSealed(s crypto.Sealed) string {
	return base64.RawURLEncoding.EncodeToString(s.Nonce) + "." + base64.RawURLEncoding.EncodeToString(s.Ciphertext)
}

func decodeSealed(v string) (crypto.Sealed, error) {
	n, c, ok := strings.Cut(strings.TrimSpace(v), ".")
	if !ok {
		return crypto.Sealed{}, fmt.Errorf("%w: expected <nonce>.<ciphertext>", crypto.ErrAuthentication)
	}
	nonce, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return crypto.Sealed{}, crypto.ErrAuthentication
	}
	ct, err := base64.RawURLEncoding.DecodeString(c)
	if err != nil {
		return crypto.Sealed{}, crypto.ErrAuthentication
	}
	return crypto.Sealed{Ciphertext: ct, Nonce: nonce}, nil
}

// inputArg текст из аргументов или stdin при "-".
func inputArg(args []string) ([]byte, error) {
	if len(args) == 1 && args[0] == "-" {
		return io.ReadAll(Stdin)
	}
	return []byte(strings.Join(args, " ")), nil
}

type encryptCmd struct{}

func (encryptCmd) Name() string        { return "encrypt" }
func (encryptCmd) Description() string { return "Encrypt text with the group key" }
func (encryptCmd) Usage() string       { return "encrypt <group-id> <text|->" }

func (encryptCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	plain, err := inputArg(args[1:])
	if err != nil {
		return err
	}
	defer crypto.Zero(plain)
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

	sealed, err := app.Groups.EncryptContent(ctx, args[0], id, plain)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, encodeSealed(sealed))
	return nil
}

type decryptCmd struct{}

func (decryptCmd) Name() string        { return "decrypt" }
func (decryptCmd) Description() string { return "Decrypt group content produced by encrypt" }
func (decryptCmd) Usage() string       { return "decrypt <group-id> <nonce.ciphertext|->" }

func (decryptCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	raw, err := inputArg(args[1:])
	if err != nil {
		return err
	}
	sealed, err := decodeSealed(string(raw))
	if err != nil {
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

	plain, err := app.Groups.DecryptContent(ctx, args[0], id, sealed)
	if err != nil {
		return err
	}
	defer crypto.Zero(plain)
	fmt.Fprintln(Out, string(plain))
	return nil
}

func init() {
	RegisterCmd(encryptCmd{})
	RegisterCmd(decryptCmd{})
}

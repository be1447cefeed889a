package repo

import (
	"errors"

	"uunn/internal/cli/crypto"
)

// ErrIdentityNotFound: для логина на этом устройстве нет identity.
var ErrIdentityNotFound = errors.New("identity not found on this device")

// IdentityStore локальное хранилище пары ключей пользователя.
// Приватный ключ из него никогда не уходит в сеть.
type IdentityStore interface {
	Save(login string, id *crypto.Identity) error
	Load(login string) (*crypto.Identity, error)
	Delete(login string) error
}

package service

import "errors"

var (
	// ErrNoContentAccess: участник без обёрнутого ключа группы.
	ErrNoContentAccess = errors.New("membership has no content access")
	// ErrInvalidLink: ссылка приглашения не разбирается.
	ErrInvalidLink = errors.New("invalid invite link")
	// ErrNoIdentity: на устройстве нет ключа пользователя.
	ErrNoIdentity = errors.New("no identity on this device: register or run vault-recover")
)

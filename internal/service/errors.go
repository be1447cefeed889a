package service

import "errors"

var (
	ErrLoginTaken         = errors.New("login already taken")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrWeakPassword       = errors.New("password is too weak")

	// ErrInvalidKey: публичный ключ или обёртка не RSA-OAEP-2048.
	ErrInvalidKey = errors.New("invalid key material")

	ErrGroupNotFound    = errors.New("group not found")
	ErrInvalidGroupName = errors.New("group name is required")
	ErrNotAMember       = errors.New("not a member of the group")
	// ErrNoContentAccess: участник есть, но обёрнутого ключа у него нет.
	ErrNoContentAccess = errors.New("membership has no content access")
	ErrAlreadyMember   = errors.New("already a member with content access")

	ErrInviteNotFound  = errors.New("invite not found")
	ErrInviteExhausted = errors.New("invite exhausted")
	ErrInviteExpired   = errors.New("invite expired")
	// ErrInvitePolicy: запрошенные лимиты приглашения шире политики сервера.
	ErrInvitePolicy = errors.New("invite limits exceed server policy")
	// ErrInvalidProof: погашающий не доказал владение эфемерным ключом из ссылки.
	ErrInvalidProof = errors.New("invalid invite proof")

	ErrVaultNotFound = errors.New("vault not found")
	ErrInvalidVault  = errors.New("invalid vault record")
)

package model

import (
	"time"

	"uunn/internal/cli/crypto"
)

// Invite запись приглашения на сервере. Без фрагмента ссылки бесполезна.
type Invite struct {
	ID                 string             `json:"id"`
	GroupID            string             `json:"group_id"`
	EphemeralPublicKey []byte             `json:"ephemeral_public_key,omitempty"`
	WrappedKey         *crypto.WrappedKey `json:"wrapped_key,omitempty"`
	MaxRedemptions     int                `json:"max_redemptions"`
	Redemptions        int                `json:"redemptions"`
	ExpiresAt          *time.Time         `json:"expires_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

// NewInvite то, что клиент отправляет при создании приглашения.
type NewInvite struct {
	GroupID            string            `json:"group_id"`
	EphemeralPublicKey []byte            `json:"ephemeral_public_key"`
	WrappedKey         crypto.WrappedKey `json:"wrapped_key"`
	MaxRedemptions     *int              `json:"max_redemptions,omitempty"`
	TTLSeconds         *int64            `json:"ttl_seconds,omitempty"`
}

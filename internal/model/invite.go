package model

import "time"

// Invite: серверная часть защищённого приглашения. Без эфемерного
// приватного ключа (он передаётся вне сервера) WrappedKey бесполезен.
type Invite struct {
	ID      string `gorm:"primaryKey;type:uuid"`
	GroupID string `gorm:"type:uuid;not null;index"`

	Group *Group `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	EphemeralPublicKey []byte `gorm:"not null"`
	WrappedKeyAlg      string `gorm:"not null"`
	WrappedKey         []byte `gorm:"not null"`

	CreatedBy int64 `gorm:"not null;index"`

	MaxRedemptions int        `gorm:"not null"` // 0: без ограничения
	Redemptions    int        `gorm:"not null;default:0"`
	ExpiresAt      *time.Time // nil: бессрочно

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Exhausted сообщает, что лимит погашений исчерпан.
func (i *Invite) Exhausted() bool {
	return i.MaxRedemptions > 0 && i.Redemptions >= i.MaxRedemptions
}

// Expired сообщает, что срок действия приглашения истёк.
func (i *Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// InviteRedemption: факт погашения приглашения пользователем.
type InviteRedemption struct {
	InviteID string `gorm:"primaryKey;type:uuid"`
	UserID   int64  `gorm:"primaryKey"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

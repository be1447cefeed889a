package model

import "time"

// Vault: зашифрованная паролем резервная копия приватного identity-ключа.
type Vault struct {
	UserID int64 `gorm:"primaryKey"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Ciphertext []byte `gorm:"not null"`
	Nonce      []byte `gorm:"not null"`
	Salt       []byte `gorm:"not null"`

	KDF        string `gorm:"not null"`
	KDFTime    uint32 `gorm:"not null"`
	KDFMemory  uint32
	KDFThreads uint8

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

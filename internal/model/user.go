package model

import "time"

// User: серверная модель пользователя. PublicKey: SPKI DER identity-ключа,
// приватная часть на сервер никогда не попадает.
type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Login     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"` // bcrypt-хеш
	PublicKey []byte

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

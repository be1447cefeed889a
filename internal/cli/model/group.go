package model

import (
	"time"

	"uunn/internal/cli/crypto"
)

// Роли участника.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Membership членство, как его видит клиент. WrappedKey == nil: доступа к контенту нет.
type Membership struct {
	GroupID    string             `json:"group_id"`
	GroupName  string             `json:"group_name,omitempty"`
	JoinCode   string             `json:"join_code,omitempty"`
	Role       string             `json:"role"`
	WrappedKey *crypto.WrappedKey `json:"wrapped_key,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// HasKey сообщает, есть ли у членства обёрнутый ключ группы.
func (m Membership) HasKey() bool {
	return m.WrappedKey != nil && !m.WrappedKey.IsZero()
}

// Member участник группы в списке.
type Member struct {
	UserID int64  `json:"user_id"`
	Login  string `json:"login"`
	Role   string `json:"role"`
	HasKey bool   `json:"has_key"`
}

// User учётная запись на сервере.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

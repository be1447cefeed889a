package model

import "time"

// Group: организационная группа (профсоюз).
// JoinCode: человекочитаемый код старого способа вступления, криптографии не несёт.
type Group struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	Name      string `gorm:"not null"`
	JoinCode  string `gorm:"uniqueIndex;not null"`
	CreatorID int64  `gorm:"not null;index"`

	Creator *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Роли участника группы.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Membership: членство пользователя в группе.
// Ровно одна запись на (group_id, user_id). WrappedKey == nil означает
// участника без доступа к контенту.
type Membership struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	GroupID string `gorm:"type:uuid;not null;uniqueIndex:idx_membership_group_user"`
	UserID  int64  `gorm:"not null;uniqueIndex:idx_membership_group_user;index"`
	Role    string `gorm:"not null;default:member"`

	Group *Group `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User  *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	WrappedKeyAlg string
	WrappedKey    []byte

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasKey сообщает, есть ли у участника обёрнутый ключ группы.
func (m *Membership) HasKey() bool {
	return m != nil && len(m.WrappedKey) > 0
}

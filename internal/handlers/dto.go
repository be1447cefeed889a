package handlers

import (
	"time"

	"uunn/internal/model"
	"uunn/internal/service"
)

// WrappedKeyDTO обёрнутый ключ: {"alg": ..., "payload": base64}.
type WrappedKeyDTO struct {
	Alg     string `json:"alg"`
	Payload []byte `json:"payload"`
}

func (d *WrappedKeyDTO) toService() service.WrappedKey {
	if d == nil {
		return service.WrappedKey{}
	}
	return service.WrappedKey{Alg: d.Alg, Payload: d.Payload}
}

func wrappedDTO(alg string, payload []byte) *WrappedKeyDTO {
	if len(payload) == 0 {
		return nil
	}
	return &WrappedKeyDTO{Alg: alg, Payload: payload}
}

// MembershipDTO членство с данными группы. WrappedKey отсутствует у участника без доступа к контенту.
type MembershipDTO struct {
	GroupID    string         `json:"group_id"`
	GroupName  string         `json:"group_name,omitempty"`
	JoinCode   string         `json:"join_code,omitempty"`
	Role       string         `json:"role"`
	WrappedKey *WrappedKeyDTO `json:"wrapped_key,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func membershipDTO(m *model.Membership) MembershipDTO {
	d := MembershipDTO{
		GroupID:    m.GroupID,
		Role:       m.Role,
		WrappedKey: wrappedDTO(m.WrappedKeyAlg, m.WrappedKey),
		CreatedAt:  m.CreatedAt,
	}
	if m.Group != nil {
		d.GroupName = m.Group.Name
		d.JoinCode = m.Group.JoinCode
	}
	return d
}

// MemberDTO участник в списке группы. Обёрнутые ключи других участников не отдаются.
type MemberDTO struct {
	UserID int64  `json:"user_id"`
	Login  string `json:"login"`
	Role   string `json:"role"`
	HasKey bool   `json:"has_key"`
}

// InviteDTO запись приглашения.
type InviteDTO struct {
	ID                 string         `json:"id"`
	GroupID            string         `json:"group_id"`
	EphemeralPublicKey []byte         `json:"ephemeral_public_key,omitempty"`
	WrappedKey         *WrappedKeyDTO `json:"wrapped_key,omitempty"`
	MaxRedemptions     int            `json:"max_redemptions"`
	Redemptions        int            `json:"redemptions"`
	ExpiresAt          *time.Time     `json:"expires_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

func inviteDTO(inv *model.Invite, withKeys bool) InviteDTO {
	d := InviteDTO{
		ID:             inv.ID,
		GroupID:        inv.GroupID,
		MaxRedemptions: inv.MaxRedemptions,
		Redemptions:    inv.Redemptions,
		ExpiresAt:      inv.ExpiresAt,
		CreatedAt:      inv.CreatedAt,
	}
	if withKeys {
		d.EphemeralPublicKey = inv.EphemeralPublicKey
		d.WrappedKey = wrappedDTO(inv.WrappedKeyAlg, inv.WrappedKey)
	}
	return d
}

// KDFDTO параметры KDF резервной копии.
type KDFDTO struct {
	Algorithm string `json:"kdf"`
	Time      uint32 `json:"time"`
	Memory    uint32 `json:"memory,omitempty"`
	Threads   uint8  `json:"threads,omitempty"`
}

// VaultDTO зашифрованная паролем копия приватного ключа.
type VaultDTO struct {
	Ciphertext []byte    `json:"ciphertext"`
	Nonce      []byte    `json:"nonce"`
	Salt       []byte    `json:"salt"`
	KDF        KDFDTO    `json:"kdf"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

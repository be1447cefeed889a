package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"uunn/internal/keyspec"
	"uunn/internal/model"
	"uunn/internal/repo"
)

// InvitePolicy серверные ограничения приглашений.
type InvitePolicy struct {
	// MaxRedemptions 0: без ограничения.
	MaxRedemptions int
	// TTL 0: бессрочно.
	TTL time.Duration
}

// CreateInviteRequest данные нового приглашения. Эфемерный приватный ключ
// сюда не входит и на сервер не попадает.
type CreateInviteRequest struct {
	GroupID            string
	EphemeralPublicKey []byte
	WrappedKey         WrappedKey
	// nil: взять из политики
	MaxRedemptions *int
	TTL            *time.Duration
}

// InviteService выдача и погашение приглашений.
type InviteService struct {
	invites repo.InviteRepository
	groups  repo.GroupRepository
	policy  InvitePolicy
	now     func() time.Time
}

func NewInviteService(invites repo.InviteRepository, groups repo.GroupRepository, policy InvitePolicy) *InviteService {
	return &InviteService{invites: invites, groups: groups, policy: policy, now: time.Now}
}

// Create сохраняет приглашение. Создавать может только участник с ключом.
func (s *InviteService) Create(ctx context.Context, userID int64, req CreateInviteRequest) (*model.Invite, error) {
	if _, err := uuid.Parse(req.GroupID); err != nil {
		return nil, ErrGroupNotFound
	}
	m, err := s.groups.GetMembership(ctx, req.GroupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAMember
		}
		return nil, err
	}
	if !m.HasKey() {
		return nil, ErrNoContentAccess
	}
	if err := validatePublicKey(req.EphemeralPublicKey); err != nil {
		return nil, err
	}
	if err := validateWrapped(req.WrappedKey); err != nil {
		return nil, err
	}

	limit, ttl, err := s.limits(req)
	if err != nil {
		return nil, err
	}
	inv := &model.Invite{
		ID:                 uuid.NewString(),
		GroupID:            req.GroupID,
		EphemeralPublicKey: req.EphemeralPublicKey,
		WrappedKeyAlg:      req.WrappedKey.Alg,
		WrappedKey:         req.WrappedKey.Payload,
		CreatedBy:          userID,
		MaxRedemptions:     limit,
	}
	if ttl > 0 {
		exp := s.now().Add(ttl).UTC()
		inv.ExpiresAt = &exp
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// limits применяет политику: запрошенное значение не может быть шире серверного.
func (s *InviteService) limits(req CreateInviteRequest) (int, time.Duration, error) {
	limit := s.policy.MaxRedemptions
	if req.MaxRedemptions != nil {
		want := *req.MaxRedemptions
		if want < 0 || (limit > 0 && (want == 0 || want > limit)) {
			return 0, 0, ErrInvitePolicy
		}
		limit = want
	}
	ttl := s.policy.TTL
	if req.TTL != nil {
		want := *req.TTL
		if want < 0 || (ttl > 0 && (want == 0 || want > ttl)) {
			return 0, 0, ErrInvitePolicy
		}
		ttl = want
	}
	return limit, ttl, nil
}

// Get возвращает запись приглашения. Она бесполезна без фрагмента ссылки.
func (s *InviteService) Get(ctx context.Context, id string) (*model.Invite, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInviteNotFound
	}
	inv, err := s.invites.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return inv, nil
}

// Redeem записывает ключ, переобёрнутый клиентом под свой публичный ключ.
// proof: подпись RSA-PSS эфемерным приватным ключом над (приглашение, пользователь,
// обёртка); без неё приглашение не тратится и членство не создаётся.
// Если ключ у пользователя уже есть, возвращает существующее членство и ErrAlreadyMember.
func (s *InviteService) Redeem(ctx context.Context, userID int64, inviteID string, wk WrappedKey, proof []byte) (*model.Membership, error) {
	if _, err := uuid.Parse(inviteID); err != nil {
		return nil, ErrInviteNotFound
	}
	if err := validateWrapped(wk); err != nil {
		return nil, err
	}
	inv, err := s.Get(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if err := keyspec.VerifyRedeemProof(inv.EphemeralPublicKey, inv.ID, userID, wk.Payload, proof); err != nil {
		return nil, ErrInvalidProof
	}
	res, err := s.invites.Redeem(ctx, inviteID, userID, wk.Alg, wk.Payload, s.now())
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrInviteNotFound
	case errors.Is(err, repo.ErrInviteExhausted):
		return nil, ErrInviteExhausted
	case errors.Is(err, repo.ErrInviteExpired):
		return nil, ErrInviteExpired
	case err != nil:
		return nil, err
	}
	if res.AlreadyKeyed {
		return res.Membership, ErrAlreadyMember
	}
	return res.Membership, nil
}

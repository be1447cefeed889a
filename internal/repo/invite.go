package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"uunn/internal/model"
)

var (
	// ErrInviteExhausted: лимит погашений приглашения исчерпан.
	ErrInviteExhausted = errors.New("invite exhausted")
	// ErrInviteExpired: срок действия приглашения истёк.
	ErrInviteExpired = errors.New("invite expired")
)

// Redemption: результат погашения приглашения.
type Redemption struct {
	Membership *model.Membership
	// AlreadyKeyed: у пользователя уже был ключ; приглашение не израсходовано.
	AlreadyKeyed bool
}

// InviteRepository контракт доступа к приглашениям.
type InviteRepository interface {
	Create(ctx context.Context, inv *model.Invite) error
	GetByID(ctx context.Context, id string) (*model.Invite, error)
	// Redeem атомарно выдаёт пользователю обёрнутый ключ по приглашению.
	Redeem(ctx context.Context, inviteID string, userID int64, alg string, wrapped []byte, now time.Time) (*Redemption, error)
}

type inviteRepo struct {
	db *gorm.DB
}

// NewInviteRepository создаёт реализацию репозитория приглашений.
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &inviteRepo{db: db}
}

func (r *inviteRepo) Create(ctx context.Context, inv *model.Invite) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *inviteRepo) GetByID(ctx context.Context, id string) (*model.Invite, error) {
	var inv model.Invite
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// Redeem выполняет всё в одной транзакции:
//  1. upsert членства: вставка, либо запись ключа в существующее членство без ключа;
//     членство с ключом не перезаписывается;
//  2. для нового погашающего: учёт в invite_redemptions и условный инкремент счётчика.
//
// Если лимит исчерпан, транзакция откатывается целиком.
func (r *inviteRepo) Redeem(ctx context.Context, inviteID string, userID int64, alg string, wrapped []byte, now time.Time) (*Redemption, error) {
	var res *Redemption
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv model.Invite
		if err := tx.Where("id = ?", inviteID).First(&inv).Error; err != nil {
			return err
		}
		if inv.Expired(now) {
			return ErrInviteExpired
		}

		m := &model.Membership{
			GroupID:       inv.GroupID,
			UserID:        userID,
			Role:          model.RoleMember,
			WrappedKeyAlg: alg,
			WrappedKey:    wrapped,
		}
		up := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"wrapped_key_alg": alg,
				"wrapped_key":     wrapped,
				"updated_at":      now,
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "memberships.wrapped_key IS NULL"},
			}},
		}).Create(m)
		if up.Error != nil {
			return up.Error
		}
		if up.RowsAffected == 0 {
			// ключ уже есть: ничего не меняем и приглашение не тратим
			existing, err := getMembership(tx, inv.GroupID, userID)
			if err != nil {
				return err
			}
			res = &Redemption{Membership: existing, AlreadyKeyed: true}
			return nil
		}

		mark := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.InviteRedemption{InviteID: inv.ID, UserID: userID})
		if mark.Error != nil {
			return mark.Error
		}
		if mark.RowsAffected > 0 {
			inc := tx.Model(&model.Invite{}).
				Where("id = ? AND (max_redemptions = 0 OR redemptions < max_redemptions)", inv.ID).
				UpdateColumn("redemptions", gorm.Expr("redemptions + 1"))
			if inc.Error != nil {
				return inc.Error
			}
			if inc.RowsAffected == 0 {
				return ErrInviteExhausted
			}
		}

		got, err := getMembership(tx, inv.GroupID, userID)
		if err != nil {
			return err
		}
		res = &Redemption{Membership: got}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

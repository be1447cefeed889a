package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"uunn/internal/model"
)

// GroupRepository контракт доступа к группам и членствам.
type GroupRepository interface {
	// CreateWithMembership создаёт группу и членство создателя одной транзакцией.
	CreateWithMembership(ctx context.Context, g *model.Group, m *model.Membership) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	GetByJoinCode(ctx context.Context, code string) (*model.Group, error)

	GetMembership(ctx context.Context, groupID string, userID int64) (*model.Membership, error)
	// AddMemberIfAbsent вставляет членство, если пары (group_id, user_id) ещё нет.
	// Существующую запись не трогает; created=true если запись создана этим вызовом.
	AddMemberIfAbsent(ctx context.Context, m *model.Membership) (created bool, err error)
	ListByUser(ctx context.Context, userID int64) ([]model.Membership, error)
	ListByGroup(ctx context.Context, groupID string) ([]model.Membership, error)
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepository создаёт реализацию репозитория групп.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) CreateWithMembership(ctx context.Context, g *model.Group, m *model.Membership) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		m.GroupID = g.ID
		return tx.Create(m).Error
	})
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var g model.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) GetByJoinCode(ctx context.Context, code string) (*model.Group, error) {
	var g model.Group
	if err := r.db.WithContext(ctx).Where("join_code = ?", code).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) GetMembership(ctx context.Context, groupID string, userID int64) (*model.Membership, error) {
	return getMembership(r.db.WithContext(ctx), groupID, userID)
}

func getMembership(db *gorm.DB, groupID string, userID int64) (*model.Membership, error) {
	var m model.Membership
	if err := db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *groupRepo) AddMemberIfAbsent(ctx context.Context, m *model.Membership) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(m)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *groupRepo) ListByUser(ctx context.Context, userID int64) ([]model.Membership, error) {
	var res []model.Membership
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&res).Error
	return res, err
}

func (r *groupRepo) ListByGroup(ctx context.Context, groupID string) ([]model.Membership, error) {
	var res []model.Membership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&res).Error
	return res, err
}

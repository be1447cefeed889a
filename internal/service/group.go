package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"uunn/internal/model"
	"uunn/internal/repo"
)

// алфавит кода вступления без похожих символов (0/O, 1/I/L)
const joinAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GroupService группы и членство. Сервер хранит только обёрнутые ключи.
type GroupService struct {
	repo repo.GroupRepository
}

func NewGroupService(r repo.GroupRepository) *GroupService {
	return &GroupService{repo: r}
}

// Create создаёт группу и членство создателя с ролью admin и его обёрнутым ключом.
func (s *GroupService) Create(ctx context.Context, userID int64, name string, wk WrappedKey) (*model.Group, *model.Membership, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, ErrInvalidGroupName
	}
	if err := validateWrapped(wk); err != nil {
		return nil, nil, err
	}
	code, err := newJoinCode()
	if err != nil {
		return nil, nil, err
	}
	g := &model.Group{
		ID:        uuid.NewString(),
		Name:      name,
		JoinCode:  code,
		CreatorID: userID,
	}
	m := &model.Membership{
		UserID:        userID,
		Role:          model.RoleAdmin,
		WrappedKeyAlg: wk.Alg,
		WrappedKey:    wk.Payload,
	}
	if err := s.repo.CreateWithMembership(ctx, g, m); err != nil {
		return nil, nil, err
	}
	return g, m, nil
}

// JoinByCode: старый способ вступления: членство без ключа.
// Повторное вступление возвращает существующее членство как есть.
func (s *GroupService) JoinByCode(ctx context.Context, userID int64, code string) (*model.Membership, error) {
	g, err := s.repo.GetByJoinCode(ctx, NormalizeJoinCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	if _, err := s.repo.AddMemberIfAbsent(ctx, &model.Membership{
		GroupID: g.ID,
		UserID:  userID,
		Role:    model.RoleMember,
	}); err != nil {
		return nil, err
	}
	m, err := s.repo.GetMembership(ctx, g.ID, userID)
	if err != nil {
		return nil, err
	}
	m.Group = g
	return m, nil
}

// Membership членство пользователя в группе.
func (s *GroupService) Membership(ctx context.Context, groupID string, userID int64) (*model.Membership, error) {
	if _, err := s.group(ctx, groupID); err != nil {
		return nil, err
	}
	m, err := s.repo.GetMembership(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAMember
		}
		return nil, err
	}
	return m, nil
}

// Memberships все членства пользователя вместе с группами.
func (s *GroupService) Memberships(ctx context.Context, userID int64) ([]model.Membership, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Members участники группы; доступно только участникам.
func (s *GroupService) Members(ctx context.Context, groupID string, userID int64) ([]model.Membership, error) {
	if _, err := s.Membership(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByGroup(ctx, groupID)
}

func (s *GroupService) group(ctx context.Context, groupID string) (*model.Group, error) {
	if _, err := uuid.Parse(groupID); err != nil {
		return nil, ErrGroupNotFound
	}
	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return g, nil
}

// NormalizeJoinCode приводит введённый пользователем код к каноническому виду.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// newJoinCode формат UN-XXXX-XXXX.
func newJoinCode() (string, error) {
	var b strings.Builder
	b.WriteString("UN")
	alphabetLen := big.NewInt(int64(len(joinAlphabet)))
	for i := 0; i < 8; i++ {
		if i%4 == 0 {
			b.WriteByte('-')
		}
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}
		b.WriteByte(joinAlphabet[n.Int64()])
	}
	return b.String(), nil
}

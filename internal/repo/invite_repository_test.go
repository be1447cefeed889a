package repo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"uunn/internal/model"
)

const alg = "RSA-OAEP-2048-SHA256"

func seedInvite(t *testing.T, db *gorm.DB, g *model.Group, by int64, max int, expires *time.Time) *model.Invite {
	t.Helper()
	inv := &model.Invite{
		ID:                 uuid.NewString(),
		GroupID:            g.ID,
		EphemeralPublicKey: []byte("eph-pub"),
		WrappedKeyAlg:      alg,
		WrappedKey:         []byte("eph-wrap"),
		CreatedBy:          by,
		MaxRedemptions:     max,
		ExpiresAt:          expires,
	}
	require.NoError(t, NewInviteRepository(db).Create(context.Background(), inv))
	return inv
}

func TestInviteRepository_RedeemSingleUse(t *testing.T) {
	db := newTestDB(t)
	r := NewInviteRepository(db)
	ctx := context.Background()
	now := time.Now()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	eve := seedUser(t, db, "eve")
	g := seedGroup(t, db, alice)
	inv := seedInvite(t, db, g, alice.ID, 1, nil)

	res, err := r.Redeem(ctx, inv.ID, bob.ID, alg, []byte("bob-wrap"), now)
	require.NoError(t, err)
	assert.False(t, res.AlreadyKeyed)
	assert.Equal(t, []byte("bob-wrap"), res.Membership.WrappedKey)
	assert.Equal(t, model.RoleMember, res.Membership.Role)

	// повтор тем же пользователем: ключ уже есть, приглашение не тратится
	res, err = r.Redeem(ctx, inv.ID, bob.ID, alg, []byte("other"), now)
	require.NoError(t, err)
	assert.True(t, res.AlreadyKeyed)
	assert.Equal(t, []byte("bob-wrap"), res.Membership.WrappedKey)

	// второй пользователь: лимит исчерпан, членство не создаётся
	_, err = r.Redeem(ctx, inv.ID, eve.ID, alg, []byte("eve-wrap"), now)
	assert.ErrorIs(t, err, ErrInviteExhausted)
	_, err = NewGroupRepository(db).GetMembership(ctx, g.ID, eve.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := r.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Redemptions)
}

func TestInviteRepository_RedeemUpgradesLegacyMember(t *testing.T) {
	db := newTestDB(t)
	r := NewInviteRepository(db)
	groups := NewGroupRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	g := seedGroup(t, db, alice)
	inv := seedInvite(t, db, g, alice.ID, 0, nil)

	_, err := groups.AddMemberIfAbsent(ctx, &model.Membership{GroupID: g.ID, UserID: bob.ID, Role: model.RoleMember})
	require.NoError(t, err)

	res, err := r.Redeem(ctx, inv.ID, bob.ID, alg, []byte("bob-wrap"), time.Now())
	require.NoError(t, err)
	assert.False(t, res.AlreadyKeyed)
	assert.True(t, res.Membership.HasKey())

	members, err := groups.ListByGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestInviteRepository_RedeemExpired(t *testing.T) {
	db := newTestDB(t)
	r := NewInviteRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	g := seedGroup(t, db, alice)
	past := time.Now().Add(-time.Minute)
	inv := seedInvite(t, db, g, alice.ID, 0, &past)

	_, err := r.Redeem(ctx, inv.ID, bob.ID, alg, []byte("bob-wrap"), time.Now())
	assert.ErrorIs(t, err, ErrInviteExpired)

	_, err = r.Redeem(ctx, uuid.NewString(), bob.ID, alg, []byte("bob-wrap"), time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInviteRepository_ConcurrentRedeemSameUser(t *testing.T) {
	db := newTestDB(t)
	r := NewInviteRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	g := seedGroup(t, db, alice)
	inv := seedInvite(t, db, g, alice.ID, 0, nil)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Redeem(ctx, inv.ID, bob.ID, alg, []byte(fmt.Sprintf("wrap-%d", i)), time.Now())
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	members, err := NewGroupRepository(db).ListByGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	got, err := r.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Redemptions)
}

func TestInviteRepository_ConcurrentRedeemLimit(t *testing.T) {
	db := newTestDB(t)
	r := NewInviteRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	g := seedGroup(t, db, alice)
	inv := seedInvite(t, db, g, alice.ID, 2, nil)

	const n = 6
	users := make([]*model.User, n)
	for i := range users {
		users[i] = seedUser(t, db, fmt.Sprintf("user%d", i))
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, u := range users {
		wg.Add(1)
		go func(u *model.User) {
			defer wg.Done()
			_, err := r.Redeem(ctx, inv.ID, u.ID, alg, []byte("wrap"), time.Now())
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrInviteExhausted)
		}(u)
	}
	wg.Wait()
	assert.Equal(t, 2, ok)

	members, err := NewGroupRepository(db).ListByGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

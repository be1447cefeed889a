package service

import (
	"context"
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"uunn/internal/keyspec"
	"uunn/internal/model"
	"uunn/internal/repo"
)

var (
	ephOnce sync.Once
	eph     *rsa.PrivateKey
	spki    []byte
)

// testEphemeral: эфемерная пара RSA-2048 тестового приглашения.
func testEphemeral(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	ephOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, keyspec.RSABits)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		eph = k
		spki, _ = x509.MarshalPKIXPublicKey(&k.PublicKey)
	})
	return eph
}

// testSPKI: публичная часть testEphemeral в SPKI DER.
func testSPKI(t *testing.T) []byte {
	t.Helper()
	testEphemeral(t)
	return spki
}

// testProof подписывает погашение ключом k так же, как это делает клиент.
func testProof(t *testing.T, k *rsa.PrivateKey, inviteID string, userID int64, wk WrappedKey) []byte {
	t.Helper()
	sig, err := rsa.SignPSS(rand.Reader, k, stdcrypto.SHA256, keyspec.RedeemDigest(inviteID, userID, wk.Payload), keyspec.PSSOptions)
	if err != nil {
		t.Fatalf("sign proof: %v", err)
	}
	return sig
}

// testWrapped: обёртка правильного алгоритма и размера.
func testWrapped() WrappedKey {
	return WrappedKey{Alg: keyspec.AlgRSAOAEP2048SHA256, Payload: make([]byte, keyspec.WrappedKeyLen)}
}

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

// мок для repo.GroupRepository
type mockGroupRepo struct{ mock.Mock }

func (m *mockGroupRepo) CreateWithMembership(ctx context.Context, g *model.Group, mm *model.Membership) error {
	return m.Called(ctx, g, mm).Error(0)
}

func (m *mockGroupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	args := m.Called(ctx, id)
	if g, ok := args.Get(0).(*model.Group); ok {
		return g, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGroupRepo) GetByJoinCode(ctx context.Context, code string) (*model.Group, error) {
	args := m.Called(ctx, code)
	if g, ok := args.Get(0).(*model.Group); ok {
		return g, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGroupRepo) GetMembership(ctx context.Context, groupID string, userID int64) (*model.Membership, error) {
	args := m.Called(ctx, groupID, userID)
	if mm, ok := args.Get(0).(*model.Membership); ok {
		return mm, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGroupRepo) AddMemberIfAbsent(ctx context.Context, mm *model.Membership) (bool, error) {
	args := m.Called(ctx, mm)
	return args.Bool(0), args.Error(1)
}

func (m *mockGroupRepo) ListByUser(ctx context.Context, userID int64) ([]model.Membership, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).([]model.Membership)
	return res, args.Error(1)
}

func (m *mockGroupRepo) ListByGroup(ctx context.Context, groupID string) ([]model.Membership, error) {
	args := m.Called(ctx, groupID)
	res, _ := args.Get(0).([]model.Membership)
	return res, args.Error(1)
}

var _ repo.GroupRepository = (*mockGroupRepo)(nil)

// мок для repo.InviteRepository
type mockInviteRepo struct{ mock.Mock }

func (m *mockInviteRepo) Create(ctx context.Context, inv *model.Invite) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *mockInviteRepo) GetByID(ctx context.Context, id string) (*model.Invite, error) {
	args := m.Called(ctx, id)
	if inv, ok := args.Get(0).(*model.Invite); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInviteRepo) Redeem(ctx context.Context, inviteID string, userID int64, alg string, wrapped []byte, now time.Time) (*repo.Redemption, error) {
	args := m.Called(ctx, inviteID, userID, alg, wrapped, now)
	if r, ok := args.Get(0).(*repo.Redemption); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.InviteRepository = (*mockInviteRepo)(nil)

// мок для repo.VaultRepository
type mockVaultRepo struct{ mock.Mock }

func (m *mockVaultRepo) Put(ctx context.Context, v *model.Vault) error {
	return m.Called(ctx, v).Error(0)
}

func (m *mockVaultRepo) Get(ctx context.Context, userID int64) (*model.Vault, error) {
	args := m.Called(ctx, userID)
	if v, ok := args.Get(0).(*model.Vault); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.VaultRepository = (*mockVaultRepo)(nil)

package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"uunn/internal/cli/crypto"
	"uunn/internal/cli/model"
	"uunn/internal/cli/repo"
)

var (
	keysOnce sync.Once
	keys     []*crypto.Identity
)

// testIdentity: одна из четырёх заранее сгенерированных пар ключей.
func testIdentity(t *testing.T, i int) *crypto.Identity {
	t.Helper()
	keysOnce.Do(func() {
		for n := 0; n < 4; n++ {
			id, err := crypto.GenerateIdentity(fmt.Sprintf("u%d", n))
			if err != nil {
				panic(err)
			}
			keys = append(keys, id)
		}
	})
	// копия, чтобы Wipe в одном тесте не портил ключ другим
	der, err := crypto.MarshalPrivateKey(keys[i].Private)
	require.NoError(t, err)
	priv, err := crypto.ParsePrivateKey(der)
	require.NoError(t, err)
	return crypto.NewIdentity(keys[i].UserID, priv, keys[i].CreatedAt)
}

func spki(t *testing.T, id *crypto.Identity) []byte {
	t.Helper()
	der, err := crypto.MarshalPublicKey(id.Public)
	require.NoError(t, err)
	return der
}

// keyedMembership членство с ключом k, обёрнутым под id.
func keyedMembership(t *testing.T, groupID string, k *crypto.SymmetricKey, id *crypto.Identity) model.Membership {
	t.Helper()
	wk, err := crypto.Wrap(k, id.Public)
	require.NoError(t, err)
	return model.Membership{GroupID: groupID, Role: model.RoleAdmin, WrappedKey: &wk}
}

type mockStore struct{ mock.Mock }

var (
	_ AccountStore = (*mockStore)(nil)
	_ GroupStore   = (*mockStore)(nil)
	_ InviteStore  = (*mockStore)(nil)
	_ VaultStore   = (*mockStore)(nil)
)

func (m *mockStore) Register(ctx context.Context, login, password string, publicKey []byte) (model.User, error) {
	args := m.Called(ctx, login, password, publicKey)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockStore) Login(ctx context.Context, login, password string) (model.User, error) {
	args := m.Called(ctx, login, password)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockStore) Me(ctx context.Context) (model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockStore) CreateGroup(ctx context.Context, name string, wk crypto.WrappedKey) (model.Membership, error) {
	args := m.Called(ctx, name, wk)
	return args.Get(0).(model.Membership), args.Error(1)
}

func (m *mockStore) JoinGroup(ctx context.Context, code string) (model.Membership, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(model.Membership), args.Error(1)
}

func (m *mockStore) Membership(ctx context.Context, groupID string) (model.Membership, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(model.Membership), args.Error(1)
}

func (m *mockStore) CreateInvite(ctx context.Context, inv model.NewInvite) (model.Invite, error) {
	args := m.Called(ctx, inv)
	return args.Get(0).(model.Invite), args.Error(1)
}

func (m *mockStore) GetInvite(ctx context.Context, id string) (model.Invite, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Invite), args.Error(1)
}

func (m *mockStore) RedeemInvite(ctx context.Context, id string, wk crypto.WrappedKey, proof []byte) (model.Membership, error) {
	args := m.Called(ctx, id, wk, proof)
	return args.Get(0).(model.Membership), args.Error(1)
}

func (m *mockStore) PutVault(ctx context.Context, blob crypto.VaultBlob) error {
	return m.Called(ctx, blob).Error(0)
}

func (m *mockStore) GetVault(ctx context.Context) (crypto.VaultBlob, error) {
	args := m.Called(ctx)
	return args.Get(0).(crypto.VaultBlob), args.Error(1)
}

func (m *mockStore) PublicKey(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

// memIdentities IdentityStore в памяти.
type memIdentities struct {
	mu   sync.Mutex
	byID map[string]*crypto.Identity
}

var _ repo.IdentityStore = (*memIdentities)(nil)

func newMemIdentities() *memIdentities {
	return &memIdentities{byID: map[string]*crypto.Identity{}}
}

func (s *memIdentities) Save(login string, id *crypto.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[login] = id
	return nil
}

func (s *memIdentities) Load(login string) (*crypto.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byID[login]
	if !ok {
		return nil, repo.ErrIdentityNotFound
	}
	return id, nil
}

func (s *memIdentities) Delete(login string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, login)
	return nil
}

// memSession токен и логин в памяти.
type memSession struct {
	token, login string
}

func (s *memSession) Save(token string) error { s.token = token; return nil }

func (s *memSession) Load() (string, error) {
	if s.token == "" {
		return "", fmt.Errorf("no token")
	}
	return s.token, nil
}

func (s *memSession) Clear() error { s.token = ""; return nil }

func (s *memSession) SaveLogin(login string) error { s.login = login; return nil }

func (s *memSession) LoadLogin() (string, error) {
	if s.login == "" {
		return "", fmt.Errorf("no login")
	}
	return s.login, nil
}

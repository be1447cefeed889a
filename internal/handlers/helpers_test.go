package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"uunn/internal/cli/crypto"
	"uunn/internal/config"
	"uunn/internal/handlers"
	"uunn/internal/middleware"
	"uunn/internal/model"
	"uunn/internal/repo"
	"uunn/internal/service"
)

const testSecret = "test-secret"

// Minimal mocks
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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repo.InitDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// newTestRouter собирает роутер; ur == nil: пользователи тоже в SQLite.
func newTestRouter(t *testing.T, ur repo.UserRepository) http.Handler {
	t.Helper()
	cfg := &config.Config{AuthSecret: testSecret, InviteMaxRedemptions: 1}
	logger := zap.NewNop().Sugar()
	db := newTestDB(t)
	if ur == nil {
		ur = repo.NewUserRepository(db)
	}

	h := handlers.NewHandler(
		service.NewUserService(ur),
		service.NewGroupService(repo.NewGroupRepository(db)),
		service.NewInviteService(repo.NewInviteRepository(db), repo.NewGroupRepository(db),
			service.InvitePolicy{MaxRedemptions: cfg.InviteMaxRedemptions}),
		service.NewVaultService(repo.NewVaultRepository(db)),
		logger, cfg,
	)
	return h.Router
}

func addAuthCookie(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

var (
	keysOnce sync.Once
	keys     []*crypto.Identity
)

// testIdentity: одна из трёх заранее сгенерированных пар ключей.
func testIdentity(t *testing.T, i int) *crypto.Identity {
	t.Helper()
	keysOnce.Do(func() {
		for n := 0; n < 3; n++ {
			id, err := crypto.GenerateIdentity(fmt.Sprintf("u%d", n))
			if err != nil {
				t.Fatalf("generate identity: %v", err)
			}
			keys = append(keys, id)
		}
	})
	return keys[i]
}

func spki(t *testing.T, id *crypto.Identity) []byte {
	t.Helper()
	der, err := crypto.MarshalPublicKey(id.Public)
	require.NoError(t, err)
	return der
}

// client: пользователь тестового API с cookie сессии.
type client struct {
	id      int64
	t       *testing.T
	router  http.Handler
	cookies []*http.Cookie
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	c.router.ServeHTTP(rr, req)
	if cks := rr.Result().Cookies(); len(cks) > 0 {
		c.cookies = cks
	}
	return rr
}

func register(t *testing.T, router http.Handler, login string, id *crypto.Identity) *client {
	t.Helper()
	c := &client{t: t, router: router}
	rr := c.do(http.MethodPost, "/api/user/register", map[string]any{
		"login": login, "password": "pw-" + login, "public_key": spki(t, id),
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var u struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &u))
	c.id = u.ID
	return c
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&v))
	return v
}

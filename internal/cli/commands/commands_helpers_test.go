package commands

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"uunn/internal/config"
	"uunn/internal/handlers"
	srvrepo "uunn/internal/repo"
	srv "uunn/internal/service"
)

// перехват stdout на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}

// withPasswords подставляет ответы на запросы пароля по порядку.
func withPasswords(t *testing.T, answers ...string) {
	t.Helper()
	old := readPassword
	readPassword = func(string) (string, error) {
		if len(answers) == 0 {
			return "", fmt.Errorf("unexpected password prompt")
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	t.Cleanup(func() { readPassword = old })
}

// newServer поднимает настоящий API поверх SQLite в памяти.
func newServer(t *testing.T) string {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := srvrepo.InitDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	cfg := &config.Config{AuthSecret: "cli-test", InviteMaxRedemptions: 1}
	groups := srvrepo.NewGroupRepository(db)
	h := handlers.NewHandler(
		srv.NewUserService(srvrepo.NewUserRepository(db)),
		srv.NewGroupService(groups),
		srv.NewInviteService(srvrepo.NewInviteRepository(db), groups, srv.InvitePolicy{MaxRedemptions: 1}),
		srv.NewVaultService(srvrepo.NewVaultRepository(db)),
		zap.NewNop().Sugar(), cfg,
	)
	ts := httptest.NewServer(h.Router)
	t.Cleanup(func() {
		ts.Close()
		_ = sqlDB.Close()
	})
	return ts.URL
}

// deviceConfig конфиг отдельного «устройства»: свои токен и БД ключей.
func deviceConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ServerURL:    serverURL,
		ClientDBPath: filepath.Join(dir, "uunncli.db"),
		TokenFile:    filepath.Join(dir, "token"),
		VaultKDF:     "argon2id",
	}
}

// run выполняет команду через диспетчер и возвращает код и вывод.
func run(t *testing.T, cfg *config.Config, args ...string) (int, string) {
	t.Helper()
	var code int
	out := withStdoutCapture(t, func() { code = Dispatch(context.Background(), cfg, args) })
	return code, out
}

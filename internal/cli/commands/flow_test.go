package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uunn/internal/cli/bootstrap"
	"uunn/internal/cli/service"
	"uunn/internal/config"
)

const vaultPassword = "purple otter juggles seven lanterns!"

func firstGroupID(t *testing.T, cfg *config.Config) string {
	t.Helper()
	app, cleanup, err := bootstrap.Open(cfg)
	require.NoError(t, err)
	defer cleanup()
	list, err := app.Client.Groups(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[0].GroupID
}

// inviteLine строка вывода с ссылкой приглашения.
func inviteLine(t *testing.T, out string) string {
	t.Helper()
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "/invite/") && strings.Contains(l, "#") {
			return strings.TrimSpace(l)
		}
	}
	t.Fatalf("no invite link in output: %s", out)
	return ""
}

func TestCLI_GroupInviteFlow(t *testing.T) {
	url := newServer(t)
	alice := deviceConfig(t, url)
	bob := deviceConfig(t, url)
	var transcript strings.Builder

	code, out := run(t, alice, "register", "alice", "alice-login-pw")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Key fingerprint")
	transcript.WriteString(out)

	withPasswords(t, "bob-login-pw")
	code, out = run(t, bob, "register", "bob")
	require.Equal(t, 0, code, out)
	transcript.WriteString(out)

	code, out = run(t, alice, "group-create", "tenants", "union")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, `"tenants union"`)
	transcript.WriteString(out)
	gid := firstGroupID(t, alice)

	// без ключа Боб не может читать
	code, out = run(t, bob, "encrypt", gid, "hello")
	assert.Equal(t, 1, code, out)

	code, out = run(t, alice, "invite-create", gid)
	require.Equal(t, 0, code, out)
	link := inviteLine(t, out)
	parsed, err := service.ParseInviteLink(link)
	require.NoError(t, err)

	code, out = run(t, bob, "invite-redeem", link)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "with access to content")
	transcript.WriteString(out)

	code, out = run(t, bob, "invite-redeem", link)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Already a member")
	transcript.WriteString(out)

	code, out = run(t, alice, "encrypt", gid, "rent", "strike", "monday")
	require.Equal(t, 0, code, out)
	sealed := strings.TrimSpace(out)

	code, out = run(t, bob, "decrypt", gid, sealed)
	require.Equal(t, 0, code, out)
	assert.Equal(t, "rent strike monday\n", out)
	transcript.WriteString(out)

	code, out = run(t, alice, "members", gid)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")
	transcript.WriteString(out)

	code, out = run(t, bob, "groups")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, gid)
	transcript.WriteString(out)

	all := transcript.String()
	for _, secret := range []string{"alice-login-pw", "bob-login-pw", parsed.Fragment} {
		assert.NotContains(t, all, secret)
	}
}

func TestCLI_LegacyJoin(t *testing.T) {
	url := newServer(t)
	alice := deviceConfig(t, url)
	carol := deviceConfig(t, url)

	code, out := run(t, alice, "register", "alice", "pw-a")
	require.Equal(t, 0, code, out)
	code, out = run(t, carol, "register", "carol", "pw-c")
	require.Equal(t, 0, code, out)

	code, out = run(t, alice, "group-create", "club")
	require.Equal(t, 0, code, out)
	var joinCode string
	for _, l := range strings.Split(out, "\n") {
		if i := strings.Index(l, "Join code: "); i >= 0 {
			joinCode = strings.Fields(l[i+len("Join code: "):])[0]
		}
	}
	require.NotEmpty(t, joinCode)

	code, out = run(t, carol, "group-join", joinCode)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "No access to group content")

	gid := firstGroupID(t, carol)
	code, out = run(t, carol, "invite-create", gid)
	assert.Equal(t, 1, code, out)
}

func TestCLI_VaultBackupAndRecover(t *testing.T) {
	url := newServer(t)
	laptop := deviceConfig(t, url)
	phone := deviceConfig(t, url)

	code, out := run(t, laptop, "register", "dana", "pw-d")
	require.Equal(t, 0, code, out)
	fingerprint := out[strings.Index(out, "Key fingerprint: "):]
	fingerprint = strings.TrimSpace(strings.SplitN(fingerprint, "\n", 2)[0])

	code, out = run(t, laptop, "vault-backup", "weak")
	assert.Equal(t, 1, code, out)

	withPasswords(t, vaultPassword, vaultPassword)
	code, out = run(t, laptop, "vault-backup")
	require.Equal(t, 0, code, out)
	assert.NotContains(t, out, vaultPassword)

	code, out = run(t, phone, "login", "dana", "pw-d")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "No identity key on this device")

	code, out = run(t, phone, "vault-recover", "wrong password for sure!!")
	assert.Equal(t, 1, code, out)

	code, out = run(t, phone, "vault-recover", vaultPassword)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, fingerprint)
	assert.NotContains(t, out, vaultPassword)

	code, out = run(t, phone, "whoami")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, fingerprint)
}

func TestCLI_UsageErrors(t *testing.T) {
	cfg := deviceConfig(t, "http://127.0.0.1:1")
	for _, args := range [][]string{
		{"register"},
		{"login"},
		{"group-join"},
		{"members"},
		{"invite-create"},
		{"invite-redeem"},
		{"encrypt", "g"},
		{"decrypt", "g"},
		{"whoami", "extra"},
	} {
		code, out := run(t, cfg, args...)
		assert.Equal(t, 2, code, "%v: %s", args, out)
	}

	code, out := run(t, cfg, "invite-redeem", "http://host/invite/abc")
	assert.Equal(t, 1, code, out)
}

func TestSealedEncoding(t *testing.T) {
	_, err := decodeSealed("no-dot")
	assert.Error(t, err)
	_, err = decodeSealed("!!.??")
	assert.Error(t, err)
}

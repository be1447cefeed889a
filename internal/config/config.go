package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	// Политика приглашений: 1: одноразовые, 0: без ограничения. TTL 0: бессрочно.
	InviteMaxRedemptions int           `env:"INVITE_MAX_REDEMPTIONS" envDefault:"1"`
	InviteTTL            time.Duration `env:"INVITE_TTL"`
	// Минимальная энтропия пароля при регистрации, бит (0: без проверки).
	PasswordMinEntropy float64 `env:"PASSWORD_MIN_ENTROPY"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL    string `env:"-"`
	ClientDBPath string `env:"CLIENT_DB_PATH"`
	TokenFile    string `env:"TOKEN_FILE"`
	// VaultKDF: KDF для новых резервных копий: argon2id | pbkdf2-sha256.
	VaultKDF string `env:"VAULT_KDF"`
	Version  bool   `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres://... или путь/DSN SQLite)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.IntVar(&cfg.InviteMaxRedemptions, "invite-max", cfg.InviteMaxRedemptions, "сколько раз можно погасить приглашение (0: без ограничения)")
	flag.DurationVar(&cfg.InviteTTL, "invite-ttl", cfg.InviteTTL, "срок действия приглашения (0: бессрочно)")
	flag.Float64Var(&cfg.PasswordMinEntropy, "password-entropy", cfg.PasswordMinEntropy, "минимальная энтропия пароля при регистрации, бит")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "path to client SQLite DB with the identity key")
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.StringVar(&cfg.VaultKDF, "vault-kdf", cfg.VaultKDF, "KDF for vault backups: argon2id or pbkdf2-sha256")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.InviteMaxRedemptions < 0 {
		cfg.InviteMaxRedemptions = 1
	}
	if cfg.InviteTTL < 0 {
		cfg.InviteTTL = 0
	}
	if cfg.VaultKDF != "pbkdf2-sha256" {
		cfg.VaultKDF = "argon2id"
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	// Fill client defaults if empty
	home, _ := os.UserHomeDir()
	dir := filepath.Join(home, ".uunn")
	if cfg.ClientDBPath == "" {
		cfg.ClientDBPath = filepath.Join(dir, "uunncli.db")
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = filepath.Join(dir, "token")
	}

	return cfg
}

package sqlite

import (
	"database/sql"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"uunn/internal/cli/crypto"
	"uunn/internal/cli/repo"
)

const pemType = "PRIVATE KEY"

// IdentityRepositorySQLite: локальное хранилище identity (SQLite-файл с правами 0600).
type IdentityRepositorySQLite struct {
	db *sql.DB
}

var _ repo.IdentityStore = (*IdentityRepositorySQLite)(nil)

// Open открывает (и создаёт при необходимости) файл БД и применяет миграции.
func Open(dbPath string) (*IdentityRepositorySQLite, error) {
	if dbPath == "" {
		return nil, errors.New("empty client db path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, err
	}
	// создаём файл заранее, чтобы задать права до первой записи ключа
	f, err := os.OpenFile(dbPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	_ = f.Close()
	if err := os.Chmod(dbPath, 0o600); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	r := &IdentityRepositorySQLite{db: db}
	if err := r.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate client db: %w", err)
	}
	return r, nil
}

// Close закрывает соединение с БД.
func (r *IdentityRepositorySQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate гарантирует наличие необходимых таблиц.
func (r *IdentityRepositorySQLite) Migrate() error {
	_, err := r.db.Exec(initialDDL())
	return err
}

// Save сохраняет identity для логина, заменяя прежнюю.
func (r *IdentityRepositorySQLite) Save(login string, id *crypto.Identity) error {
	if login == "" {
		return errors.New("empty login")
	}
	if id == nil || id.Private == nil {
		return crypto.ErrInvalidKey
	}
	der, err := crypto.MarshalPrivateKey(id.Private)
	if err != nil {
		return err
	}
	block := pem.EncodeToMemory(&pem.Block{Type: pemType, Bytes: der})
	crypto.Zero(der)
	defer crypto.Zero(block)

	spki, err := crypto.MarshalPublicKey(id.Public)
	if err != nil {
		return err
	}
	created := id.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err = r.db.Exec(`INSERT INTO identities(login, user_id, private_pem, public_spki, fingerprint, created_at)
        VALUES(?, ?, ?, ?, ?, ?)
        ON CONFLICT(login) DO UPDATE SET
            user_id = excluded.user_id,
            private_pem = excluded.private_pem,
            public_spki = excluded.public_spki,
            fingerprint = excluded.fingerprint,
            created_at = excluded.created_at`,
		login, id.UserID, string(block), spki, id.Fingerprint(), created.Unix(),
	)
	return err
}

// Load возвращает identity логина или repo.ErrIdentityNotFound.
func (r *IdentityRepositorySQLite) Load(login string) (*crypto.Identity, error) {
	var (
		userID  string
		privPEM string
		created int64
	)
	err := r.db.QueryRow(`SELECT user_id, private_pem, created_at FROM identities WHERE login = ?`, login).
		Scan(&userID, &privPEM, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrIdentityNotFound
		}
		return nil, err
	}
	block, _ := pem.Decode([]byte(privPEM))
	if block == nil || block.Type != pemType {
		return nil, fmt.Errorf("%w: stored identity is not a PEM private key", crypto.ErrInvalidKey)
	}
	defer crypto.Zero(block.Bytes)
	priv, err := crypto.ParsePrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	return crypto.NewIdentity(userID, priv, time.Unix(created, 0).UTC()), nil
}

// Delete удаляет identity логина с устройства.
func (r *IdentityRepositorySQLite) Delete(login string) error {
	_, err := r.db.Exec(`DELETE FROM identities WHERE login = ?`, login)
	return err
}

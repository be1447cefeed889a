package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// AuthFSStore: файловое хранилище токена сессии и последнего логина для CLI.
// В файлах нет ключевого материала.
type AuthFSStore struct {
	// TokenPath путь к файлу токена. Файл логина лежит в том же каталоге.
	TokenPath string
}

// New создаёт хранилище с токеном по пути tokenPath.
func New(tokenPath string) AuthFSStore {
	return AuthFSStore{TokenPath: tokenPath}
}

func (s AuthFSStore) ensureDir() error {
	if s.TokenPath == "" {
		return errors.New("token path is not set")
	}
	return os.MkdirAll(filepath.Dir(s.TokenPath), 0o700)
}

func (s AuthFSStore) lastLoginPath() string {
	return filepath.Join(filepath.Dir(s.TokenPath), "last_login")
}

// Save сохраняет auth‑токен в файл.
func (s AuthFSStore) Save(token string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	return os.WriteFile(s.TokenPath, []byte(token), 0o600)
}

// Load читает auth‑токен из файла.
func (s AuthFSStore) Load() (string, error) {
	if s.TokenPath == "" {
		return "", errors.New("token path is not set")
	}
	return readTrimmed(s.TokenPath, "empty token file")
}

// Clear удаляет токен (logout). Отсутствие файла не ошибка.
func (s AuthFSStore) Clear() error {
	if s.TokenPath == "" {
		return nil
	}
	if err := os.Remove(s.TokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// SaveLogin сохраняет логин пользователя в файл.
func (s AuthFSStore) SaveLogin(login string) error {
	if login == "" {
		return errors.New("empty login")
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	return os.WriteFile(s.lastLoginPath(), []byte(login), 0o600)
}

// LoadLogin читает логин пользователя из файла.
func (s AuthFSStore) LoadLogin() (string, error) {
	if s.TokenPath == "" {
		return "", errors.New("token path is not set")
	}
	return readTrimmed(s.lastLoginPath(), "no stored login")
}

func readTrimmed(p, emptyMsg string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	// обрезаем завершающие переводы строки/пробелы
	v := strings.TrimRight(string(b), " \t\r\n")
	if v == "" {
		return "", errors.New(emptyMsg)
	}
	return v, nil
}

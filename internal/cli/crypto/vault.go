package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"

	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	"uunn/internal/keyspec"
)

type (
	KDF       = keyspec.KDF
	KDFParams = keyspec.KDFParams
)

const (
	KDFArgon2id     = keyspec.KDFArgon2id
	KDFPBKDF2SHA256 = keyspec.KDFPBKDF2SHA256

	SaltLen = keyspec.SaltLen

	// MinPasswordEntropy: минимальная энтропия пароля хранилища, бит.
	MinPasswordEntropy = 50
)

// DefaultKDFParams: argon2id, t=3, m=64 MiB, p=4.
func DefaultKDFParams() KDFParams {
	return KDFParams{Algorithm: KDFArgon2id, Time: 3, Memory: 64 * 1024, Threads: 4}
}

// PBKDF2Params параметры PBKDF2-SHA256 (совместимость с веб-клиентом).
func PBKDF2Params(iterations uint32) KDFParams {
	return KDFParams{Algorithm: KDFPBKDF2SHA256, Time: iterations}
}

// VaultBlob: то, что уходит на сервер: шифртекст приватного ключа, соль и параметры KDF.
type VaultBlob struct {
	Sealed
	Salt []byte    `json:"salt"`
	KDF  KDFParams `json:"kdf"`
}

// CheckPassword проверяет стойкость пароля хранилища.
func CheckPassword(password string) error {
	if err := passwordvalidator.Validate(password, MinPasswordEntropy); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}
	return nil
}

// NewSalt возвращает случайную соль SaltLen байт.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	return salt, nil
}

// DeriveKey выводит ключ из пароля и соли.
func DeriveKey(password string, salt []byte, p KDFParams) (*SymmetricKey, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(salt) != SaltLen {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltLen, len(salt))
	}
	return deriveKey(password, salt, p), nil
}

func deriveKey(password string, salt []byte, p KDFParams) *SymmetricKey {
	pw := []byte(password)
	defer Zero(pw)
	var raw []byte
	switch p.Algorithm {
	case KDFPBKDF2SHA256:
		raw = pbkdf2.Key(pw, salt, int(p.Time), KeyLen, sha256.New)
	default:
		raw = argon2.IDKey(pw, salt, p.Time, p.Memory, p.Threads, KeyLen)
	}
	defer Zero(raw)
	k := &SymmetricKey{}
	copy(k.b[:], raw)
	return k
}

// SealVault шифрует приватный ключ ключом, выведенным из пароля и новой соли.
func SealVault(priv *rsa.PrivateKey, password string, p KDFParams) (VaultBlob, error) {
	der, err := MarshalPrivateKey(priv)
	if err != nil {
		return VaultBlob{}, err
	}
	defer Zero(der)
	salt, err := NewSalt()
	if err != nil {
		return VaultBlob{}, err
	}
	key, err := DeriveKey(password, salt, p)
	if err != nil {
		return VaultBlob{}, err
	}
	defer key.Wipe()
	sealed, err := Encrypt(key, der)
	if err != nil {
		return VaultBlob{}, err
	}
	return VaultBlob{Sealed: sealed, Salt: salt, KDF: p}, nil
}

// OpenVault расшифровывает приватный ключ. Неверный пароль, повреждённый
// шифртекст, соль или параметры дают одну и ту же ErrRecovery; KDF
// выполняется в любом случае.
func OpenVault(blob VaultBlob, password string) (*rsa.PrivateKey, error) {
	ok := true
	p := blob.KDF
	if p.Validate() != nil {
		p = DefaultKDFParams()
		ok = false
	}
	salt := blob.Salt
	if len(salt) != SaltLen {
		salt = make([]byte, SaltLen)
		ok = false
	}
	key := deriveKey(password, salt, p)
	defer key.Wipe()

	der, err := Decrypt(key, blob.Ciphertext, blob.Nonce)
	if err != nil || !ok {
		return nil, ErrRecovery
	}
	defer Zero(der)
	priv, err := ParsePrivateKey(der)
	if err != nil {
		return nil, ErrRecovery
	}
	return priv, nil
}

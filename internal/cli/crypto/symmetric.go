package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"uunn/internal/keyspec"
)

const (
	// KeyLen: длина ключа для AES‑256 (в байтах).
	KeyLen = 32
	// NonceLen: длина nonce для AES-GCM (96 бит).
	NonceLen = keyspec.NonceLen
)

// SymmetricKey: сырой ключ контента группы. Живёт только в памяти,
// после использования его нужно обнулить через Wipe.
type SymmetricKey struct {
	b [KeyLen]byte
}

// Sealed: результат шифрования: шифртекст с тегом и nonce.
type Sealed struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
}

// GenerateKey создаёт новый случайный 256-битный ключ.
func GenerateKey() (*SymmetricKey, error) {
	k := &SymmetricKey{}
	if _, err := io.ReadFull(rand.Reader, k.b[:]); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return k, nil
}

// KeyFromBytes копирует сырые байты ключа. Исходный срез вызывающий обнуляет сам.
func KeyFromBytes(raw []byte) (*SymmetricKey, error) {
	if len(raw) != KeyLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, KeyLen, len(raw))
	}
	k := &SymmetricKey{}
	copy(k.b[:], raw)
	return k, nil
}

// Bytes возвращает копию ключа. Копию тоже нужно обнулить.
func (k *SymmetricKey) Bytes() []byte {
	out := make([]byte, KeyLen)
	copy(out, k.b[:])
	return out
}

// Equal сравнивает ключи (для тестов и проверок восстановления).
func (k *SymmetricKey) Equal(other *SymmetricKey) bool {
	if k == nil || other == nil {
		return false
	}
	return k.b == other.b
}

// Wipe обнуляет ключ. Повторный вызов безопасен.
func (k *SymmetricKey) Wipe() {
	if k == nil {
		return
	}
	Zero(k.b[:])
}

// WithKey вызывает fn и гарантированно обнуляет ключ на любом пути выхода.
func WithKey(k *SymmetricKey, fn func(*SymmetricKey) error) error {
	defer k.Wipe()
	return fn(k)
}

func newGCM(k *SymmetricKey) (cipher.AEAD, error) {
	if k == nil {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(k.b[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt шифрует plain с помощью AES‑GCM. Nonce всегда генерируется
// внутри, передать свой nonce нельзя.
func Encrypt(k *SymmetricKey, plain []byte) (Sealed, error) {
	gcm, err := newGCM(k)
	if err != nil {
		return Sealed{}, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return Sealed{}, fmt.Errorf("read nonce: %w", err)
	}
	out := gcm.Seal(nil, nonce, plain, nil)
	return Sealed{Ciphertext: out, Nonce: nonce}, nil
}

// Decrypt расшифровывает шифртекст. Любая ошибка: ErrAuthentication,
// частичный открытый текст не возвращается.
func Decrypt(k *SymmetricKey, ciphertext, nonce []byte) ([]byte, error) {
	gcm, err := newGCM(k)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, ErrAuthentication
	}
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plain, nil
}

// Zero обнуляет срез.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

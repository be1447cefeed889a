package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"uunn/internal/keyspec"
)

// Algorithm: тег алгоритма обёртки ключа.
type Algorithm string

// AlgRSAOAEP2048SHA256: единственный поддерживаемый алгоритм обёртки.
const AlgRSAOAEP2048SHA256 Algorithm = keyspec.AlgRSAOAEP2048SHA256

// WrappedKey: ключ группы, зашифрованный под чей-то публичный ключ.
type WrappedKey struct {
	Algorithm Algorithm `json:"alg"`
	Payload   []byte    `json:"payload"`
}

// IsZero сообщает, что обёртки нет (членство без доступа к контенту).
func (w WrappedKey) IsZero() bool {
	return w.Algorithm == "" && len(w.Payload) == 0
}

// Wrap шифрует сырые байты ключа под публичный ключ получателя (RSA-OAEP, SHA-256).
func Wrap(k *SymmetricKey, pub *rsa.PublicKey) (WrappedKey, error) {
	if k == nil || pub == nil {
		return WrappedKey{}, ErrInvalidKey
	}
	if pub.N.BitLen() != RSABits {
		return WrappedKey{}, fmt.Errorf("%w: expected %d-bit modulus", ErrInvalidKey, RSABits)
	}
	raw := k.Bytes()
	defer Zero(raw)
	ct, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, raw, nil)
	if err != nil {
		return WrappedKey{}, fmt.Errorf("wrap key: %w", err)
	}
	return WrappedKey{Algorithm: AlgRSAOAEP2048SHA256, Payload: ct}, nil
}

// Unwrap разворачивает ключ приватным ключом получателя.
// Неверный алгоритм или размер: ErrMalformed, ошибка OAEP: ErrKeyMismatch.
func Unwrap(w WrappedKey, priv *rsa.PrivateKey) (*SymmetricKey, error) {
	if priv == nil {
		return nil, ErrInvalidKey
	}
	if w.Algorithm != AlgRSAOAEP2048SHA256 {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformed, w.Algorithm)
	}
	if len(w.Payload) != priv.Size() {
		return nil, fmt.Errorf("%w: payload size %d", ErrMalformed, len(w.Payload))
	}
	raw, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, w.Payload, nil)
	if err != nil {
		return nil, ErrKeyMismatch
	}
	defer Zero(raw)
	if len(raw) != KeyLen {
		return nil, fmt.Errorf("%w: unwrapped key size %d", ErrMalformed, len(raw))
	}
	return KeyFromBytes(raw)
}

// Package keyspec: форматы ключевого материала, общие для клиента и сервера.
// Сервер проверяет по ним входящие данные, клиент по ним же их строит.
package keyspec

import (
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
)

const (
	// AlgRSAOAEP2048SHA256: единственный поддерживаемый алгоритм обёртки ключа группы.
	AlgRSAOAEP2048SHA256 = "RSA-OAEP-2048-SHA256"

	// RSABits: размер модуля identity- и эфемерных ключей.
	RSABits = 2048
	// WrappedKeyLen: размер шифртекста RSA-OAEP для RSABits.
	WrappedKeyLen = RSABits / 8

	// NonceLen: nonce AES-GCM (96 бит).
	NonceLen = 12
	// SaltLen: соль хранилища (128 бит).
	SaltLen = 16
)

// ErrInvalidKey: ключ неверной длины или не удалось разобрать его сериализацию.
var ErrInvalidKey = errors.New("invalid key")

// ParsePublicKey разбирает SPKI DER и проверяет, что это RSA-2048.
func ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", ErrInvalidKey)
	}
	if rsaPub.N.BitLen() != RSABits {
		return nil, fmt.Errorf("%w: expected %d-bit modulus, got %d", ErrInvalidKey, RSABits, rsaPub.N.BitLen())
	}
	return rsaPub, nil
}

package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"uunn/internal/keyspec"
)

// RSABits: размер модуля identity- и эфемерных ключей.
const RSABits = keyspec.RSABits

// Identity: асимметричная пара ключей пользователя.
// Private никогда не сериализуется в удалённое хранилище.
type Identity struct {
	UserID    string
	Public    *rsa.PublicKey
	Private   *rsa.PrivateKey
	CreatedAt time.Time
}

// GenerateKeyPair создаёт новую пару RSA-2048.
func GenerateKeyPair() (*rsa.PrivateKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, RSABits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}
	return priv, nil
}

// GenerateIdentity создаёт identity для пользователя userID.
func GenerateIdentity(userID string) (*Identity, error) {
	priv, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return &Identity{
		UserID:    userID,
		Public:    &priv.PublicKey,
		Private:   priv,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewIdentity собирает identity из уже существующего приватного ключа.
func NewIdentity(userID string, priv *rsa.PrivateKey, createdAt time.Time) *Identity {
	return &Identity{UserID: userID, Public: &priv.PublicKey, Private: priv, CreatedAt: createdAt}
}

// Fingerprint отпечаток публичного ключа identity.
func (id *Identity) Fingerprint() string {
	fp, err := Fingerprint(id.Public)
	if err != nil {
		return ""
	}
	return fp
}

// Wipe обнуляет приватную часть identity.
func (id *Identity) Wipe() {
	if id == nil {
		return
	}
	WipePrivateKey(id.Private)
}

// MarshalPublicKey сериализует публичный ключ в SPKI DER.
func MarshalPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	if pub == nil {
		return nil, ErrInvalidKey
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return der, nil
}

// ParsePublicKey разбирает SPKI DER и проверяет, что это RSA-2048.
func ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	return keyspec.ParsePublicKey(der)
}

// MarshalPrivateKey сериализует приватный ключ в PKCS#8 DER.
// Результат: чувствительные данные, после использования обнулить через Zero.
func MarshalPrivateKey(priv *rsa.PrivateKey) ([]byte, error) {
	if priv == nil {
		return nil, ErrInvalidKey
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	return der, nil
}

// ParsePrivateKey разбирает PKCS#8 DER.
func ParsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	k, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	priv, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA private key", ErrInvalidKey)
	}
	if priv.N.BitLen() != RSABits {
		return nil, fmt.Errorf("%w: expected %d-bit modulus", ErrInvalidKey, RSABits)
	}
	return priv, nil
}

// EncodeFragment кодирует эфемерный приватный ключ приглашения
// для передачи вне запросов к серверу (фрагмент URL).
func EncodeFragment(priv *rsa.PrivateKey) (string, error) {
	der, err := MarshalPrivateKey(priv)
	if err != nil {
		return "", err
	}
	defer Zero(der)
	return base64.RawURLEncoding.EncodeToString(der), nil
}

// DecodeFragment: обратная операция к EncodeFragment. Битый фрагмент
// считается ошибкой расшифровки.
func DecodeFragment(fragment string) (*rsa.PrivateKey, error) {
	der, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(fragment))
	if err != nil {
		return nil, fmt.Errorf("%w: fragment encoding", ErrMalformed)
	}
	defer Zero(der)
	priv, err := ParsePrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: fragment key", ErrMalformed)
	}
	return priv, nil
}

// Fingerprint возвращает SHA-256 от SPKI публичного ключа в виде
// групп по 4 hex-символа. Безопасно показывать пользователю.
func Fingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := MarshalPublicKey(pub)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(der)
	h := hex.EncodeToString(sum[:])
	parts := make([]string, 0, len(h)/4)
	for i := 0; i < len(h); i += 4 {
		parts = append(parts, h[i:i+4])
	}
	return strings.Join(parts, " "), nil
}

// WipePrivateKey обнуляет секретные компоненты ключа.
func WipePrivateKey(priv *rsa.PrivateKey) {
	if priv == nil {
		return
	}
	wipeInt(priv.D)
	for _, p := range priv.Primes {
		wipeInt(p)
	}
	wipeInt(priv.Precomputed.Dp)
	wipeInt(priv.Precomputed.Dq)
	wipeInt(priv.Precomputed.Qinv)
}

func wipeInt(n *big.Int) {
	if n == nil {
		return
	}
	words := n.Bits()
	for i := range words {
		words[i] = 0
	}
	n.SetInt64(0)
}

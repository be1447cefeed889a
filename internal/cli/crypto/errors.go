package crypto

import (
	"errors"

	"uunn/internal/keyspec"
)

var (
	// ErrAuthentication: несовпадение тега AES-GCM или повреждённый шифртекст.
	ErrAuthentication = errors.New("authentication failed")

	// ErrDecryption: общий предок ошибок разворачивания ключа.
	ErrDecryption = errors.New("decryption failed")

	// ErrKeyMismatch: ключ был обёрнут для другой пары ключей.
	ErrKeyMismatch = &decryptError{reason: "key mismatch"}

	// ErrMalformed: обёртка не того алгоритма или неверного размера.
	ErrMalformed = &decryptError{reason: "malformed wrapped key"}

	// ErrRecovery: не удалось открыть хранилище (неверный пароль или повреждённые данные).
	ErrRecovery = errors.New("vault recovery failed")

	// ErrWeakPassword: пароль слишком слабый для защиты хранилища.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrInvalidKey: ключ неверной длины или не удалось разобрать его сериализацию.
	ErrInvalidKey = keyspec.ErrInvalidKey
)

// decryptError различает причину отказа локально, но для errors.Is
// всегда совпадает с ErrDecryption.
type decryptError struct {
	reason string
}

func (e *decryptError) Error() string { return "decryption failed: " + e.reason }

func (e *decryptError) Is(target error) bool { return target == ErrDecryption }

// errOpaque: то, что видит пользователь или удалённая сторона.
var errOpaque = errors.New("unable to decrypt: wrong key or corrupted data")

// Opaque схлопывает все криптографические отказы в одну ошибку,
// чтобы по выводу нельзя было отличить неверный ключ от повреждения.
// Некриптографические ошибки возвращаются как есть.
func Opaque(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDecryption) || errors.Is(err, ErrAuthentication) || errors.Is(err, ErrRecovery) {
		return errOpaque
	}
	return err
}

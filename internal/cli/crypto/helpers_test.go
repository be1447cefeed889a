package crypto

import (
	"crypto/rsa"
	"sync"
	"testing"

	"uunn/internal/keyspec"
)

var (
	keysOnce sync.Once
	keys     []*rsa.PrivateKey
	keysErr  error
)

// testKey возвращает одну из заранее сгенерированных пар RSA-2048,
// генерация дорогая, поэтому переиспользуем ключи между тестами.
func testKey(t *testing.T, i int) *rsa.PrivateKey {
	t.Helper()
	keysOnce.Do(func() {
		for n := 0; n < 3; n++ {
			k, err := GenerateKeyPair()
			if err != nil {
				keysErr = err
				return
			}
			keys = append(keys, k)
		}
	})
	if keysErr != nil {
		t.Fatalf("generate test keys: %v", keysErr)
	}
	return keys[i]
}

// fastKDF: облегчённые параметры argon2id для тестов.
func fastKDF() KDFParams {
	return KDFParams{Algorithm: KDFArgon2id, Time: 1, Memory: keyspec.MinArgon2Memory, Threads: 1}
}

package keyspec

import "fmt"

// KDF: функция выведения ключа из пароля.
type KDF string

const (
	KDFArgon2id     KDF = "argon2id"
	KDFPBKDF2SHA256 KDF = "pbkdf2-sha256"
)

// Границы параметров KDF. Верхние не дают хранилищу с подменёнными
// параметрами заставить клиента выделить терабайты памяти или считать часами.
const (
	MinPBKDF2Iterations = 100000
	MaxPBKDF2Iterations = 10000000

	MinArgon2Memory  = 8 * 1024 // KiB
	MaxArgon2Memory  = 1024 * 1024
	MaxArgon2Time    = 10
	MaxArgon2Threads = 16
)

// KDFParams параметры KDF. Для PBKDF2 Time: число итераций.
type KDFParams struct {
	Algorithm KDF    `json:"kdf"`
	Time      uint32 `json:"time"`
	Memory    uint32 `json:"memory,omitempty"`
	Threads   uint8  `json:"threads,omitempty"`
}

// Validate отклоняет параметры вне допустимого диапазона.
func (p KDFParams) Validate() error {
	switch p.Algorithm {
	case KDFArgon2id:
		if p.Time < 1 || p.Memory < MinArgon2Memory || p.Threads < 1 {
			return fmt.Errorf("argon2id parameters too weak: t=%d m=%d p=%d", p.Time, p.Memory, p.Threads)
		}
		if p.Time > MaxArgon2Time || p.Memory > MaxArgon2Memory || p.Threads > MaxArgon2Threads {
			return fmt.Errorf("argon2id parameters out of range: t=%d m=%d p=%d", p.Time, p.Memory, p.Threads)
		}
	case KDFPBKDF2SHA256:
		if p.Time < MinPBKDF2Iterations || p.Time > MaxPBKDF2Iterations {
			return fmt.Errorf("pbkdf2 iterations %d outside [%d, %d]", p.Time, MinPBKDF2Iterations, MaxPBKDF2Iterations)
		}
	default:
		return fmt.Errorf("unknown kdf %q", p.Algorithm)
	}
	return nil
}

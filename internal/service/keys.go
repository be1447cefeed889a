package service

import (
	"uunn/internal/keyspec"
)

// WrappedKey: обёрнутый ключ группы в том виде, в каком его присылает клиент.
type WrappedKey struct {
	Alg     string
	Payload []byte
}

func validateWrapped(w WrappedKey) error {
	if w.Alg != keyspec.AlgRSAOAEP2048SHA256 || len(w.Payload) != keyspec.WrappedKeyLen {
		return ErrInvalidKey
	}
	return nil
}

func validatePublicKey(der []byte) error {
	if _, err := keyspec.ParsePublicKey(der); err != nil {
		return ErrInvalidKey
	}
	return nil
}

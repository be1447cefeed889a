package crypto

import (
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"uunn/internal/keyspec"
)

// SignRedeemProof подписывает погашение приглашения эфемерным ключом из
// фрагмента. Сервер проверяет подпись сохранённым эфемерным публичным ключом,
// так что погасить приглашение может только тот, у кого есть ссылка целиком.
func SignRedeemProof(eph *rsa.PrivateKey, inviteID string, userID int64, wk WrappedKey) ([]byte, error) {
	if eph == nil {
		return nil, ErrInvalidKey
	}
	digest := keyspec.RedeemDigest(inviteID, userID, wk.Payload)
	sig, err := rsa.SignPSS(rand.Reader, eph, stdcrypto.SHA256, digest, keyspec.PSSOptions)
	if err != nil {
		return nil, fmt.Errorf("sign redeem proof: %w", err)
	}
	return sig, nil
}

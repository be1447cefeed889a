package keyspec

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"
)

// ErrInvalidProof: подпись погашения не проверяется эфемерным ключом приглашения.
var ErrInvalidProof = errors.New("invalid invite proof")

const redeemDomain = "uunn/invite-redeem/v1"

// RedeemDigest: то, что подписывает погашающий эфемерным ключом.
// Подпись привязана к приглашению, к пользователю и к его обёртке ключа,
// поэтому её нельзя переиспользовать для другого аккаунта или другой обёртки.
func RedeemDigest(inviteID string, userID int64, wrapped []byte) []byte {
	h := sha256.New()
	h.Write([]byte(redeemDomain))
	writeField(h, []byte(inviteID))
	var uid [8]byte
	binary.BigEndian.PutUint64(uid[:], uint64(userID))
	h.Write(uid[:])
	writeField(h, wrapped)
	return h.Sum(nil)
}

func writeField(w io.Writer, b []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(b)))
	_, _ = w.Write(n[:])
	_, _ = w.Write(b)
}

// PSSOptions параметры RSA-PSS для подписи погашения.
var PSSOptions = &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: crypto.SHA256}

// VerifyRedeemProof проверяет, что погашающий владеет эфемерным приватным ключом.
func VerifyRedeemProof(ephemeralSPKI []byte, inviteID string, userID int64, wrapped, sig []byte) error {
	pub, err := ParsePublicKey(ephemeralSPKI)
	if err != nil {
		return ErrInvalidProof
	}
	if len(sig) != pub.Size() {
		return ErrInvalidProof
	}
	if err := rsa.VerifyPSS(pub, crypto.SHA256, RedeemDigest(inviteID, userID, wrapped), sig, PSSOptions); err != nil {
		return ErrInvalidProof
	}
	return nil
}

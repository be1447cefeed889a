package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"uunn/internal/cli/crypto"
	"uunn/internal/cli/model"
)

// InviteOptions лимиты конкретного приглашения. Нули: политика сервера.
type InviteOptions struct {
	MaxRedemptions *int
	TTL            time.Duration
}

// InviteLink ссылка-приглашение. Fragment: эфемерный приватный ключ,
// он передаётся только вне запросов к серверу.
type InviteLink struct {
	ServerURL string
	ID        string
	Fragment  string
}

// URL формирует ссылку вида <server>/invite/<id>#<fragment>.
func (l InviteLink) URL() string {
	return strings.TrimRight(l.ServerURL, "/") + "/invite/" + l.ID + "#" + l.Fragment
}

// ParseInviteLink разбирает ссылку. Допускается и короткая форма <id>#<fragment>.
func ParseInviteLink(link string) (InviteLink, error) {
	link = strings.TrimSpace(link)
	before, fragment, ok := strings.Cut(link, "#")
	if !ok || fragment == "" {
		return InviteLink{}, fmt.Errorf("%w: missing key fragment", ErrInvalidLink)
	}
	if !strings.Contains(before, "/") {
		if before == "" {
			return InviteLink{}, fmt.Errorf("%w: missing invite id", ErrInvalidLink)
		}
		return InviteLink{ID: before, Fragment: fragment}, nil
	}
	u, err := url.Parse(before)
	if err != nil {
		return InviteLink{}, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	path := strings.TrimRight(u.Path, "/")
	i := strings.LastIndex(path, "/invite/")
	if i < 0 || path[i+len("/invite/"):] == "" || strings.Contains(path[i+len("/invite/"):], "/") {
		return InviteLink{}, fmt.Errorf("%w: expected /invite/<id>", ErrInvalidLink)
	}
	server := ""
	if u.Scheme != "" {
		server = u.Scheme + "://" + u.Host + path[:i]
	}
	return InviteLink{ServerURL: server, ID: path[i+len("/invite/"):], Fragment: fragment}, nil
}

// InviteService протокол приглашений: сервер хранит ключ группы только
// обёрнутым под эфемерный публичный ключ, приватная половина уходит в ссылку.
type InviteService struct {
	store     InviteStore
	serverURL string
}

func NewInviteService(store InviteStore, serverURL string) *InviteService {
	return &InviteService{store: store, serverURL: serverURL}
}

// CreateInvite создаёт приглашение в группу. Требует доступа к контенту у создателя.
func (s *InviteService) CreateInvite(ctx context.Context, groupID string, granter *crypto.Identity, opts InviteOptions) (InviteLink, error) {
	if granter == nil || granter.Private == nil {
		return InviteLink{}, crypto.ErrInvalidKey
	}
	m, err := s.store.Membership(ctx, groupID)
	if err != nil {
		return InviteLink{}, err
	}
	if !HasContentAccess(m) {
		return InviteLink{}, ErrNoContentAccess
	}
	k, err := crypto.Unwrap(*m.WrappedKey, granter.Private)
	if err != nil {
		return InviteLink{}, err
	}
	defer k.Wipe()

	eph, err := crypto.GenerateKeyPair()
	if err != nil {
		return InviteLink{}, err
	}
	defer crypto.WipePrivateKey(eph)

	wk, err := crypto.Wrap(k, &eph.PublicKey)
	if err != nil {
		return InviteLink{}, err
	}
	spki, err := crypto.MarshalPublicKey(&eph.PublicKey)
	if err != nil {
		return InviteLink{}, err
	}
	req := model.NewInvite{
		GroupID:            groupID,
		EphemeralPublicKey: spki,
		WrappedKey:         wk,
		MaxRedemptions:     opts.MaxRedemptions,
	}
	if opts.TTL > 0 {
		// сервер принимает целые секунды; округляем вверх, чтобы 300ms не стало 0
		secs := int64((opts.TTL + time.Second - 1) / time.Second)
		req.TTLSeconds = &secs
	}
	inv, err := s.store.CreateInvite(ctx, req)
	if err != nil {
		return InviteLink{}, err
	}

	fragment, err := crypto.EncodeFragment(eph)
	if err != nil {
		return InviteLink{}, err
	}
	return InviteLink{ServerURL: s.serverURL, ID: inv.ID, Fragment: fragment}, nil
}

// RedeemInvite разворачивает ключ группы ключом из фрагмента, переоборачивает
// под собственный публичный ключ и подписывает погашение эфемерным ключом. Уже имеющий ключ участник получает своё
// членство и ошибку хранилища о повторном вступлении.
func (s *InviteService) RedeemInvite(ctx context.Context, link InviteLink, redeemer *crypto.Identity) (model.Membership, error) {
	if redeemer == nil || redeemer.Public == nil {
		return model.Membership{}, crypto.ErrInvalidKey
	}
	eph, err := crypto.DecodeFragment(link.Fragment)
	if err != nil {
		return model.Membership{}, err
	}
	defer crypto.WipePrivateKey(eph)

	inv, err := s.store.GetInvite(ctx, link.ID)
	if err != nil {
		return model.Membership{}, err
	}
	if inv.WrappedKey == nil {
		return model.Membership{}, fmt.Errorf("%w: invite carries no wrapped key", crypto.ErrMalformed)
	}
	spki, err := crypto.MarshalPublicKey(&eph.PublicKey)
	if err != nil {
		return model.Membership{}, err
	}
	if !bytes.Equal(spki, inv.EphemeralPublicKey) {
		return model.Membership{}, crypto.ErrKeyMismatch
	}

	k, err := crypto.Unwrap(*inv.WrappedKey, eph)
	if err != nil {
		return model.Membership{}, err
	}
	var wk crypto.WrappedKey
	err = crypto.WithKey(k, func(k *crypto.SymmetricKey) error {
		var err error
		wk, err = crypto.Wrap(k, redeemer.Public)
		return err
	})
	if err != nil {
		return model.Membership{}, err
	}
	me, err := s.store.Me(ctx)
	if err != nil {
		return model.Membership{}, err
	}
	proof, err := crypto.SignRedeemProof(eph, inv.ID, me.ID, wk)
	if err != nil {
		return model.Membership{}, err
	}
	return s.store.RedeemInvite(ctx, link.ID, wk, proof)
}

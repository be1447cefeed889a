package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"uunn/internal/cli/crypto"
	"uunn/internal/cli/model"
	"uunn/internal/cli/repo"
)

const cookieName = "auth_token"

// Client HTTP-клиент API сервера. В запросы попадают только публичные ключи,
// обёрнутые ключи и шифртексты.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  repo.TokenStore
}

// New создаёт клиент для сервера baseURL (например, http://localhost:8081).
func New(baseURL string, tokens repo.TokenStore) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Tokens:  tokens,
	}
}

// do отправляет JSON-запрос и декодирует ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, method, path string, payload, out any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Tokens != nil {
		if token, err := c.Tokens.Load(); err == nil && token != "" {
			req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		// 409 при погашении несёт тело существующего членства
		if resp.StatusCode == http.StatusConflict && out != nil && json.Valid(data) {
			_ = json.Unmarshal(data, out)
		}
		return resp, statusErr(resp.StatusCode, data)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp, nil
}

// persistAuth извлекает auth cookie из ответа и сохраняет его.
func (c *Client) persistAuth(resp *http.Response) error {
	for _, ck := range resp.Cookies() {
		if ck.Name == cookieName && ck.Value != "" {
			if c.Tokens == nil {
				return nil
			}
			return c.Tokens.Save(ck.Value)
		}
	}
	return fmt.Errorf("no auth cookie in response")
}

// Register регистрирует пользователя с публичным ключом (SPKI DER) и сохраняет сессию.
func (c *Client) Register(ctx context.Context, login, password string, publicKey []byte) (model.User, error) {
	var u model.User
	resp, err := c.do(ctx, http.MethodPost, "/api/user/register", map[string]any{
		"login": login, "password": password, "public_key": publicKey,
	}, &u)
	if err != nil {
		return u, err
	}
	return u, c.persistAuth(resp)
}

// Login входит и сохраняет сессию.
func (c *Client) Login(ctx context.Context, login, password string) (model.User, error) {
	var u model.User
	resp, err := c.do(ctx, http.MethodPost, "/api/user/login", map[string]string{
		"login": login, "password": password,
	}, &u)
	if errors.Is(err, ErrUnauthorized) {
		return u, ErrInvalidCredentials
	}
	if err != nil {
		return u, err
	}
	return u, c.persistAuth(resp)
}

func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	_, err := c.do(ctx, http.MethodGet, "/api/user/me", nil, &u)
	return u, err
}

// PublicKey зарегистрированный на сервере публичный ключ текущего пользователя.
func (c *Client) PublicKey(ctx context.Context) ([]byte, error) {
	var out struct {
		PublicKey []byte `json:"public_key"`
	}
	_, err := c.do(ctx, http.MethodGet, "/api/user/key", nil, &out)
	return out.PublicKey, err
}

func (c *Client) CreateGroup(ctx context.Context, name string, wk crypto.WrappedKey) (model.Membership, error) {
	var m model.Membership
	_, err := c.do(ctx, http.MethodPost, "/api/groups", map[string]any{"name": name, "wrapped_key": wk}, &m)
	return m, err
}

func (c *Client) JoinGroup(ctx context.Context, code string) (model.Membership, error) {
	var m model.Membership
	_, err := c.do(ctx, http.MethodPost, "/api/groups/join", map[string]string{"code": code}, &m)
	return m, err
}

func (c *Client) Groups(ctx context.Context) ([]model.Membership, error) {
	var list []model.Membership
	_, err := c.do(ctx, http.MethodGet, "/api/groups", nil, &list)
	return list, err
}

func (c *Client) Membership(ctx context.Context, groupID string) (model.Membership, error) {
	var m model.Membership
	_, err := c.do(ctx, http.MethodGet, "/api/groups/"+groupID+"/membership", nil, &m)
	return m, err
}

func (c *Client) Members(ctx context.Context, groupID string) ([]model.Member, error) {
	var list []model.Member
	_, err := c.do(ctx, http.MethodGet, "/api/groups/"+groupID+"/members", nil, &list)
	return list, err
}

// CreateInvite сохраняет приглашение. В запросе только эфемерный публичный ключ.
func (c *Client) CreateInvite(ctx context.Context, inv model.NewInvite) (model.Invite, error) {
	var out model.Invite
	_, err := c.do(ctx, http.MethodPost, "/api/invites", inv, &out)
	return out, err
}

func (c *Client) GetInvite(ctx context.Context, id string) (model.Invite, error) {
	var out model.Invite
	_, err := c.do(ctx, http.MethodGet, "/api/invites/"+id, nil, &out)
	return out, err
}

// RedeemInvite отправляет ключ, обёрнутый под собственный публичный ключ,
// и подпись погашения эфемерным ключом. Сам эфемерный ключ не отправляется.
// При ErrAlreadyMember возвращается существующее членство.
func (c *Client) RedeemInvite(ctx context.Context, id string, wk crypto.WrappedKey, proof []byte) (model.Membership, error) {
	var m model.Membership
	body := map[string]any{"wrapped_key": wk, "proof": proof}
	_, err := c.do(ctx, http.MethodPost, "/api/invites/"+id+"/redeem", body, &m)
	return m, err
}

func (c *Client) PutVault(ctx context.Context, blob crypto.VaultBlob) error {
	_, err := c.do(ctx, http.MethodPut, "/api/vault", blob, nil)
	return err
}

func (c *Client) GetVault(ctx context.Context) (crypto.VaultBlob, error) {
	var blob crypto.VaultBlob
	_, err := c.do(ctx, http.MethodGet, "/api/vault", nil, &blob)
	return blob, err
}

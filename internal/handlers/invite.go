package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"uunn/internal/service"
)

// InviteHandler приглашения. Сервер видит только эфемерный публичный ключ
// и обёртку под него; приватная часть у сервера не бывает.
type InviteHandler struct {
	InviteService *service.InviteService
	Logger        *zap.SugaredLogger
}

func NewInviteHandler(inviteService *service.InviteService, logger *zap.SugaredLogger) *InviteHandler {
	return &InviteHandler{InviteService: inviteService, Logger: logger}
}

type createInviteRequest struct {
	GroupID            string         `json:"group_id"`
	EphemeralPublicKey []byte         `json:"ephemeral_public_key"`
	WrappedKey         *WrappedKeyDTO `json:"wrapped_key"`
	MaxRedemptions     *int           `json:"max_redemptions,omitempty"`
	TTLSeconds         *int64         `json:"ttl_seconds,omitempty"`
}

type redeemRequest struct {
	WrappedKey *WrappedKeyDTO `json:"wrapped_key"`
	// Proof: подпись погашения эфемерным ключом из ссылки.
	Proof []byte `json:"proof"`
}

// Create сохраняет приглашение
func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("CreateInvite: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	svcReq := service.CreateInviteRequest{
		GroupID:            req.GroupID,
		EphemeralPublicKey: req.EphemeralPublicKey,
		WrappedKey:         req.WrappedKey.toService(),
		MaxRedemptions:     req.MaxRedemptions,
	}
	if req.TTLSeconds != nil {
		ttl := time.Duration(*req.TTLSeconds) * time.Second
		svcReq.TTL = &ttl
	}

	uid := userID(r)
	inv, err := h.InviteService.Create(r.Context(), uid, svcReq)
	if err != nil {
		writeError(w, h.Logger, "CreateInvite", err, "user_id", uid, "group_id", req.GroupID)
		return
	}
	h.Logger.Infow("invite created", "invite_id", inv.ID, "group_id", inv.GroupID, "user_id", uid,
		"max_redemptions", inv.MaxRedemptions)
	writeJSON(w, http.StatusCreated, inviteDTO(inv, false))
}

// Get запись приглашения для погашающего
func (h *InviteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	inv, err := h.InviteService.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, "GetInvite", err, "invite_id", id)
		return
	}
	writeJSON(w, http.StatusOK, inviteDTO(inv, true))
}

// Redeem принимает ключ группы, переобёрнутый под публичный ключ погашающего.
// 409 с телом членства, если ключ у пользователя уже был.
func (h *InviteHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	uid := userID(r)
	m, err := h.InviteService.Redeem(r.Context(), uid, id, req.WrappedKey.toService(), req.Proof)
	if errors.Is(err, service.ErrAlreadyMember) && m != nil {
		h.Logger.Infow("invite redeem: already keyed", "invite_id", id, "user_id", uid)
		writeJSON(w, http.StatusConflict, membershipDTO(m))
		return
	}
	if err != nil {
		writeError(w, h.Logger, "RedeemInvite", err, "invite_id", id, "user_id", uid)
		return
	}
	h.Logger.Infow("invite redeemed", "invite_id", id, "group_id", m.GroupID, "user_id", uid)
	writeJSON(w, http.StatusOK, membershipDTO(m))
}

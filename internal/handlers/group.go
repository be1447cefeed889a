package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"uunn/internal/service"
)

// GroupHandler группы и членство.
type GroupHandler struct {
	GroupService *service.GroupService
	Logger       *zap.SugaredLogger
}

func NewGroupHandler(groupService *service.GroupService, logger *zap.SugaredLogger) *GroupHandler {
	return &GroupHandler{GroupService: groupService, Logger: logger}
}

type createGroupRequest struct {
	Name       string         `json:"name"`
	WrappedKey *WrappedKeyDTO `json:"wrapped_key"`
}

type joinRequest struct {
	Code string `json:"code"`
}

// Create создаёт группу; клиент присылает ключ группы, обёрнутый под свой публичный ключ
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("CreateGroup: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	uid := userID(r)
	g, m, err := h.GroupService.Create(r.Context(), uid, req.Name, req.WrappedKey.toService())
	if err != nil {
		writeError(w, h.Logger, "CreateGroup", err, "user_id", uid)
		return
	}
	m.Group = g
	h.Logger.Infow("group created", "group_id", g.ID, "user_id", uid)
	writeJSON(w, http.StatusCreated, membershipDTO(m))
}

// List членства текущего пользователя
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.GroupService.Memberships(r.Context(), userID(r))
	if err != nil {
		writeError(w, h.Logger, "ListGroups", err)
		return
	}
	out := make([]MembershipDTO, 0, len(list))
	for i := range list {
		out = append(out, membershipDTO(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Join вступление по старому коду: членство без доступа к контенту
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	uid := userID(r)
	m, err := h.GroupService.JoinByCode(r.Context(), uid, req.Code)
	if err != nil {
		writeError(w, h.Logger, "JoinGroup", err, "user_id", uid)
		return
	}
	h.Logger.Infow("group joined by code", "group_id", m.GroupID, "user_id", uid, "has_key", m.HasKey())
	writeJSON(w, http.StatusOK, membershipDTO(m))
}

// Membership членство текущего пользователя в группе
func (h *GroupHandler) Membership(w http.ResponseWriter, r *http.Request) {
	gid := chi.URLParam(r, "id")
	m, err := h.GroupService.Membership(r.Context(), gid, userID(r))
	if err != nil {
		writeError(w, h.Logger, "Membership", err, "group_id", gid)
		return
	}
	writeJSON(w, http.StatusOK, membershipDTO(m))
}

// Members участники группы
func (h *GroupHandler) Members(w http.ResponseWriter, r *http.Request) {
	gid := chi.URLParam(r, "id")
	list, err := h.GroupService.Members(r.Context(), gid, userID(r))
	if err != nil {
		writeError(w, h.Logger, "Members", err, "group_id", gid)
		return
	}
	out := make([]MemberDTO, 0, len(list))
	for _, m := range list {
		d := MemberDTO{UserID: m.UserID, Role: m.Role, HasKey: m.HasKey()}
		if m.User != nil {
			d.Login = m.User.Login
		}
		out = append(out, d)
	}
	writeJSON(w, http.StatusOK, out)
}

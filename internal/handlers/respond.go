package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"uunn/internal/middleware"
	"uunn/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor маппинг ошибок сервиса в HTTP-коды.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotAMember), errors.Is(err, service.ErrNoContentAccess),
		errors.Is(err, service.ErrInvalidProof):
		return http.StatusForbidden
	case errors.Is(err, service.ErrGroupNotFound), errors.Is(err, service.ErrInviteNotFound), errors.Is(err, service.ErrVaultNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyMember), errors.Is(err, service.ErrLoginTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrInviteExhausted), errors.Is(err, service.ErrInviteExpired):
		return http.StatusGone
	case errors.Is(err, service.ErrInvalidKey), errors.Is(err, service.ErrInvalidVault),
		errors.Is(err, service.ErrInvitePolicy), errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidGroupName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError отвечает текстом ошибки; внутренние ошибки логируются и скрываются.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error, kv ...any) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Errorw(op+": service error", append(kv, "error", err)...)
		http.Error(w, "internal error", status)
		return
	}
	logger.Warnw(op+": rejected", append(kv, "status", status, "error", err)...)
	http.Error(w, err.Error(), status)
}

// userID пользователь из контекста; маршруты под RequireAuth гарантируют его наличие.
func userID(r *http.Request) int64 {
	uid, _ := middleware.GetUserIDFromContext(r.Context())
	return uid
}

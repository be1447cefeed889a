package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"uunn/internal/model"
	"uunn/internal/service"
)

type VaultHandler struct {
	VaultService *service.VaultService
	Logger       *zap.SugaredLogger
}

func NewVaultHandler(vaultService *service.VaultService, logger *zap.SugaredLogger) *VaultHandler {
	return &VaultHandler{VaultService: vaultService, Logger: logger}
}

// Put заменяет резервную копию текущего пользователя
func (h *VaultHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req VaultDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("PutVault: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	uid := userID(r)
	v := &model.Vault{
		Ciphertext: req.Ciphertext,
		Nonce:      req.Nonce,
		Salt:       req.Salt,
		KDF:        req.KDF.Algorithm,
		KDFTime:    req.KDF.Time,
		KDFMemory:  req.KDF.Memory,
		KDFThreads: req.KDF.Threads,
	}
	if err := h.VaultService.Put(r.Context(), uid, v); err != nil {
		writeError(w, h.Logger, "PutVault", err, "user_id", uid)
		return
	}
	h.Logger.Infow("vault stored", "user_id", uid, "kdf", v.KDF, "size", len(v.Ciphertext))
	w.WriteHeader(http.StatusNoContent)
}

// Get резервная копия текущего пользователя
func (h *VaultHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	v, err := h.VaultService.Get(r.Context(), uid)
	if err != nil {
		writeError(w, h.Logger, "GetVault", err, "user_id", uid)
		return
	}
	writeJSON(w, http.StatusOK, VaultDTO{
		Ciphertext: v.Ciphertext,
		Nonce:      v.Nonce,
		Salt:       v.Salt,
		KDF: KDFDTO{
			Algorithm: v.KDF,
			Time:      v.KDFTime,
			Memory:    v.KDFMemory,
			Threads:   v.KDFThreads,
		},
		UpdatedAt: v.UpdatedAt,
	})
}

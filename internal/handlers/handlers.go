package handlers

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"uunn/internal/config"
	"uunn/internal/middleware"
	"uunn/internal/service"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	groupService *service.GroupService,
	inviteService *service.InviteService,
	vaultService *service.VaultService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	groupHandler := NewGroupHandler(groupService, logger)
	inviteHandler := NewInviteHandler(inviteService, logger)
	vaultHandler := NewVaultHandler(vaultService, logger)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/api/user/me", userHandler.Me)
		r.Get("/api/user/key", userHandler.PublicKey)

		// Groups
		r.Post("/api/groups", groupHandler.Create)
		r.Get("/api/groups", groupHandler.List)
		r.Post("/api/groups/join", groupHandler.Join)
		r.Get("/api/groups/{id}/membership", groupHandler.Membership)
		r.Get("/api/groups/{id}/members", groupHandler.Members)

		// Invites
		r.Post("/api/invites", inviteHandler.Create)
		r.Get("/api/invites/{id}", inviteHandler.Get)
		r.Post("/api/invites/{id}/redeem", inviteHandler.Redeem)

		// Vault
		r.Put("/api/vault", vaultHandler.Put)
		r.Get("/api/vault", vaultHandler.Get)
	})

	return &Handler{Router: r}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"uunn/internal/config"
	"uunn/internal/handlers"
	"uunn/internal/middleware"
	"uunn/internal/repo"
	"uunn/internal/service"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	groupRepo := repo.NewGroupRepository(gormDB)
	userService := service.NewUserService(repo.NewUserRepository(gormDB),
		service.WithMinPasswordEntropy(cfg.PasswordMinEntropy))
	groupService := service.NewGroupService(groupRepo)
	inviteService := service.NewInviteService(repo.NewInviteRepository(gormDB), groupRepo, service.InvitePolicy{
		MaxRedemptions: cfg.InviteMaxRedemptions,
		TTL:            cfg.InviteTTL,
	})
	vaultService := service.NewVaultService(repo.NewVaultRepository(gormDB))

	h := handlers.NewHandler(userService, groupService, inviteService, vaultService, sugar, cfg)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Starting server",
		"addr", srv.Addr,
		"EnableHTTPS", cfg.EnableHTTPS,
		"InviteMaxRedemptions", cfg.InviteMaxRedemptions,
		"InviteTTL", cfg.InviteTTL,
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Server shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}

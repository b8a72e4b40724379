package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qc-console/internal/backend"
	"qc-console/internal/config"
	"qc-console/internal/form"
	"qc-console/internal/handler"
	"qc-console/internal/middleware"
	"qc-console/internal/router"
	"qc-console/internal/service"
	"qc-console/internal/session"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	tokenFile, err := session.NewFileStore(cfg.TokenFile, cfg.TokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token file: %w", err)
	}

	sessions := session.NewStore(tokenFile)
	sessions.Restore()
	if user := sessions.User(); user != nil {
		slog.Info("session restored", "user", user.Name, "role", user.Role)
	}

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, sessions)

	authService := service.NewAuthService(client)
	rejectionService := service.NewRejectionService(client)
	scrapService := service.NewScrapService(client)
	usersService := service.NewUsersService(client)
	conditionService := service.NewConditionService(client)

	rejectionDrafts := form.NewRegistry[*form.RejectionDraft](cfg.DraftTTL)
	scrapDrafts := form.NewRegistry[*form.ScrapDraft](cfg.DraftTTL)

	sessionMiddleware := middleware.NewSessionMiddleware(sessions)

	appRouter := router.New(cfg, sessionMiddleware, router.Handlers{
		Auth:          handler.NewAuthHandler(authService, sessions),
		Rejection:     handler.NewRejectionHandler(rejectionService),
		RejectionForm: handler.NewRejectionFormHandler(rejectionService, rejectionDrafts, cfg.MaxUploadSize),
		Scrap:         handler.NewScrapHandler(scrapService),
		ScrapForm:     handler.NewScrapFormHandler(scrapService, scrapDrafts),
		Clients:       handler.NewReferenceHandler(service.NewClientsService(client)),
		Defects:       handler.NewReferenceHandler(service.NewDefectsService(client)),
		Lines:         handler.NewReferenceHandler(service.NewLinesService(client)),
		Conditions:    handler.NewConditionHandler(conditionService),
		Users:         handler.NewUsersHandler(usersService),
	})

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	go rejectionDrafts.StartSweeper(sweepCtx, cfg.DraftSweepInterval)
	go scrapDrafts.StartSweeper(sweepCtx, cfg.DraftSweepInterval)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			sweepCancel,
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

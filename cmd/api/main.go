package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creator-platform/internal/audit"
	"creator-platform/internal/auth"
	"creator-platform/internal/billing"
	"creator-platform/internal/callrequest"
	"creator-platform/internal/config"
	"creator-platform/internal/httpapi"
	"creator-platform/internal/notify"
	"creator-platform/internal/reporting"
	"creator-platform/internal/session"
	"creator-platform/internal/wallet"
	"creator-platform/pkg/logger"
	"creator-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	billing.ConfigureStripe(cfg.Stripe.SecretKey)
	tokenRate, err := wallet.NewTokenRate(cfg.Billing.TokenPrice, cfg.Billing.Currency, int32(cfg.Billing.CurrencyMinorScale))
	if err != nil {
		log.Error("token rate init failed", "err", err)
		os.Exit(1)
	}

	// Services
	requestSvc := callrequest.NewService(callrequest.NewPostgresRepo(db))
	sessionSvc := session.NewService(session.NewPostgresRepo(db))
	billingSvc := billing.NewService(billing.NewPostgresStore(db), billing.NewStripeProvider(), tokenRate)
	walletSvc := wallet.NewService(db)
	auditSvc := audit.NewService(audit.NewMemoryRepo())
	reportSvc := reporting.NewService(reporting.NewPostgresRepo(db))

	hub := notify.NewHub(log)
	go hub.Run(rootCtx)

	// Background expiry of overdue pending requests; connected creators are
	// told their ring went unanswered.
	sweeper := callrequest.NewSweeper(requestSvc, cfg.Ring.SweepInterval, log, func(ctx context.Context, expired []callrequest.CallRequest) {
		for i := range expired {
			req := expired[i]
			hub.Notify(ctx, notify.RingEvent{
				TargetCreatorID: req.CreatorID,
				Event:           notify.EventRequestExpired,
				Request:         &req,
				Reason:          req.DecisionReason,
			})
			if err := auditSvc.LogRequestDecision(ctx, audit.EventTypeRequestExpired, req.ID, "", "", req.DecisionReason); err != nil {
				log.Error("audit append failed", "request_id", req.ID, "err", err)
			}
		}
	})
	go sweeper.Run(rootCtx)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	handlers := httpapi.Handlers{
		Auth:       authManager,
		Requests:   requestSvc,
		Sessions:   sessionSvc,
		Billing:    billingSvc,
		Wallet:     walletSvc,
		Reports:    reportSvc,
		Audit:      auditSvc,
		Hub:        hub,
		RingWindow: cfg.Ring.Window,

		Redis:                rdb,
		MaxConcurrentPending: cfg.Ring.MaxConcurrentPending,
	}
	registerRoutes(r, db, handlers, auth.RequireAccessToken(authManager), notify.NewHandler(hub))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

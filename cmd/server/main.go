package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/estately/estately/internal/handler"
	"github.com/estately/estately/internal/infrastructure/logger"
	"github.com/estately/estately/internal/infrastructure/redis"
	"github.com/estately/estately/internal/notification"
	"github.com/estately/estately/internal/observability/metrics"
	"github.com/estately/estately/internal/observability/tracing"
	"github.com/estately/estately/internal/repository"
	"github.com/estately/estately/internal/search"
	"github.com/estately/estately/internal/security"
	"github.com/estately/estately/internal/security/audit"
	"github.com/estately/estately/internal/security/auth"
	"github.com/estately/estately/internal/security/middleware"
	"github.com/estately/estately/internal/security/ratelimit"
	"github.com/estately/estately/internal/service"
	"github.com/estately/estately/internal/upload"
	"github.com/estately/estately/internal/worker"
	"github.com/estately/estately/pkg/cache"
	"github.com/estately/estately/pkg/config"
	"github.com/estately/estately/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting estately server", slog.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log, "estately", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		Database:        cfg.DBName,
		SSLMode:         cfg.DBSSLMode,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	}, log)
	if err != nil {
		log.Error("failed to connect to Postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.InitSchema(ctx); err != nil {
		log.Error("failed to initialize schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	searchClient := search.NewClient(cfg.MeiliHost, cfg.MeiliAPIKey, log)
	if searchClient != nil {
		if err := searchClient.InitIndex(); err != nil {
			log.Warn("failed to initialize search index, continuing without search",
				slog.String("error", err.Error()),
			)
			searchClient = nil
		}
	}

	db := pool.GetDB()
	userRepo := repository.NewPostgresUserRepository(db, log)
	propertyRepo := repository.NewPostgresPropertyRepository(db, log)
	leaseRepo := repository.NewPostgresLeaseRepository(db, log)
	billRepo := repository.NewPostgresBillRepository(db, log)
	favoriteRepo := repository.NewPostgresFavoriteRepository(db, log)
	holdingRepo := repository.NewPostgresHoldingRepository(db, log)
	inquiryRepo := repository.NewPostgresInquiryRepository(db, log)

	authz := security.NewAuthorizationService(log)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "estately", cfg.TokenTTL)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer rateLimiter.Stop()
	auditLogger := audit.NewLogger(log)

	var sender notification.Sender
	if cfg.SMTPHost != "" {
		sender = notification.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, log)
	} else {
		log.Warn("SMTP_HOST not set, emails will be logged instead of sent")
		sender = notification.NewLogSender(log)
	}
	mailer := notification.NewMailer(sender, log)

	uploadStore, err := upload.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL, cfg.MaxUploadMB, log)
	if err != nil {
		log.Error("failed to initialize upload store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	authService := service.NewAuthService(userRepo, tokenManager, redisClient, mailer, cfg.VerifyCodeTTL, cfg.ResetTokenTTL, log)
	propertyService := service.NewPropertyService(propertyRepo, authz, searchClient, log)
	leaseService := service.NewLeaseService(leaseRepo, propertyRepo, userRepo, authz, log)
	billService := service.NewBillService(billRepo, leaseRepo, userRepo, authz, mailer, log)
	favoritesService := service.NewFavoritesService(favoriteRepo, propertyRepo, log)
	portfolioService := service.NewPortfolioService(holdingRepo, propertyRepo, cache.New(), log)
	inquiryService := service.NewInquiryService(inquiryRepo, propertyRepo, userRepo, mailer, log)

	sweepWorker := worker.NewSweepWorker(billService, leaseService, cfg.SweepSpec, log)
	if err := sweepWorker.Start(); err != nil {
		log.Error("failed to start sweep worker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sweepWorker.Stop()

	authHandler := handler.NewAuthHandler(authService, cfg.SessionCookie, cfg.SessionMaxAge, cfg.Environment != "development", log)
	propertyHandler := handler.NewPropertyHandler(propertyService, log)
	leaseHandler := handler.NewLeaseHandler(leaseService, log)
	billHandler := handler.NewBillHandler(billService, uploadStore, auditLogger, log)
	favoritesHandler := handler.NewFavoritesHandler(favoritesService, log)
	portfolioHandler := handler.NewPortfolioHandler(portfolioService, log)
	inquiryHandler := handler.NewInquiryHandler(inquiryService, log)
	adminHandler := handler.NewAdminHandler(sweepWorker, authz, auditLogger, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/auth/signup", authHandler.SignUp)
	mux.HandleFunc("POST /api/auth/signin", authHandler.SignIn)
	mux.HandleFunc("POST /api/auth/signout", authHandler.SignOut)
	mux.HandleFunc("POST /api/auth/verify", authHandler.Verify)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)
	mux.HandleFunc("GET /api/users/me", authHandler.Me)

	mux.HandleFunc("POST /api/properties", propertyHandler.Create)
	mux.HandleFunc("GET /api/properties", propertyHandler.List)
	mux.HandleFunc("GET /api/properties/{id}", propertyHandler.Get)
	mux.HandleFunc("PUT /api/properties/{id}", propertyHandler.Update)
	mux.HandleFunc("DELETE /api/properties/{id}", propertyHandler.Delete)
	mux.HandleFunc("GET /api/search", propertyHandler.Search)

	mux.HandleFunc("POST /api/leases", leaseHandler.Create)
	mux.HandleFunc("GET /api/leases", leaseHandler.List)
	mux.HandleFunc("POST /api/leases/{id}/terminate", leaseHandler.Terminate)
	mux.HandleFunc("GET /api/landlord/tenants", leaseHandler.Tenants)

	mux.HandleFunc("POST /api/bills", billHandler.Create)
	mux.HandleFunc("GET /api/bills", billHandler.List)
	mux.HandleFunc("GET /api/bills/overdue", billHandler.ListOverdue)
	mux.HandleFunc("POST /api/bills/{id}/mark-as-paid", billHandler.MarkPaid)
	mux.HandleFunc("POST /api/bills/{id}/submit-payment", billHandler.SubmitPayment)

	mux.HandleFunc("POST /api/users/favorites/{kind}/{id}", favoritesHandler.Toggle)
	mux.HandleFunc("DELETE /api/users/favorites/{kind}/{id}", favoritesHandler.Remove)
	mux.HandleFunc("GET /api/users/favorites", favoritesHandler.List)

	mux.HandleFunc("POST /api/portfolio/holdings", portfolioHandler.AddHolding)
	mux.HandleFunc("GET /api/portfolio/holdings", portfolioHandler.Holdings)
	mux.HandleFunc("GET /api/portfolio", portfolioHandler.Summary)

	mux.HandleFunc("POST /api/inquiries", inquiryHandler.Create)
	mux.HandleFunc("GET /api/inquiries", inquiryHandler.List)
	mux.HandleFunc("POST /api/inquiries/{id}/respond", inquiryHandler.MarkResponded)

	mux.HandleFunc("POST /api/admin/reindex", propertyHandler.Reindex)
	mux.HandleFunc("POST /api/admin/sweep", adminHandler.Sweep)

	// Proof files are only served directly when stored locally; a CDN base
	// URL means some other origin serves them.
	if strings.HasPrefix(cfg.UploadBaseURL, "/") {
		mux.Handle("GET "+cfg.UploadBaseURL+"/",
			http.StripPrefix(cfg.UploadBaseURL+"/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	// Chain: request ID -> CORS -> metrics -> JWT -> rate limit -> audit
	rootHandler := middleware.RequestIDMiddleware(
		middleware.CORSMiddleware(cfg.CORSAllowedOrigins)(
			metrics.HTTPMetricsMiddleware(
				middleware.JWTMiddleware(tokenManager, cfg.SessionCookie, log)(
					middleware.RateLimitMiddleware(rateLimiter, log)(
						middleware.AuditMiddleware(auditLogger)(mux),
					),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "http.server"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", slog.Int("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow-api/internal/config"
	"github.com/leadflow/leadflow-api/internal/domain/analytics"
	"github.com/leadflow/leadflow-api/internal/domain/campaign"
	"github.com/leadflow/leadflow-api/internal/domain/deposit"
	"github.com/leadflow/leadflow-api/internal/domain/lead"
	"github.com/leadflow/leadflow-api/internal/domain/merchant"
	"github.com/leadflow/leadflow-api/internal/domain/notification"
	"github.com/leadflow/leadflow-api/internal/domain/payment"
	"github.com/leadflow/leadflow-api/internal/middleware"
	"github.com/leadflow/leadflow-api/internal/pkg/database"
	"github.com/leadflow/leadflow-api/internal/pkg/email"
	"github.com/leadflow/leadflow-api/internal/pkg/jwt"
	"github.com/leadflow/leadflow-api/internal/pkg/logger"
	"github.com/leadflow/leadflow-api/internal/pkg/push"
	pkgresponse "github.com/leadflow/leadflow-api/internal/pkg/response"
	"github.com/leadflow/leadflow-api/internal/pkg/sms"
	"github.com/leadflow/leadflow-api/internal/scheduler"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting LeadFlow API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Repositories ----------
	merchantRepo := merchant.NewRepository(db)
	depositRepo := deposit.NewRepository(db)
	campaignRepo := campaign.NewRepository(db)
	leadRepo := lead.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	// ---------- Notification stack ----------
	alertHub := notification.NewHub(redisClient)
	go alertHub.Run()

	emailService := email.NewService(email.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	})
	defer emailService.Close()

	pushClient := push.NewFCMClient(push.FCMConfig{
		ServerKey: cfg.FCMServerKey,
		ProjectID: cfg.FCMProjectID,
	})
	smsClient := sms.NewTwilioClient(sms.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioFromNumber,
	})

	directory := notification.NewSQLDirectory(db)
	notificationService := notification.NewService(notificationRepo, alertHub, emailService, smsClient, pushClient, directory)

	// ---------- Services ----------
	merchantService := merchant.NewService(merchantRepo, jwtService, redisClient)
	campaignService := campaign.NewService(campaignRepo)

	balanceCache := deposit.NewBalanceCache(redisClient)
	onDepleted := func(ctx context.Context, d *deposit.Deposit) {
		paused := false
		if d.CampaignID.Valid {
			if err := campaignService.Pause(ctx, d.CampaignID.UUID, campaign.PausedReasonDepleted); err != nil {
				log.Error().Err(err).
					Str("campaign_id", d.CampaignID.UUID.String()).
					Msg("Failed to pause campaign on depleted deposit")
			} else {
				paused = true
			}
		}
		notificationService.Depleted(ctx, d, paused)
	}
	depositService := deposit.NewService(depositRepo, balanceCache, onDepleted)

	leadService := lead.NewService(leadRepo, depositService, campaignService, notificationService)
	analyticsService := analytics.NewService(db, depositService, depositRepo, leadService)
	paymentService := payment.NewService(paymentRepo, depositService, campaignService, payment.GatewayConfig{
		MerchantLogin: cfg.RoboKassaMerchantLogin,
		Password1:     cfg.RoboKassaPassword1,
		Password2:     cfg.RoboKassaPassword2,
		TestMode:      cfg.RoboKassaTestMode,
		HashAlgo:      cfg.RoboKassaHashAlgo,
	})

	// ---------- Background jobs ----------
	alertJob := deposit.NewAlertJob(depositService, notificationService, campaignService, cfg.AlertCooldown)
	expiryJob := lead.NewExpiryJob(leadRepo, depositService)
	reportJob := analytics.NewReportJob(analyticsService, nil)
	cleanupJob := notification.NewCleanupJob(db, cfg.NotificationKeepDays)

	jobs := scheduler.New()
	jobs.Register("deposit_alert_sweep", cfg.AlertSweepInterval, alertJob.Run)
	jobs.Register("lead_expiry_sweep", cfg.LeadExpiryInterval, expiryJob.Run)
	jobs.Register("daily_report", cfg.DailyReportInterval, reportJob.Run)
	jobs.Register("notification_cleanup", cfg.NotificationCleanup, func(ctx context.Context) error {
		_, err := cleanupJob.RunOnce(ctx)
		return err
	})
	jobs.Start()

	// ---------- Handlers ----------
	merchantHandler := merchant.NewHandler(merchantService)
	depositHandler := deposit.NewHandler(depositService)
	campaignHandler := campaign.NewHandler(campaignService)
	leadHandler := lead.NewHandler(leadService)
	notificationHandler := notification.NewHandler(notificationService, alertHub, cfg.AllowedOrigins)
	analyticsHandler := analytics.NewHandler(analyticsService)
	paymentHandler := payment.NewHandler(paymentService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (before Compress)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(notificationHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", merchantHandler.Routes(authMiddleware))
		r.Mount("/deposits", depositHandler.Routes(authMiddleware))
		r.Mount("/campaigns", campaignHandler.Routes(authMiddleware))
		r.Mount("/leads", leadHandler.Routes(authMiddleware))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))
		r.Mount("/analytics", analyticsHandler.Routes(authMiddleware))
		r.Mount("/payments", paymentHandler.Routes(authMiddleware))
	})

	r.Mount("/api/v1/public/leads", leadHandler.PublicRoutes())
	r.Mount("/webhooks", paymentHandler.WebhookRoutes())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	jobs.Stop()
	alertHub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

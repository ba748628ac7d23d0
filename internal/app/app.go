package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"museumtix/internal/config"
	"museumtix/internal/database"
	"museumtix/internal/middleware"
	"museumtix/internal/modules/admin"
	"museumtix/internal/modules/assistant"
	"museumtix/internal/modules/auth"
	"museumtix/internal/modules/booking"
	"museumtix/internal/modules/catalog"
	"museumtix/internal/modules/promotion"
	"museumtix/internal/pkg/firebaseauth"
	jwtsvc "museumtix/internal/pkg/jwt"
	"museumtix/internal/pkg/llm"
	"museumtix/internal/pkg/mailer"
	"museumtix/internal/pkg/ticket"
	"museumtix/internal/repository"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	redis      *redis.Client
	mongo      *mongo.Client
	httpServer *http.Server
	scheduler  gocron.Scheduler
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.db = db
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			a.close()
			return nil, err
		}
	}

	if cfg.RedisURL != "" {
		if a.redis, err = database.ConnectRedis(ctx, cfg.RedisURL); err != nil {
			a.close()
			return nil, err
		}
	}

	router, err := a.initRouter(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	a.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return a, nil
}

// chatLogStore is written by the assistant and read by admin analytics.
type chatLogStore interface {
	assistant.ChatLog
	admin.ChatLogStats
}

func (a *App) initRouter(ctx context.Context) (*gin.Engine, error) {
	cfg := a.cfg

	userRepo := repository.NewUserRepository(a.db)
	museumRepo := repository.NewMuseumRepository(a.db)
	eventRepo := repository.NewEventRepository(a.db)
	bookingRepo := repository.NewBookingRepository(a.db)
	promoRepo := repository.NewPromotionRepository(a.db)

	var sessionBlobs assistant.BlobStore = repository.NewMemorySessionStore(cfg.SessionTTL)
	if a.redis != nil {
		sessionBlobs = repository.NewRedisSessionStore(a.redis, cfg.SessionTTL)
	}

	var chatLog chatLogStore = repository.NewGormChatLogRepository(a.db)
	if cfg.MongoURI != "" {
		client, mdb, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		a.mongo = client
		chatLog = repository.NewMongoChatLogRepository(mdb)
	}

	var notifier booking.Notifier = mailer.Noop{}
	if cfg.SMTP.Enabled() {
		m, err := mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			return nil, fmt.Errorf("init mailer: %w", err)
		}
		notifier = m
	}

	var model llm.Client = llm.Unavailable{}
	if cfg.LLM.APIKey != "" {
		model = llm.NewGeminiClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
	} else {
		log.Println("LLM_API_KEY is empty: chat assistant will answer with an apology")
	}

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	var external middleware.ExternalVerifier
	if cfg.FirebaseCredentialsFile != "" {
		fb, err := firebaseauth.New(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		external = auth.NewFirebaseVerifier(fb, userRepo)
	}

	authService := auth.NewService(userRepo, tokens)
	catalogService := catalog.NewService(museumRepo, eventRepo)
	promoService := promotion.NewService(promoRepo)
	bookingService := booking.NewService(bookingRepo, museumRepo, eventRepo, promoService, notifier,
		ticket.NewSigner(cfg.TicketSigningSecret))
	adminService := admin.NewService(museumRepo, eventRepo, userRepo, bookingRepo, chatLog, model)
	assistantService := assistant.NewService(
		model,
		catalogService,
		booking.NewTool(bookingService),
		assistant.NewSessionStore(sessionBlobs),
		chatLog,
		assistant.Options{ModelTimeout: cfg.LLM.Timeout},
	)

	sched, err := booking.NewExpiryScheduler(bookingService, cfg.ExpiryInterval, cfg.PendingBookingTTL)
	if err != nil {
		return nil, err
	}
	a.scheduler = sched

	authHandler := auth.NewHandler(authService)
	catalogHandler := catalog.NewHandler(catalogService)
	promoHandler := promotion.NewHandler(promoService)
	bookingHandler := booking.NewHandler(bookingService)
	adminHandler := admin.NewHandler(adminService)
	chatLimiter := middleware.NewRateLimiter(cfg.ChatRatePerMinute)
	assistantHandler := assistant.NewHandler(assistantService, chatLimiter)

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.ErrorLogger(!cfg.IsProd()),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterRoutes(v1)
		promoHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(tokens, external))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)

			chat := protected.Group("")
			chat.Use(chatLimiter.Limit())
			assistantHandler.RegisterRoutes(chat)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			adminHandler.RegisterRoutes(adminGroup)
			promoHandler.RegisterAdminRoutes(adminGroup)
			bookingHandler.RegisterAdminRoutes(adminGroup)
		}
	}

	return r, nil
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.close()

	a.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("http server listening on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Println("server stopped")
	return nil
}

func (a *App) close() {
	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(); err != nil {
			log.Printf("scheduler shutdown: %v", err)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.mongo != nil {
		_ = a.mongo.Disconnect(context.Background())
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/database"
	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/logger"
	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/notify"
	"github.com/iliyamo/venue-booking/internal/queue"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/router"
	"github.com/iliyamo/venue-booking/internal/service"
	"github.com/iliyamo/venue-booking/internal/session"
	"github.com/iliyamo/venue-booking/internal/upload"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	if err := logger.Init(&logger.Config{Level: cfg.LogLevel, ServiceName: "venue-booking", Development: cfg.IsDevelopment()}); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	db, err := database.Open(context.Background(), cfg.DBOptions())
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	sessCfg := config.LoadSessionConfig()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()
	queueCfg := config.LoadQueueConfig()
	uploadCfg := config.LoadUploadConfig()

	// Redis is optional: without it drafts live in process memory and the
	// cache and rate limiter pass requests through.
	var drafts session.DraftStore
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		log.Warn("redis unavailable, using in-memory drafts", zap.Error(err))
		drafts = session.NewMemoryStore(sessCfg.TTL)
	} else {
		defer rdb.Close()
		drafts = session.NewRedisStore(rdb, sessCfg.Prefix, sessCfg.TTL)
	}

	// ---- repositories ----
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	otps := repository.NewOtpRepo(db)
	events := repository.NewEventRepo(db)
	venues := repository.NewVenueRepo(db)
	shifts := repository.NewShiftRepo(db)
	packages := repository.NewPackageRepo(db)
	menus := repository.NewMenuRepo(db)
	bookings := repository.NewBookingRepo(db)

	// ---- notifications and events ----
	dispatcher := notify.NewDispatcher(
		notify.NewEmailSender(config.LoadMailConfig(), log),
		notify.NewSMSSender(config.LoadSMSConfig(), log),
		log,
	)
	var publisher service.EventPublisher = service.NopPublisher{}
	if queueCfg.PublishEnabled {
		publisher = service.NewAMQPPublisher(queueCfg.URL, queueCfg.StatusQueue, log)
	}

	// ---- services ----
	bookingCfg := config.LoadBookingConfig()
	flow := service.NewBookingFlow(service.FlowDeps{
		Drafts:   drafts,
		Events:   events,
		Venues:   venues,
		Shifts:   shifts,
		Packages: packages,
		Menus:    menus,
		Users:    users,
		Bookings: bookings,
		Config:   bookingCfg,
		Log:      log,
	})
	bookingSvc := service.NewBookingService(bookings, dispatcher, publisher, log)

	// ---- handlers ----
	authH := handler.NewAuthHandler(cfg, users, tokens, dispatcher, log)
	otpH := handler.NewOtpHandler(users, otps, dispatcher, bookingCfg.CountryCode, log)
	catalogH := handler.NewCatalogHandler(events, venues, shifts, packages, menus, upload.NewStore(uploadCfg), log)
	bookingH := handler.NewBookingHandler(flow, bookingSvc)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(rlCfg, rdb, log))

	router.RegisterRoutes(e, db, uploadCfg.Dir)
	router.RegisterAuth(e, authH, otpH, cfg.JWTSecret, middleware.NewTokenBucket(rlCfg.ForAuth(), rdb, log))
	router.RegisterPublic(e, catalogH, middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterBooking(e, bookingH, catalogH, cfg.JWTSecret, sessCfg)
	router.RegisterAdmin(e, catalogH, bookingH, authH, cfg.JWTSecret, middleware.InvalidateCache(cacheCfg, rdb, log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if queueCfg.ConsumerEnabled {
		consumer := &queue.AuditConsumer{URL: queueCfg.URL, Queue: queueCfg.StatusQueue, LogPath: queueCfg.AuditLogPath, Log: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit consumer stopped", zap.Error(err))
			}
		}()
	}

	go purgeTokens(ctx, tokens, log)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// purgeTokens drops expired and revoked refresh tokens once an hour.
func purgeTokens(ctx context.Context, tokens *repository.TokenRepo, log *zap.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := tokens.PurgeExpired(ctx, time.Now().UTC())
			if err != nil {
				log.Warn("purge refresh tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("purged refresh tokens", zap.Int64("count", n))
			}
		}
	}
}

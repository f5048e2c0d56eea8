package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/tripoffice/api"
	"github.com/Domenick1991/tripoffice/config"
	"github.com/Domenick1991/tripoffice/internal/bootstrap"
	"github.com/Domenick1991/tripoffice/internal/cache"
	"github.com/Domenick1991/tripoffice/internal/email"
	"github.com/Domenick1991/tripoffice/internal/kafka"
	"github.com/Domenick1991/tripoffice/internal/middleware"
	"github.com/Domenick1991/tripoffice/internal/repository"
	"github.com/Domenick1991/tripoffice/internal/service/auth"
	"github.com/Domenick1991/tripoffice/internal/service/booking"
	"github.com/Domenick1991/tripoffice/internal/service/coupons"
	"github.com/Domenick1991/tripoffice/internal/service/trips"
	"github.com/Domenick1991/tripoffice/internal/session"
	"github.com/Domenick1991/tripoffice/internal/timerange"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisClient := cache.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	var sessions session.Store
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		sessions = session.NewRedisStore(redisClient)
	default:
		memory := session.NewMemoryStore()
		go memory.RunSweeper(ctx, cfg.Session.SweepInterval())
		sessions = memory
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := producer.CheckConnection(checkCtx); err != nil {
		log.Printf("WARNING: kafka is unreachable, booking events will fail to publish: %v", err)
	}
	cancel()

	loc, err := cfg.Reporting.Location()
	if err != nil {
		log.Fatalf("load reporting timezone: %v", err)
	}

	adminRepo := repository.NewAdminRepository(pool)
	tripRepo := repository.NewTripRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)

	authService := auth.NewAuthService(adminRepo, sessions, cfg.Session.TTL(), auth.WithFallbackAccount(cfg.Auth))
	tripService := trips.NewTripService(tripRepo, cache.NewRedisCache(redisClient, cfg.Trips.CacheTTL()))
	couponService := coupons.NewCouponService(couponRepo)
	bookingService := booking.NewBookingService(
		bookingRepo,
		tripRepo,
		email.NewSMTPSender(cfg.SMTP),
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithAdminBCC(cfg.SMTP.AdminBCC),
		booking.WithEmailTimeout(cfg.SMTP.Timeout()),
	)

	cookies := api.NewCookieSessions(cfg.Session.CookieSecret, cfg.Session.CookieName, cfg.HTTP.CookieSecure)
	gate := api.NewGate(sessions, authService.Refresh, middleware.DefaultPolicy, cookies.Token)
	router := api.NewRouter(gate, api.Handlers{
		Auth:     api.NewAuthHandler(authService, cookies),
		Trips:    api.NewTripHandler(tripService),
		Bookings: api.NewBookingHandler(bookingService, timerange.NewBuilder(loc)),
		Coupons:  api.NewCouponHandler(couponService),
	}, cfg.HTTP.AllowedOrigins)

	if err := bootstrap.Run(ctx, cfg.HTTP, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

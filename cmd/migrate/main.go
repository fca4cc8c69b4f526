package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/database"
	"github.com/iliyamo/venue-booking/internal/logger"
	"github.com/iliyamo/venue-booking/internal/utils"
)

// migrate applies the schema and seeds reference data plus the first admin.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if err := logger.Init(&logger.Config{Level: cfg.LogLevel, ServiceName: "venue-booking-migrate", Development: cfg.IsDevelopment()}); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	db, err := database.Open(context.Background(), cfg.DBOptions())
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	admin := database.AdminSeed{
		Name:  envOr("ADMIN_NAME", "Administrator"),
		Email: os.Getenv("ADMIN_EMAIL"),
		Phone: envOr("ADMIN_PHONE", "9800000000"),
	}
	if admin.Email != "" {
		pw := os.Getenv("ADMIN_PASSWORD")
		if !utils.StrongPassword(pw) {
			log.Fatal("ADMIN_PASSWORD does not meet the password policy", zap.String("policy", utils.PasswordPolicy))
		}
		if admin.PasswordHash, err = utils.HashPassword(pw, cfg.BcryptCost); err != nil {
			log.Fatal("hash admin password", zap.Error(err))
		}
	}
	if err := database.Seed(ctx, db, admin); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("database ready", zap.Bool("admin_seeded", admin.Email != ""))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

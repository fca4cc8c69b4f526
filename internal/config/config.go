package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"

	"github.com/iliyamo/venue-booking/internal/database"
)

// Config holds the core runtime configuration.  Each field corresponds to
// an environment variable; the optional subsystems (Redis, SMTP, SMS, the
// broker) have their own loaders with defaults.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	LogLevel       string // zap level: debug, info, warn, error
	AppBaseURL     string // used to build links in verification and reset e-mails
}

// DBOptions returns the connection settings for database.Open, including
// pool limits from DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS and DB_CONN_MAX_LIFETIME.
func (c Config) DBOptions() database.Options {
	return database.Options{
		User: c.DBUser, Pass: c.DBPass, Host: c.DBHost, Port: c.DBPort, Name: c.DBName,
		MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

// IsDevelopment reports whether the service runs in a local/dev environment.
func (c Config) IsDevelopment() bool {
	switch c.Env {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),                                 // environment (dev/test/prod)
		Port:           must("APP_PORT"),                                // port to bind the HTTP server
		DBUser:         must("DB_USER"),                                 // database user
		DBPass:         os.Getenv("DB_PASS"),                            // database password (empty allowed)
		DBHost:         must("DB_HOST"),                                 // database host
		DBPort:         must("DB_PORT"),                                 // database port
		DBName:         must("DB_NAME"),                                 // database name
		JWTSecret:      must("JWT_SECRET"),                              // secret used for signing JWTs
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),                 // TTL for access tokens in minutes
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),               // TTL for refresh tokens in days
		BcryptCost:     mustInt("BCRYPT_COST"),                          // bcrypt cost factor
		LogLevel:       envStr("LOG_LEVEL", "info"),                     // logger level
		AppBaseURL:     envStr("APP_BASE_URL", "http://localhost:3000"), // front-end origin for e-mail links
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

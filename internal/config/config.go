package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env              string // application environment (development, production, test)
	Port             string // HTTP port to listen on
	DBDriver         string // "mysql" or "memory"
	DBUser           string
	DBPass           string // empty allowed
	DBHost           string
	DBPort           string
	DBName           string
	JWTSecret        string
	AccessTTLMin     int  // access token time-to-live in minutes
	RefreshTTLDays   int  // refresh token time-to-live in days
	BcryptCost       int
	AllowStaffSignup bool // honour isStaff on public registration
	AutoSeed         bool // seed the memory store on boot

	RabbitURL    string
	OrderQueue   string
	GalleyLog    string
	PaymentDelay time.Duration
}


// loader collects every missing required variable so a misconfigured
// deployment reports all of them at once.
type loader struct {
	missing []string
	invalid []string
}

// Load reads a .env file when present and then the process environment.
// Database variables are only required for the mysql driver.
func Load() (Config, error) {
	_ = godotenv.Load()

	l := &loader{}
	cfg := Config{
		Env:              envStr("APP_ENV", "development"),
		Port:             envStr("APP_PORT", "3000"),
		DBDriver:         strings.ToLower(envStr("DB_DRIVER", "mysql")),
		DBPass:           os.Getenv("DB_PASS"),
		JWTSecret:        l.must("JWT_SECRET"),
		AccessTTLMin:     l.mustInt("ACCESS_TOKEN_TTL_MIN", 1440),
		RefreshTTLDays:   l.mustInt("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:       l.mustInt("BCRYPT_COST", 10),
		AllowStaffSignup: envBool("ALLOW_STAFF_SIGNUP", false),
		AutoSeed:         envBool("AUTO_SEED", true),
		RabbitURL:        rabbitURL(),
		OrderQueue:       envStr("ORDER_QUEUE", "skycomfort.orders"),
		GalleyLog:        envStr("GALLEY_LOG", "logs/orders.log"),
		PaymentDelay:     envDur("PAYMENT_MOCK_DELAY", time.Second),
	}
	switch cfg.DBDriver {
	case "mysql":
		cfg.DBUser = l.must("DB_USER")
		cfg.DBHost = l.must("DB_HOST")
		cfg.DBPort = envStr("DB_PORT", "3306")
		cfg.DBName = l.must("DB_NAME")
	case "memory":
	default:
		l.invalid = append(l.invalid, "DB_DRIVER="+cfg.DBDriver)
	}
	if err := l.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// must retrieves the value of a required environment variable.
func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		l.missing = append(l.missing, key)
	}
	return v
}

// mustInt parses an integer variable, falling back to def when unset.
func (l *loader) mustInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.invalid = append(l.invalid, fmt.Sprintf("%s=%q", key, s))
	}
	return n
}

func (l *loader) err() error {
	var errs []error
	if len(l.missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required env vars: %s", strings.Join(l.missing, ", ")))
	}
	if len(l.invalid) > 0 {
		errs = append(errs, fmt.Errorf("invalid env values: %s", strings.Join(l.invalid, ", ")))
	}
	return errors.Join(errs...)
}

func rabbitURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/db"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"storefront"`
	ServerPort  int    `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTSecret  string        `envconfig:"JWT_SECRET"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"8760h"`
	CookieName string        `envconfig:"COOKIE_NAME" default:"auth_token"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://127.0.0.1:5500,http://localhost:5500"`

	UploadDir      string `envconfig:"UPLOAD_DIR" default:"images"`
	UploadMaxBytes int64  `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`

	ESURL      string `envconfig:"ES_URL"`
	ESUser     string `envconfig:"ES_USER"`
	ESPassword string `envconfig:"ES_PASSWORD"`
	ESIndex    string `envconfig:"ES_INDEX" default:"products"`

	AuthRatePerSec float64 `envconfig:"AUTH_RATE_PER_SEC" default:"5"`
	AuthRateBurst  int     `envconfig:"AUTH_RATE_BURST" default:"10"`

	AdminName     string `envconfig:"ADMIN_NAME" default:"admin"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

func Load(dotenvFiles ...string) (Config, error) {
	var cfg Config
	if err := pkgconfig.Load(&cfg, dotenvFiles...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := pkgconfig.RequireNonEmpty(map[string]string{
		"DATABASE_URL": c.DatabaseURL,
		"JWT_SECRET":   c.JWTSecret,
	}); err != nil {
		return err
	}
	if c.DBDriver != db.DriverPostgres && c.DBDriver != db.DriverSQLite {
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", db.DriverPostgres, db.DriverSQLite, c.DBDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.ServerPort)
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func (c Config) AdminSeedEnabled() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

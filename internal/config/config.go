package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config is everything the API process reads from the environment.
type Config struct {
	Port            string
	GinMode         string
	LogLevel        string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	StoreDriver string
	DB          DBConfig

	JWTSecret string
	JWTTTL    time.Duration

	RedisURL     string
	FareCacheTTL time.Duration

	LocationsFile string
	S3            S3Config

	FirebaseServiceAccountPath string

	Admin AdminConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxIdle  int
	MaxOpen  int
}

// DSN is the libpq keyword string the gorm postgres driver expects.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	LocationsKey    string
}

type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

func defaults() Config {
	return Config{
		Port:            "8080",
		GinMode:         "release",
		LogLevel:        "info",
		ShutdownTimeout: 15 * time.Second,
		CORSOrigins:     []string{"*"},
		StoreDriver:     StoreDriverPostgres,
		DB: DBConfig{
			Host:    "localhost",
			Port:    "5432",
			SSLMode: "disable",
			MaxIdle: 10,
			MaxOpen: 50,
		},
		JWTTTL:        30 * 24 * time.Hour,
		FareCacheTTL:  5 * time.Minute,
		LocationsFile: "./data/locations.json",
		S3:            S3Config{LocationsKey: "config/locations.json"},
		Admin:         AdminConfig{Name: "Super Admin"},
	}
}

// LoadDotEnv reads .env if present. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the environment. Every invalid value is reported in the
// returned error, not just the first.
func Load() (Config, error) {
	cfg := defaults()
	var errs []error

	setString(&cfg.Port, "PORT")
	setString(&cfg.GinMode, "GIN_MODE")
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	setDuration(&cfg.ShutdownTimeout, "SHUTDOWN_TIMEOUT", &errs)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitAndTrim(v)
	}

	setString(&cfg.StoreDriver, "STORE_DRIVER")
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	setString(&cfg.DB.Host, "DB_HOST")
	setString(&cfg.DB.Port, "DB_PORT")
	setString(&cfg.DB.User, "DB_USER")
	cfg.DB.Password = os.Getenv("DB_PASSWORD")
	setString(&cfg.DB.Name, "DB_NAME")
	setString(&cfg.DB.SSLMode, "DB_SSLMODE")
	setInt(&cfg.DB.MaxIdle, "DB_MAX_IDLE", &errs)
	setInt(&cfg.DB.MaxOpen, "DB_MAX_OPEN", &errs)

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	setDuration(&cfg.JWTTTL, "JWT_TTL", &errs)

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	setDuration(&cfg.FareCacheTTL, "FARE_CACHE_TTL", &errs)

	setString(&cfg.LocationsFile, "LOCATIONS_FILE")
	cfg.S3.Region = strings.TrimSpace(os.Getenv("AWS_REGION"))
	cfg.S3.AccessKeyID = strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID"))
	cfg.S3.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	cfg.S3.Bucket = strings.TrimSpace(os.Getenv("AWS_S3_BUCKET"))
	setString(&cfg.S3.LocationsKey, "LOCATIONS_S3_KEY")

	cfg.FirebaseServiceAccountPath = strings.TrimSpace(os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"))

	setString(&cfg.Admin.Name, "ADMIN_NAME")
	cfg.Admin.Email = strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
	cfg.Admin.Password = os.Getenv("ADMIN_PASSWORD")

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if cfg.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be > 0"))
	}
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DB.User == "" || cfg.DB.Name == "" {
			errs = append(errs, errors.New("DB_USER and DB_NAME are required for STORE_DRIVER=postgres"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverMemory))
	}
	if cfg.DB.MaxIdle < 0 || cfg.DB.MaxOpen <= 0 {
		errs = append(errs, errors.New("DB_MAX_IDLE must be >= 0 and DB_MAX_OPEN > 0"))
	}

	return cfg, errors.Join(errs...)
}

func setDuration(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setInt(target *int, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = i
	}
}

func setString(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

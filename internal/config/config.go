package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// API server
	Port          string        `yaml:"port"`
	DBDSN         string        `yaml:"db_dsn"`
	LogFile       string        `yaml:"log_file"`
	LogLevel      string        `yaml:"log_level"`
	TemplateDir   string        `yaml:"template_dir"`
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	DevOTP        string        `yaml:"dev_otp"`
	PaymentSecret string        `yaml:"payment_secret"`
	Currency      string        `yaml:"currency"`

	// Client
	APIBaseURL         string        `yaml:"api_base_url"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	RequestsPerSecond  float64       `yaml:"requests_per_second"`
	StorageBackend     string        `yaml:"storage_backend"` // sqlite | redis | memory
	StorageDSN         string        `yaml:"storage_dsn"`
	RedisURL           string        `yaml:"redis_url"`
	StorageKey         string        `yaml:"storage_key"`
	SearchDebounce     time.Duration `yaml:"search_debounce"`
	TokenCheckInterval time.Duration `yaml:"token_check_interval"`
	GeocoderURL        string        `yaml:"geocoder_url"`
}

func defaults() Config {
	return Config{
		Port:               "8080",
		DBDSN:              "storefront.db", // sqlite file in project root
		LogFile:            "./storefront.log",
		LogLevel:           "info",
		TemplateDir:        "./web/templates",
		JWTSecret:          "dev-jwt-secret-change-me",
		TokenTTL:           24 * time.Hour,
		DevOTP:             "123456",
		PaymentSecret:      "sandbox-payment-secret",
		Currency:           "INR",
		APIBaseURL:         "http://localhost:8080/api/v1",
		RequestTimeout:     15 * time.Second,
		RequestsPerSecond:  10,
		StorageBackend:     "sqlite",
		StorageDSN:         "storefront-client.db",
		RedisURL:           "redis://localhost:6379/2",
		StorageKey:         "dev-storage-key-change-me",
		SearchDebounce:     500 * time.Millisecond,
		TokenCheckInterval: 5 * time.Minute,
		GeocoderURL:        "https://nominatim.openstreetmap.org",
	}
}

// Load builds the config from defaults, an optional YAML file named by
// STOREFRONT_CONFIG, then environment variables (env wins).
func Load() Config {
	cfg := defaults()
	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			log.Printf("[warn] could not read config file %s: %v", path, err)
		}
	}
	applyEnv(&cfg)

	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s API_BASE_URL=%s STORAGE_BACKEND=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.APIBaseURL, cfg.StorageBackend)
	return cfg
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

func applyEnv(cfg *Config) {
	str(&cfg.Port, "PORT")
	str(&cfg.DBDSN, "DB_DSN")
	str(&cfg.LogFile, "LOG_FILE")
	str(&cfg.LogLevel, "LOG_LEVEL")
	str(&cfg.TemplateDir, "TEMPLATE_DIR")
	str(&cfg.JWTSecret, "JWT_SECRET")
	dur(&cfg.TokenTTL, "TOKEN_TTL")
	str(&cfg.DevOTP, "DEV_OTP")
	str(&cfg.PaymentSecret, "PAYMENT_SECRET")
	str(&cfg.Currency, "CURRENCY")

	str(&cfg.APIBaseURL, "API_BASE_URL")
	dur(&cfg.RequestTimeout, "REQUEST_TIMEOUT")
	if v := os.Getenv("REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.RequestsPerSecond = f
		}
	}
	str(&cfg.StorageBackend, "STORAGE_BACKEND")
	str(&cfg.StorageDSN, "STORAGE_DSN")
	str(&cfg.RedisURL, "REDIS_URL")
	str(&cfg.StorageKey, "STORAGE_KEY")
	dur(&cfg.SearchDebounce, "SEARCH_DEBOUNCE")
	dur(&cfg.TokenCheckInterval, "TOKEN_CHECK_INTERVAL")
	str(&cfg.GeocoderURL, "GEOCODER_URL")
}

func str(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func dur(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[warn] ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = d
}

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quizwhiz/quizwhiz-backend/models"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	TimeZone string `yaml:"timezone"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

type SupabaseConfig struct {
	URL    string `yaml:"url"`
	Key    string `yaml:"key"`
	Bucket string `yaml:"bucket"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type Config struct {
	Port           string          `yaml:"port"`
	Database       DatabaseConfig  `yaml:"database"`
	JWTSecret      string          `yaml:"jwt_secret"`
	TokenTTL       time.Duration   `yaml:"token_ttl"`
	GeminiAPIKey   string          `yaml:"gemini_api_key"`
	GeminiModel    string          `yaml:"gemini_model"`
	RedisAddr      string          `yaml:"redis_addr"`
	Supabase       SupabaseConfig  `yaml:"supabase"`
	GoogleClientID string          `yaml:"google_client_id"`
	CORSOrigins    []string        `yaml:"cors_origins"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	APIURL         string          `yaml:"api_url"`
}

func Default() Config {
	return Config{
		Port: "8080",
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Name:     "quizwhiz",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		TokenTTL:    7 * 24 * time.Hour,
		GeminiModel: "gemini-2.0-flash",
		Supabase:    SupabaseConfig{Bucket: "uploads"},
		CORSOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		RateLimit:   RateLimitConfig{Requests: 10, Window: time.Minute},
		APIURL:      "http://localhost:8080",
	}
}

// Load reads defaults, then the YAML file at path (if any), then the
// environment. A missing file is only an error when path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&cfg.Port, "PORT")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Supabase.URL, "SUPABASE_URL")
	setString(&cfg.Supabase.Key, "SUPABASE_KEY")
	setString(&cfg.Supabase.Bucket, "SUPABASE_BUCKET")
	setString(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.APIURL, "QUIZWHIZ_API_URL")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}
	if v := os.Getenv("RATE_LIMIT_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimit.Requests = n
		}
	}
}

// Validate checks what the server cannot start without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	return nil
}

// OpenDB connects to PostgreSQL and configures the connection pool.
func OpenDB(cfg DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	log.Println("postgreSQL connected")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Result{},
		&models.ResultQuestion{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

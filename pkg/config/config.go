package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"

	// MemoryDatabase selects the in-process repositories instead of PostgreSQL.
	MemoryDatabase = "memory"

	defaultJWTSecret = "dev-secret-change"
)

type Config struct {
	Port          string `yaml:"port"`
	DatabaseURL   string `yaml:"database_url"`
	JWTSecret     string `yaml:"jwt_secret"`
	JWTIssuer     string `yaml:"jwt_issuer"`
	JWTTTLMinutes int    `yaml:"jwt_ttl_minutes"`
	// Lifetime of the scoped tokens handed out for resume preview frames.
	TicketTTLSeconds int `yaml:"resume_ticket_ttl_seconds"`

	Storage StorageConfig `yaml:"storage"`
	Resume  ResumeConfig  `yaml:"resume"`

	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
	CORSOrigins   string `yaml:"cors_origins"`
	Env           string `yaml:"env"`
}

type StorageConfig struct {
	Type         string `yaml:"type"`
	Root         string `yaml:"root"`
	S3Bucket     string `yaml:"s3_bucket"`
	S3Prefix     string `yaml:"s3_prefix"`
	S3Region     string `yaml:"s3_region"`
	S3Endpoint   string `yaml:"s3_endpoint"`
	AWSAccessKey string `yaml:"-"`
	AWSSecretKey string `yaml:"-"`
}

type ResumeConfig struct {
	MaxBytes   int64    `yaml:"max_bytes"`
	Extensions []string `yaml:"extensions"`
	// HRAnyJob lets every approved HR read every resume instead of only
	// resumes sent to their own jobs.
	HRAnyJob bool `yaml:"hr_any_job"`
}

// Load reads environment variables, optionally from a .env file if present.
// When CONFIG_FILE points to a YAML file its values are used as the base layer.
func Load() (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	var file Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg := Config{
		Port:             getEnv("PORT", or(file.Port, "8080")),
		DatabaseURL:      getEnv("DATABASE_URL", file.DatabaseURL),
		JWTSecret:        getEnv("JWT_SECRET", or(file.JWTSecret, defaultJWTSecret)),
		JWTIssuer:        getEnv("JWT_ISSUER", or(file.JWTIssuer, "recruitment-api")),
		JWTTTLMinutes:    getEnvInt("JWT_TTL_MINUTES", orInt(file.JWTTTLMinutes, 60)),
		TicketTTLSeconds: getEnvInt("RESUME_TICKET_TTL_SECONDS", orInt(file.TicketTTLSeconds, 300)),
		Storage: StorageConfig{
			Type:         strings.ToLower(getEnv("STORAGE_TYPE", or(file.Storage.Type, StorageLocal))),
			Root:         getEnv("STORAGE_ROOT", or(file.Storage.Root, "./uploads/resumes")),
			S3Bucket:     getEnv("S3_BUCKET", file.Storage.S3Bucket),
			S3Prefix:     getEnv("S3_PREFIX", or(file.Storage.S3Prefix, "resumes/")),
			S3Region:     getEnv("AWS_REGION", or(file.Storage.S3Region, "us-east-1")),
			S3Endpoint:   getEnv("S3_ENDPOINT", file.Storage.S3Endpoint),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		Resume: ResumeConfig{
			MaxBytes:   getEnvInt64("RESUME_MAX_BYTES", orInt64(file.Resume.MaxBytes, 5<<20)),
			Extensions: getEnvList("RESUME_EXTENSIONS", orList(file.Resume.Extensions, []string{".pdf", ".doc", ".docx"})),
			HRAnyJob:   getEnvBool("RESUME_HR_ANY_JOB", file.Resume.HRAnyJob),
		},
		AdminEmail:    getEnv("ADMIN_EMAIL", file.AdminEmail),
		AdminPassword: getEnv("ADMIN_PASSWORD", file.AdminPassword),
		CORSOrigins:   getEnv("CORS_ORIGINS", or(file.CORSOrigins, "*")),
		Env:           getEnv("APP_ENV", or(file.Env, "development")),
	}
	for i, ext := range cfg.Resume.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Resume.Extensions[i] = ext
	}
	return cfg, cfg.Validate()
}

// Validate reports configuration that would make the server unusable or unsafe.
func (c Config) Validate() error {
	if c.Env == "production" && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	switch c.Storage.Type {
	case StorageLocal:
		if c.Storage.Root == "" {
			return errors.New("STORAGE_ROOT is required for local storage")
		}
	case StorageS3:
		if c.Storage.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown storage type: %q", c.Storage.Type)
	}
	if c.Resume.MaxBytes <= 0 {
		return errors.New("RESUME_MAX_BYTES must be positive")
	}
	if len(c.Resume.Extensions) == 0 {
		return errors.New("RESUME_EXTENSIONS must list at least one extension")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func orInt64(v, def int64) int64 {
	if v != 0 {
		return v
	}
	return def
}

func orList(v, def []string) []string {
	if len(v) > 0 {
		return append([]string(nil), v...)
	}
	return append([]string(nil), def...)
}

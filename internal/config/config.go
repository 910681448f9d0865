package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv         string `yaml:"app_env"`
	Port           string `yaml:"port"`
	AllowedOrigins string `yaml:"allowed_origins"`
	// AppURL is the frontend base used in email and notification links.
	AppURL         string `yaml:"app_url"`
	DebugRoutes    bool   `yaml:"debug_routes"`
	LogLevel       string `yaml:"log_level"`

	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`

	MeiliSearchHost string `yaml:"meilisearch_host"`
	MeiliMasterKey  string `yaml:"meili_master_key"`

	CloudinaryCloudName    string `yaml:"cloudinary_cloud_name"`
	CloudinaryAPIKey       string `yaml:"cloudinary_api_key"`
	CloudinaryAPISecret    string `yaml:"cloudinary_api_secret"`
	CloudinaryUploadFolder string `yaml:"cloudinary_upload_folder"`

	JWTSecret string        `yaml:"jwt_secret"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`

	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`
	GoogleRedirectURL  string `yaml:"google_redirect_url"`

	StripeSecretKey        string `yaml:"stripe_secret_key"`
	StripeWebhookSecret    string `yaml:"stripe_webhook_secret"`
	StripePriceID          string `yaml:"stripe_price_id"`
	BillingSuccessURL      string `yaml:"billing_success_url"`
	BillingCancelURL       string `yaml:"billing_cancel_url"`
	BillingPortalReturnURL string `yaml:"billing_portal_return_url"`

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUsername string `yaml:"smtp_username"`
	SMTPPassword string `yaml:"smtp_password"`
	SMTPFrom     string `yaml:"smtp_from"`

	KafkaBrokers    []string `yaml:"kafka_brokers"`
	KafkaMediaTopic string   `yaml:"kafka_media_topic"`

	VideoObfuscationKey string `yaml:"video_obfuscation_key"`

	RateLimitPost    time.Duration `yaml:"rate_limit_post"`
	RateLimitComment time.Duration `yaml:"rate_limit_comment"`

	UploadImageMaxBytes int64 `yaml:"upload_image_max_bytes"`
	UploadFileMaxBytes  int64 `yaml:"upload_file_max_bytes"`

	ReminderSchedule string        `yaml:"reminder_schedule"`
	ReminderWindow   time.Duration `yaml:"reminder_window"`

	// Used by the seed command only.
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment. Environment variables (including those from .env) win.
func Load(path string) (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		AppEnv:                 "development",
		Port:                   "8080",
		AllowedOrigins:         "http://localhost:3000",
		AppURL:                 "http://localhost:3000",
		LogLevel:               "info",
		MeiliSearchHost:        "",
		CloudinaryUploadFolder: "viral_academy",
		JWTTTL:                 24 * time.Hour,
		BillingSuccessURL:      "http://localhost:3000/billing/success",
		BillingCancelURL:       "http://localhost:3000/billing",
		BillingPortalReturnURL: "http://localhost:3000/account",
		SMTPPort:               587,
		SMTPFrom:               "Viral Academy <no-reply@viralacademy.com>",
		KafkaMediaTopic:        "media-catalog",
		VideoObfuscationKey:    "viral-academy",
		RateLimitPost:          30 * time.Second,
		RateLimitComment:       5 * time.Second,
		UploadImageMaxBytes:    5 << 20,
		UploadFileMaxBytes:     25 << 20,
		ReminderSchedule:       "*/5 * * * *",
		ReminderWindow:         time.Hour,
		AdminEmail:             "admin@viralacademy.com",
	}
}

func applyEnv(cfg *Config) error {
	setString(&cfg.AppEnv, "APP_ENV")
	setString(&cfg.Port, "PORT")
	setString(&cfg.AllowedOrigins, "ALLOWED_ORIGINS")
	setString(&cfg.AppURL, "APP_URL")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.MeiliSearchHost, "MEILISEARCH_HOST")
	setString(&cfg.MeiliMasterKey, "MEILI_MASTER_KEY")
	setString(&cfg.CloudinaryCloudName, "CLOUDINARY_CLOUD_NAME")
	setString(&cfg.CloudinaryAPIKey, "CLOUDINARY_API_KEY")
	setString(&cfg.CloudinaryAPISecret, "CLOUDINARY_API_SECRET")
	setString(&cfg.CloudinaryUploadFolder, "CLOUDINARY_UPLOAD_FOLDER")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&cfg.GoogleRedirectURL, "GOOGLE_REDIRECT_URL")
	setString(&cfg.StripeSecretKey, "STRIPE_SECRET_KEY")
	setString(&cfg.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET")
	setString(&cfg.StripePriceID, "STRIPE_PRICE_ID")
	setString(&cfg.BillingSuccessURL, "BILLING_SUCCESS_URL")
	setString(&cfg.BillingCancelURL, "BILLING_CANCEL_URL")
	setString(&cfg.BillingPortalReturnURL, "BILLING_PORTAL_RETURN_URL")
	setString(&cfg.SMTPHost, "SMTP_HOST")
	setString(&cfg.SMTPUsername, "SMTP_USERNAME")
	setString(&cfg.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.SMTPFrom, "SMTP_FROM")
	setString(&cfg.KafkaMediaTopic, "KAFKA_MEDIA_TOPIC")
	setString(&cfg.VideoObfuscationKey, "VIDEO_OBFUSCATION_KEY")
	setString(&cfg.ReminderSchedule, "REMINDER_SCHEDULE")
	setString(&cfg.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")

	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.KafkaBrokers = splitList(v)
	}

	if v, ok := os.LookupEnv("DEBUG_ROUTES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG_ROUTES: %w", err)
		}
		cfg.DebugRoutes = b
	}

	if v, ok := os.LookupEnv("SMTP_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = port
	}

	for key, dst := range map[string]*int64{
		"UPLOAD_IMAGE_MAX_BYTES": &cfg.UploadImageMaxBytes,
		"UPLOAD_FILE_MAX_BYTES":  &cfg.UploadFileMaxBytes,
	} {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	// Parsing durations
	for key, dst := range map[string]*time.Duration{
		"JWT_TTL":            &cfg.JWTTTL,
		"RATE_LIMIT_POST":    &cfg.RateLimitPost,
		"RATE_LIMIT_COMMENT": &cfg.RateLimitComment,
		"REMINDER_WINDOW":    &cfg.ReminderWindow,
	} {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.JWTSecret = "change-me"
	}
	if c.UploadImageMaxBytes <= 0 || c.UploadFileMaxBytes <= 0 {
		return errors.New("upload size limits must be positive")
	}
	return nil
}

func (c *Config) Origins() []string {
	return splitList(c.AllowedOrigins)
}

func setString(dst *string, key string) {
	if value, exists := os.LookupEnv(key); exists {
		*dst = value
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// internal/infra/config/config.go
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	GCPProjectID             string
	GCPCreds                 string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	// CSV エクスポート先
	ExportBucket string

	// SendGrid（キーは直接指定 or Secret Manager のシークレット ID）
	SendGridAPIKey       string
	SendGridAPIKeySecret string
	MailFrom             string
	AppBaseURL           string

	// Kirvano webhook の共有トークン
	KirvanoWebhookToken       string
	KirvanoWebhookTokenSecret string

	CORSAllowOrigin string

	ConversionTimeout   time.Duration
	AccessSweepSchedule string
	Timezone            string
}

// Load reads an optional .env (ignored when absent) and then the environment.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("[config] .env loaded")
	}

	defaultProject := getenvDefault("GCP_PROJECT_ID", "flowify-development")

	return &Config{
		AppEnv:   getenvDefault("APP_ENV", "development"),
		Port:     getenvDefault("PORT", "8080"),
		LogLevel: getenvDefault("LOG_LEVEL", "info"),

		GCPProjectID:             defaultProject,
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		ExportBucket: os.Getenv("EXPORT_BUCKET"),

		SendGridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		SendGridAPIKeySecret: os.Getenv("SENDGRID_API_KEY_SECRET"),
		MailFrom:             getenvDefault("MAIL_FROM", "no-reply@flowify.com.br"),
		AppBaseURL:           strings.TrimRight(getenvDefault("APP_BASE_URL", "http://localhost:3000"), "/"),

		KirvanoWebhookToken:       os.Getenv("KIRVANO_WEBHOOK_TOKEN"),
		KirvanoWebhookTokenSecret: os.Getenv("KIRVANO_WEBHOOK_TOKEN_SECRET"),

		CORSAllowOrigin: getenvDefault("CORS_ALLOW_ORIGIN", "*"),

		ConversionTimeout:   getenvDuration("CONVERSION_TIMEOUT", 10*time.Second),
		AccessSweepSchedule: getenvDefault("ACCESS_SWEEP_SCHEDULE", "@hourly"),
		Timezone:            getenvDefault("APP_TIMEZONE", "America/Sao_Paulo"),
	}
}

// IsProduction は APP_ENV=production のとき true。
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Location returns the business timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("tz", c.Timezone).Msg("[config] unknown timezone; using UTC")
		return time.UTC
	}
	return loc
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("[config] invalid duration; using default")
		return def
	}
	return d
}

// internal/platform/di/shared/runtime_settings.go
package shared

import (
	"context"
	"strings"
	"time"

	appcfg "flowify/internal/infra/config"
)

// SecretResolver resolves "literal or secret id" pairs. *secrets.Provider satisfies it.
type SecretResolver interface {
	Resolve(ctx context.Context, literal, secretID string) string
}

// RuntimeSettings is env/config-resolved runtime settings (normalized once).
// It intentionally contains only "values" (no external clients).
type RuntimeSettings struct {
	ExportBucket string

	SendGridAPIKey string
	MailFrom       string
	AppBaseURL     string

	KirvanoWebhookToken string

	CORSAllowOrigin     string
	ConversionTimeout   time.Duration
	AccessSweepSchedule string
	Location            *time.Location
}

// ResolveRuntimeSettings resolves and normalizes runtime settings from cfg.
// Secrets are read through sr when the literal value is empty.
//
// It returns warnings as strings so callers can decide how to surface them.
func ResolveRuntimeSettings(ctx context.Context, cfg *appcfg.Config, sr SecretResolver) (RuntimeSettings, []string) {
	var warns []string

	resolve := func(literal, secretID string) string {
		if sr == nil {
			return strings.TrimSpace(literal)
		}
		return sr.Resolve(ctx, literal, secretID)
	}

	s := RuntimeSettings{
		ExportBucket:        strings.TrimSpace(cfg.ExportBucket),
		SendGridAPIKey:      resolve(cfg.SendGridAPIKey, cfg.SendGridAPIKeySecret),
		MailFrom:            strings.TrimSpace(cfg.MailFrom),
		AppBaseURL:          normalizeBaseURL(cfg.AppBaseURL),
		KirvanoWebhookToken: resolve(cfg.KirvanoWebhookToken, cfg.KirvanoWebhookTokenSecret),
		CORSAllowOrigin:     strings.TrimSpace(cfg.CORSAllowOrigin),
		ConversionTimeout:   cfg.ConversionTimeout,
		AccessSweepSchedule: strings.TrimSpace(cfg.AccessSweepSchedule),
		Location:            cfg.Location(),
	}

	if s.ExportBucket == "" {
		warns = append(warns, "EXPORT_BUCKET is empty (CSV export disabled)")
	}
	if s.SendGridAPIKey == "" {
		warns = append(warns, "SendGrid API key is empty (approval mails disabled)")
	}
	if s.KirvanoWebhookToken == "" {
		warns = append(warns, "Kirvano webhook token is empty (webhook is not authenticated)")
	}
	if s.CORSAllowOrigin == "*" && cfg.IsProduction() {
		warns = append(warns, "CORS_ALLOW_ORIGIN is * in production")
	}
	return s, warns
}

func normalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	return strings.TrimRight(u, "/")
}

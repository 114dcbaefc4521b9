// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	appcfg "flowify/internal/infra/config"
	firestoreinfra "flowify/internal/infra/firestore"
	"flowify/internal/infra/secrets"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager)
// - owns env/config-resolved runtime settings
//
// IMPORTANT:
// Infra must NOT depend on routers, handlers, or usecases.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	// Clients (owned; Close-managed)
	Firestore     *firestoreinfra.ClientWrapper
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client

	Secrets  *secrets.Provider
	Settings RuntimeSettings
}

// NewInfra initializes shared infra.
// Firestore is strict (return error).
// GCS, Firebase/Auth and SecretManager are best-effort (warn + continue);
// the features that need them stay disabled.
func NewInfra(ctx context.Context, cfg *appcfg.Config) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}

	projectID := strings.TrimSpace(cfg.FirestoreProjectID)
	if projectID == "" {
		projectID = strings.TrimSpace(cfg.GCPProjectID)
	}
	if projectID == "" {
		return nil, errors.New("shared.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	inf := &Infra{Config: cfg, ProjectID: projectID}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds) // GOOGLE_APPLICATION_CREDENTIALS
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Info().Str("file", redactPath(credFile)).Msg("[shared.infra] using credentials file for GCP clients")
	} else {
		log.Info().Msg("[shared.infra] using Application Default Credentials")
	}

	// 1) Secret Manager (best-effort)
	if sm, err := secretmanager.NewClient(ctx, clientOpts...); err != nil {
		log.Warn().Err(err).Msg("[shared.infra] secretmanager.NewClient failed; secret lookups disabled")
	} else {
		inf.SecretManager = sm
		inf.Secrets = secrets.NewProvider(sm, projectID)
	}

	// 2) Firestore (strict)
	fsw, err := firestoreinfra.NewClient(ctx, projectID, clientOpts...)
	if err != nil {
		_ = inf.Close()
		return nil, fmt.Errorf("shared.infra: %w", err)
	}
	inf.Firestore = fsw

	// 3) GCS (best-effort; export only)
	if gcsClient, err := storage.NewClient(ctx, clientOpts...); err != nil {
		log.Warn().Err(err).Msg("[shared.infra] storage.NewClient failed; CSV export disabled")
	} else {
		inf.GCS = gcsClient
		log.Info().Msg("[shared.infra] GCS storage client initialized")
	}

	// 4) Firebase App/Auth (best-effort; /api/ returns 503 without it)
	fbCfg := &firebase.Config{ProjectID: strings.TrimSpace(cfg.FirebaseProjectID)}
	if fbCfg.ProjectID == "" {
		fbCfg.ProjectID = projectID
	}
	if fbApp, err := firebase.NewApp(ctx, fbCfg, clientOpts...); err != nil {
		log.Warn().Err(err).Msg("[shared.infra] firebase app init failed")
	} else {
		inf.FirebaseApp = fbApp
		if authClient, err := fbApp.Auth(ctx); err != nil {
			log.Warn().Err(err).Msg("[shared.infra] firebase auth init failed")
		} else {
			inf.FirebaseAuth = authClient
			log.Info().Msg("[shared.infra] Firebase Auth initialized")
		}
	}

	// 5) Runtime settings (resolve once)
	settings, warns := ResolveRuntimeSettings(ctx, cfg, inf.Secrets)
	for _, w := range warns {
		log.Warn().Msg("[shared.infra] " + w)
	}
	if err := settings.Validate(); err != nil {
		_ = inf.Close()
		return nil, err
	}
	inf.Settings = settings

	return inf, nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	return nil
}

func redactPath(p string) string {
	// Do not log full path (Windows/Unix compatible light masking)
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "***"
	}
	return "***/" + last
}

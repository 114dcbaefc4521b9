// internal/infra/firestore/client.go
package firestoreinfra

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ClientWrapper は Firestore クライアントとその設定をラップします。
type ClientWrapper struct {
	Client    *firestore.Client
	ProjectID string
	Emulator  string
}

// NewClient は Firestore クライアントを初期化します。
// opts が空の場合は ADC、FIRESTORE_EMULATOR_HOST があればエミュレータに接続します。
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*ClientWrapper, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("firestore: project id is empty")
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	emu := strings.TrimSpace(os.Getenv("FIRESTORE_EMULATOR_HOST"))
	ev := log.Info().Str("project", projectID)
	if emu != "" {
		ev = ev.Str("emulator", emu)
	}
	ev.Msg("[firestore] connected")

	return &ClientWrapper{Client: client, ProjectID: projectID, Emulator: emu}, nil
}

// Ping は plans コレクションを 1 件だけ読んで疎通を確認します。
// Firestore には Ping API がないため。
func (cw *ClientWrapper) Ping(ctx context.Context) error {
	if cw == nil || cw.Client == nil {
		return fmt.Errorf("firestore client is nil")
	}
	_, err := cw.Client.Collection("plans").Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("firestore ping failed: %w", err)
	}
	return nil
}

// Close は Firestore クライアントをクローズします。
func (cw *ClientWrapper) Close() error {
	if cw == nil || cw.Client == nil {
		return nil
	}
	return cw.Client.Close()
}

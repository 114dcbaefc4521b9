// internal/infra/secrets/secret_manager.go
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog/log"
)

// Accessor is the subset of the Secret Manager client used here.
type Accessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

var _ Accessor = (*secretmanager.Client)(nil)

// Provider resolves secret ids to their latest value.
type Provider struct {
	sm        Accessor
	projectID string
}

func NewProvider(sm Accessor, projectID string) *Provider {
	return &Provider{sm: sm, projectID: strings.TrimSpace(projectID)}
}

// Get returns projects/{project}/secrets/{id}/versions/latest as a trimmed string.
func (p *Provider) Get(ctx context.Context, secretID string) (string, error) {
	if p == nil || p.sm == nil {
		return "", errors.New("secrets: secret manager client is nil")
	}
	secretID = strings.TrimSpace(secretID)
	if secretID == "" {
		return "", errors.New("secrets: secret id is empty")
	}
	if p.projectID == "" {
		return "", errors.New("secrets: project id is empty")
	}

	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", p.projectID, secretID)
	resp, err := p.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("secrets: AccessSecretVersion failed (%s): %w", name, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("secrets: empty payload (%s)", name)
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

// Resolve prefers the literal value; otherwise it reads secretID. Failures
// are logged and yield "" so optional integrations stay disabled.
func (p *Provider) Resolve(ctx context.Context, literal, secretID string) string {
	if v := strings.TrimSpace(literal); v != "" {
		return v
	}
	if strings.TrimSpace(secretID) == "" {
		return ""
	}
	v, err := p.Get(ctx, secretID)
	if err != nil {
		log.Warn().Err(err).Str("secret", secretID).Msg("[secrets] resolve failed")
		return ""
	}
	return v
}

// internal/adapters/out/gcs/common/gcs_repository.go
package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// GCSPublicURL builds a public GCS URL.
// - bucket が空なら defaultBucket を使用
// - objectPath の先頭の "/" は除去
func GCSPublicURL(bucket, objectPath, defaultBucket string) string {
	b := strings.TrimSpace(bucket)
	if b == "" {
		b = strings.TrimSpace(defaultBucket)
	}
	obj := strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b, obj)
}

// IsPreconditionFailed は DoesNotExist 条件付き書き込みの 412 を判定する。
func IsPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

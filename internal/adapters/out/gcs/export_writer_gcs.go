// internal/adapters/out/gcs/export_writer_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"

	gcscommon "flowify/internal/adapters/out/gcs/common"
	usecase "flowify/internal/application/usecase"
)

// ErrExportExists: 同名オブジェクトが既にある（412）。
var ErrExportExists = errors.New("gcs: export object already exists")

// ExportWriterGCS writes export files (CSV) into a single bucket.
type ExportWriterGCS struct {
	Client *storage.Client
	Bucket string
}

func NewExportWriterGCS(client *storage.Client, bucket string) *ExportWriterGCS {
	return &ExportWriterGCS{Client: client, Bucket: strings.TrimSpace(bucket)}
}

// Write creates objectName; existing objects are never overwritten.
func (w *ExportWriterGCS) Write(ctx context.Context, objectName, contentType string, data []byte) (usecase.ExportObject, error) {
	if w == nil || w.Client == nil {
		return usecase.ExportObject{}, errors.New("ExportWriterGCS: nil storage client")
	}
	if w.Bucket == "" {
		return usecase.ExportObject{}, errors.New("ExportWriterGCS: bucket is empty")
	}
	obj := strings.TrimLeft(strings.TrimSpace(objectName), "/")
	if obj == "" {
		return usecase.ExportObject{}, errors.New("ExportWriterGCS: object name is empty")
	}

	oh := w.Client.Bucket(w.Bucket).Object(obj).If(storage.Conditions{DoesNotExist: true})
	sw := oh.NewWriter(ctx)
	sw.ContentType = contentType
	sw.ContentDisposition = fmt.Sprintf("attachment; filename=%q", obj[strings.LastIndex(obj, "/")+1:])

	if _, err := sw.Write(data); err != nil {
		_ = sw.Close()
		return usecase.ExportObject{}, err
	}
	if err := sw.Close(); err != nil {
		if gcscommon.IsPreconditionFailed(err) {
			return usecase.ExportObject{}, ErrExportExists
		}
		return usecase.ExportObject{}, err
	}

	return usecase.ExportObject{
		Bucket: w.Bucket,
		Name:   obj,
		URL:    gcscommon.GCSPublicURL(w.Bucket, obj, ""),
	}, nil
}

var _ usecase.ExportWriter = (*ExportWriterGCS)(nil)

// internal/adapters/out/firestore/common/fsutil.go
package common

import (
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrClientNil is returned by repositories built without a client.
var ErrClientNil = errors.New("firestore client is nil")

// IsNotFound は Firestore(gRPC) の NotFound を判定する。
func IsNotFound(err error) bool {
	return err != nil && status.Code(err) == codes.NotFound
}

// IsAlreadyExists は Create 時の重複を判定する。
func IsAlreadyExists(err error) bool {
	return err != nil && status.Code(err) == codes.AlreadyExists
}

// EachDocument drains it, calling fn for every snapshot. The iterator is
// always stopped.
func EachDocument(it *firestore.DocumentIterator, fn func(*firestore.DocumentSnapshot) error) error {
	defer it.Stop()
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
}

// TrimPtr は nil / 空白のみを nil として返す。
func TrimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

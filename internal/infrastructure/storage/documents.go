// Package storage keeps claim proof documents in Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/pkg/helpers"
)

// ErrTooLarge is returned when an upload exceeds the configured limit.
var ErrTooLarge = fmt.Errorf("%w: document too large", entity.ErrValidation)

// Documents implements application.DocumentStore.
type Documents struct {
	client   *gcs.Client
	bucket   string
	maxBytes int64
}

func NewDocuments(client *gcs.Client, bucket string, maxBytes int64) *Documents {
	return &Documents{client: client, bucket: bucket, maxBytes: maxBytes}
}

func (d *Documents) Put(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	lr := &limitedReader{r: r, remaining: d.maxBytes}
	uri, err := helpers.UploadObject(ctx, d.client, d.bucket, objectPath, contentType, lr)
	if errors.Is(err, ErrTooLarge) || lr.exceeded {
		return "", ErrTooLarge
	}
	return uri, err
}

// limitedReader errors instead of truncating once more than remaining
// bytes are available.
type limitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		var probe [1]byte
		n, err := l.r.Read(probe[:])
		if n > 0 {
			l.exceeded = true
			return 0, ErrTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}

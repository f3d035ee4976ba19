package objectclient

import (
	"context"
	"io"
)

// ObjectClient stores public assets such as resource logos. The bucket is
// fixed at construction.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, key string) error
	// KeyFromURL returns the object key when url points into this client's bucket.
	KeyFromURL(url string) (key string, ok bool)
}

package service

import (
	"context"
	"io"
)

// AssetStore is the external collaborator holding profile images. Callers
// treat it as best-effort where the flow allows: registration proceeds
// without an image when an upload fails, and a failed delete of a superseded
// image never blocks saving the new one.
type AssetStore interface {
	Upload(ctx context.Context, reader io.Reader, filename, contentType string) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

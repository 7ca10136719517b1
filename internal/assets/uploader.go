// Package assets uploads local artwork to hosted URLs and performs the
// image transforms some products need before upload. The vendor API
// only accepts artwork by URL, so every local file passes through here.
package assets

import "context"

// Uploader pushes a local image file to a hosting service and returns
// its public URL.
type Uploader interface {
	// Upload hosts the file at path and returns its public URL.
	Upload(ctx context.Context, path string) (string, error)
	// UploadPreservingAlpha hosts the file without flattening its alpha
	// channel. Embroidery artwork needs transparency intact.
	UploadPreservingAlpha(ctx context.Context, path string) (string, error)
}

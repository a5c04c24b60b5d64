// Package media stores uploaded images in an S3-compatible bucket and hands
// back publicly addressable URLs.
package media

import (
	"context"
	"io"
)

// File is an uploaded file ready to be stored.
type File struct {
	Reader      io.Reader
	ContentType string
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, f *File) (string, error)
}

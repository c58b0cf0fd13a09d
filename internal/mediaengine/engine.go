package mediaengine

import (
	"context"

	"github.com/olegsm/talkie-server/internal/store"
)

// File is one attachment payload received from a client.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Engine abstracts the third-party media service that stores attachments.
type Engine interface {
	// Upload stores the files and returns one attachment reference per file,
	// in input order.
	Upload(ctx context.Context, files []File) ([]store.Attachment, error)
}

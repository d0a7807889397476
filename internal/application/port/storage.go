package port

import (
	"context"
	"io"
)

// FileStorage stores uploaded ID-proof documents at registration time.
// The workflow never inspects stored files; only the returned path is
// kept on the user record.
type FileStorage interface {
	SaveIDProof(ctx context.Context, username, filename string, content io.Reader) (string, error)
}

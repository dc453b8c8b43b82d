package archive

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a recorded reply does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// Store holds recorded raw replies by name.
// Implementations must be safe for concurrent use.
type Store interface {
	// Open opens a reply for reading. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Put stores a reply, replacing any previous one.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a reply. Deleting a missing reply is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

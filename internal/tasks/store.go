package tasks

import "context"

// Store persists task records scoped by owner.
//
// Implementations own their backend connection for the life of the
// process and must be safe for concurrent use by simultaneous requests.
// Connect must succeed before any other operation is invoked; the store
// signals failure instead of retrying internally so retry policy stays
// with the caller.
type Store interface {
	// Connect establishes the backend connection. Idempotent.
	Connect(ctx context.Context) error

	// CreateTask validates content, assigns an ID and creation time,
	// and atomically appends the record to the owner's collection.
	//
	// Errors: ErrEmptyContent, ErrContentTooLong, ErrUnavailable.
	CreateTask(ctx context.Context, owner, content string) (*Task, error)

	// ListTasks returns the owner's full collection in creation order.
	// An owner with no tasks yields an empty slice, not an error.
	ListTasks(ctx context.Context, owner string) ([]Task, error)

	// Close releases the backend connection.
	Close(ctx context.Context) error
}

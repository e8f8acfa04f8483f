package interfaces

import "context"

// Database groups the stores of one backend and owns their connections.
type Database interface {
	Posts() PostStore
	Messages() MessageStore
	Profiles() ProfileStore

	// Ping reports whether the backend can serve requests.
	Ping(ctx context.Context) error
	Close() error
	Backend() string
}

// Package memory is the in-process storage backend used in development and
// tests. Records are deep-copied on the way in and out.
package memory

import (
	"context"
	"sync"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
)

// Database implements interfaces.Database with plain maps.
type Database struct {
	mu     sync.RWMutex
	closed bool
	seq    int64

	posts    map[string]postRecord
	messages map[string]messageRecord
	profiles map[string]*profileRecord
}

var _ interfaces.Database = (*Database)(nil)

func NewDatabase() *Database {
	return &Database{
		posts:    make(map[string]postRecord),
		messages: make(map[string]messageRecord),
		profiles: make(map[string]*profileRecord),
	}
}

func (db *Database) Posts() interfaces.PostStore       { return &PostStore{db: db} }
func (db *Database) Messages() interfaces.MessageStore { return &MessageStore{db: db} }
func (db *Database) Profiles() interfaces.ProfileStore { return &ProfileStore{db: db} }

func (db *Database) Backend() string { return "memory" }

func (db *Database) Ping(ctx context.Context) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return &interfaces.Error{Kind: interfaces.KindUnknown, Op: "ping", Message: "database is closed"}
	}
	return nil
}

func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	return nil
}

// nextSeq orders records inserted within the same instant. Caller holds mu.
func (db *Database) nextSeq() int64 {
	db.seq++
	return db.seq
}

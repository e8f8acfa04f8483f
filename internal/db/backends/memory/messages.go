package memory

import (
	"context"
	"sort"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/google/uuid"
)

type messageRecord struct {
	msg domain.Message
	seq int64
}

// MessageStore implements interfaces.MessageStore.
type MessageStore struct {
	db *Database
}

func (s *MessageStore) Insert(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	m := *msg
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	s.db.messages[m.ID] = messageRecord{msg: m, seq: s.db.nextSeq()}
	return &m, nil
}

func (s *MessageStore) List(ctx context.Context) ([]*domain.Message, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	records := make([]messageRecord, 0, len(s.db.messages))
	for _, rec := range s.db.messages {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.msg.CreatedAt.Equal(b.msg.CreatedAt) {
			return a.msg.CreatedAt.After(b.msg.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]*domain.Message, 0, len(records))
	for _, rec := range records {
		m := rec.msg
		out = append(out, &m)
	}
	return out, nil
}

func (s *MessageStore) ToggleRead(ctx context.Context, id string) (*domain.Message, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.messages[id]
	if !ok {
		return nil, interfaces.NewError(interfaces.KindNotFound, "toggle message")
	}
	rec.msg.IsRead = !rec.msg.IsRead
	s.db.messages[id] = rec

	m := rec.msg
	return &m, nil
}

func (s *MessageStore) Count(ctx context.Context, unreadOnly bool) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var n int64
	for _, rec := range s.db.messages {
		if unreadOnly && rec.msg.IsRead {
			continue
		}
		n++
	}
	return n, nil
}

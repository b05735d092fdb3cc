package memory

import (
	"context"
	"strconv"
	"sync"

	"uppf-claims/internal/eventing"
)

type outboxEntry struct {
	record eventing.OutboxRecord
	status string
}

// OutboxStore is an in-memory eventing.OutboxStore.
type OutboxStore struct {
	mu      sync.Mutex
	seq     int
	entries []*outboxEntry
}

// NewOutboxStore constructs an empty store.
func NewOutboxStore() *OutboxStore {
	return &OutboxStore{}
}

// Insert appends an envelope as pending.
func (s *OutboxStore) Insert(_ context.Context, env eventing.Envelope) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := strconv.Itoa(s.seq)
	s.entries = append(s.entries, &outboxEntry{
		record: eventing.OutboxRecord{ID: id, Envelope: env},
		status: "pending",
	})
	return id, nil
}

// ListPending returns pending records in insertion order.
func (s *OutboxStore) ListPending(_ context.Context, limit int) ([]eventing.OutboxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []eventing.OutboxRecord
	for _, e := range s.entries {
		if e.status != "pending" {
			continue
		}
		out = append(out, e.record)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkSent marks a record as sent.
func (s *OutboxStore) MarkSent(_ context.Context, id string) error {
	s.setStatus(id, "sent")
	return nil
}

// MarkFailed marks a record as failed.
func (s *OutboxStore) MarkFailed(_ context.Context, id string) error {
	s.setStatus(id, "failed")
	return nil
}

// Statuses returns the status of every record by id.
func (s *OutboxStore) Statuses() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.entries))
	for _, e := range s.entries {
		out[e.record.ID] = e.status
	}
	return out
}

func (s *OutboxStore) setStatus(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.record.ID == id {
			e.status = status
			return
		}
	}
}

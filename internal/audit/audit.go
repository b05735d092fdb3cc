package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"uppf-claims/internal/eventing"
	"uppf-claims/internal/platform/logger"
)

// Entry is one record of the audit trail. Entries are never updated.
type Entry struct {
	ID            string          `json:"id"`
	EventID       string          `json:"event_id"`
	Action        string          `json:"action"`
	ResourceID    string          `json:"resource_id"`
	CorrelationID string          `json:"correlation_id"`
	Metadata      json.RawMessage `json:"metadata"`
	PayloadDigest string          `json:"payload_digest"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Logger writes audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewID generates an audit id.
func NewID() string {
	return "audit-" + uuid.NewString()
}

// DigestJSON computes a SHA256 hex digest for metadata payloads.
func DigestJSON(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FromEnvelope builds the entry recording an event envelope.
func FromEnvelope(env eventing.Envelope) Entry {
	return Entry{
		ID:            NewID(),
		EventID:       env.EventID,
		Action:        env.EventType,
		ResourceID:    env.AggregateID,
		CorrelationID: env.CorrelationID,
		Metadata:      env.Payload,
		PayloadDigest: DigestJSON(env.Payload),
		OccurredAt:    env.OccurredAt,
	}
}

// Subscriber registers event handlers.
type Subscriber interface {
	Subscribe(eventType string, handler eventing.Handler)
}

// Recorder writes an audit entry for every event it handles.
type Recorder struct {
	entries Logger
	log     *logger.Logger
	now     func() time.Time
}

// NewRecorder constructs a recorder writing to entries.
func NewRecorder(entries Logger, log *logger.Logger) (*Recorder, error) {
	if entries == nil {
		return nil, errors.New("audit: nil logger")
	}
	return &Recorder{entries: entries, log: logger.OrNop(log), now: time.Now}, nil
}

// Subscribe registers the recorder on bus for each event type.
func (r *Recorder) Subscribe(bus Subscriber, eventTypes ...string) {
	for _, t := range eventTypes {
		bus.Subscribe(t, r.Handle)
	}
}

// Handle records event. A relayed event keeps the envelope it was stored
// with; a direct publish gets a fresh one.
func (r *Recorder) Handle(ctx context.Context, event any) error {
	env, ok := eventing.EnvelopeFromContext(ctx)
	if !ok {
		var err error
		env, err = eventing.BuildEnvelope(event, eventing.MetaFromContext(ctx))
		if err != nil {
			return err
		}
	}
	entry := FromEnvelope(env)
	entry.CreatedAt = r.now().UTC()
	if err := r.entries.Log(ctx, entry); err != nil {
		r.log.Error("audit write failed", "event_type", env.EventType, "event_id", env.EventID, "error", err)
		return err
	}
	return nil
}

// MemoryLog keeps entries in memory.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryLog constructs an empty log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Log appends an entry. An event is recorded at most once.
func (m *MemoryLog) Log(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if entry.EventID != "" && e.EventID == entry.EventID {
			return nil
		}
	}
	m.entries = append(m.entries, entry)
	return nil
}

// Entries returns the entries in insertion order.
func (m *MemoryLog) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry(nil), m.entries...)
}

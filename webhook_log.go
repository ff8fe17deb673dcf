package commerce

import (
	"sync"
	"time"
)

// webhookLogCapacity bounds the in-memory diagnostics ring. It is a debugging
// aid, not part of any correctness path.
const webhookLogCapacity = 10

type WebhookRecord struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	ReceivedAt time.Time `json:"received_at"`
	Handled    bool      `json:"handled"`
	Error      string    `json:"error,omitempty"`
}

// WebhookLog keeps the last few webhook deliveries for the admin diagnostics
// endpoint, evicting the oldest once full.
type WebhookLog struct {
	mu       sync.Mutex
	records  []WebhookRecord
	capacity int
}

func NewWebhookLog(capacity int) *WebhookLog {
	return &WebhookLog{capacity: capacity}
}

func (l *WebhookLog) Record(rec WebhookRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, rec)
	if len(l.records) > l.capacity {
		l.records = l.records[len(l.records)-l.capacity:]
	}
}

// SetOutcome marks a recorded delivery as processed, keeping the error text
// when processing failed.
func (l *WebhookLog) SetOutcome(eventID string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.records {
		if l.records[i].EventID == eventID {
			l.records[i].Handled = err == nil
			if err != nil {
				l.records[i].Error = err.Error()
			}
			return
		}
	}
}

// Recent returns a copy, newest last.
func (l *WebhookLog) Recent() []WebhookRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]WebhookRecord, len(l.records))
	copy(out, l.records)
	return out
}

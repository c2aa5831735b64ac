package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ActivityService records activity in the ledger and announces it on the bus.
type ActivityService struct {
	ledger Ledger
	bus    *ActivityBus
	now    func() time.Time
}

// NewActivityService creates an activity service.
func NewActivityService(ledger Ledger, bus *ActivityBus) *ActivityService {
	return &ActivityService{ledger: ledger, bus: bus, now: time.Now}
}

// Bus returns the bus activity is published on.
func (s *ActivityService) Bus() *ActivityBus {
	return s.bus
}

// Record stores an activity row. err, when set, marks the row as failed and
// becomes its message. Ledger failures are logged and never surface to the
// caller: the user's request has already been answered by the backend.
func (s *ActivityService) Record(ctx context.Context, kind, subject, message string, err error) Activity {
	a := Activity{
		ID:        uuid.NewString(),
		Kind:      kind,
		Subject:   subject,
		Outcome:   OutcomeSuccess,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err != nil {
		a.Outcome = OutcomeError
		a.Message = err.Error()
	}

	// Detached so a client hanging up mid-request still leaves a row.
	if lerr := s.ledger.Record(context.WithoutCancel(ctx), a); lerr != nil {
		slog.Error("record activity", "kind", kind, "subject", subject, "err", lerr)
	}
	s.bus.Publish(a)
	return a
}

// Recent returns the newest rows first.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]Activity, error) {
	return s.ledger.Recent(ctx, limit)
}

// MemoryLedger keeps the newest rows in memory. Used when no database is
// configured.
type MemoryLedger struct {
	mu   sync.Mutex
	rows []Activity
	max  int
}

// NewMemoryLedger creates a ledger holding at most max rows.
func NewMemoryLedger(max int) *MemoryLedger {
	return &MemoryLedger{max: max}
}

// Record appends a row, dropping the oldest one when full.
func (l *MemoryLedger) Record(_ context.Context, a Activity) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rows = append(l.rows, a)
	if l.max > 0 && len(l.rows) > l.max {
		l.rows = l.rows[len(l.rows)-l.max:]
	}
	return nil
}

// Recent returns up to limit rows, newest first.
func (l *MemoryLedger) Recent(_ context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		return []Activity{}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Activity, 0, min(limit, len(l.rows)))
	for i := len(l.rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.rows[i])
	}
	return out, nil
}

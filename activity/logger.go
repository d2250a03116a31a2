package activity

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rustyeddy/termwatch/metrics"
)

// Notifier delivers a short human-readable line to an external channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Logger fans each event out to the relational store, the document store,
// and the notification channel, in that order. The two stores are the
// durable source of truth; notification delivery is best effort and a
// failure there is reported to the process log only.
type Logger struct {
	db       *SQLiteStore
	doc      *DocumentStore
	notifier Notifier // nil disables notifications

	now func() time.Time
}

func NewLogger(db *SQLiteStore, doc *DocumentStore, notifier Notifier) *Logger {
	return &Logger{db: db, doc: doc, notifier: notifier, now: time.Now}
}

// Log timestamps the event and appends one record to both stores before
// attempting notification. By the time the notifier runs, both stores
// have committed the record, so a delivery failure can never lose it.
// A relational failure aborts the call; a document failure is returned
// after the relational row has already been committed.
func (l *Logger) Log(ctx context.Context, typ Type, description string, raw map[string]any) error {
	rec := Record{
		Timestamp:   l.now().UTC(),
		Type:        typ,
		Description: description,
		Raw:         raw,
	}

	if err := l.db.Append(rec); err != nil {
		return fmt.Errorf("append relational record: %w", err)
	}
	if err := l.doc.Append(rec); err != nil {
		return fmt.Errorf("append document record: %w", err)
	}
	metrics.EventsLogged.WithLabelValues(string(typ)).Inc()

	if l.notifier == nil {
		return nil
	}
	if err := l.notifier.Send(ctx, fmt.Sprintf("[%s] %s", typ, description)); err != nil {
		metrics.NotifyFailures.Inc()
		log.Printf("activity: notification failed: %v", err)
	}
	return nil
}

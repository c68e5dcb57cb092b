package simplecms

import (
	"context"
	"log/slog"
)

// NoopEventSink discards all events. Useful for tests and library embedding.
type NoopEventSink struct{}

// NewNoopEventSink creates an event sink that does nothing
func NewNoopEventSink() *NoopEventSink {
	return &NoopEventSink{}
}

func (s *NoopEventSink) RecordCreated(ctx context.Context, record *Record) error {
	return nil
}

func (s *NoopEventSink) RecordUpdated(ctx context.Context, record *Record) error {
	return nil
}

func (s *NoopEventSink) RecordDeleted(ctx context.Context, kind Kind, id int64) error {
	return nil
}

// LogEventSink writes record lifecycle events to a structured logger.
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates an event sink backed by logger. A nil logger uses
// the default slog logger.
func NewLogEventSink(logger *slog.Logger) *LogEventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger}
}

func (s *LogEventSink) RecordCreated(ctx context.Context, record *Record) error {
	s.logger.InfoContext(ctx, "record created", "kind", record.Kind, "id", record.ID, "slug", record.Slug)
	return nil
}

func (s *LogEventSink) RecordUpdated(ctx context.Context, record *Record) error {
	s.logger.InfoContext(ctx, "record updated", "kind", record.Kind, "id", record.ID, "slug", record.Slug)
	return nil
}

func (s *LogEventSink) RecordDeleted(ctx context.Context, kind Kind, id int64) error {
	s.logger.InfoContext(ctx, "record deleted", "kind", kind, "id", id)
	return nil
}

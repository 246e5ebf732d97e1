package analytics

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes events as structured logs. It is the default sink when
// no durable analytics backend is configured.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs the event with structured fields.
func (s *LogSink) Consume(_ context.Context, evt Event) error {
	fields := []zap.Field{
		zap.String("event", evt.Name),
		zap.Time("ts", evt.TS),
		zap.String("path", evt.Path),
		zap.String("referrer", evt.Referrer),
		zap.String("user_agent", evt.UserAgent),
		zap.String("country", evt.Country),
		zap.String("city", evt.City),
		zap.String("platform", evt.Platform),
	}
	if len(evt.Fields) > 0 {
		fields = append(fields, zap.Any("fields", evt.Fields))
	}
	s.logger.Info("analytics event", fields...)
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}

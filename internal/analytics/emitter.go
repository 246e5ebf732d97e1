package analytics

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/silkyrich/dexguide-edge/internal/agent"
)

// Sink consumes analytics events. Implementations must be safe for
// concurrent calls and should honor ctx deadlines.
type Sink interface {
	Consume(ctx context.Context, evt Event) error
	Close(ctx context.Context) error
}

// Emitter buffers events and forwards them to a sink off the request
// path. Emit never blocks and never surfaces errors to callers; when the
// buffer is full the event is dropped.
type Emitter struct {
	sink   Sink
	logger *zap.Logger
	events chan Event

	closeOnce sync.Once
	done      chan struct{}
}

// NewEmitter starts an Emitter draining into the sink. A nil sink
// degrades to a zap debug log only.
func NewEmitter(sink Sink, bufferSize int, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = NewLogSink(logger)
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}
	e := &Emitter{
		sink:   sink,
		logger: logger,
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}
	go e.drain()
	return e
}

// Emit records an event augmented with request metadata. It returns
// immediately; delivery is best-effort.
func (e *Emitter) Emit(r *http.Request, name string, fields map[string]any) {
	ua := r.Header.Get("User-Agent")
	evt := Event{
		Name:      name,
		TS:        time.Now().UTC(),
		Path:      r.URL.Path,
		Referrer:  r.Header.Get("Referer"),
		UserAgent: ua,
		Country:   r.Header.Get("CF-IPCountry"),
		City:      r.Header.Get("CF-IPCity"),
		Platform:  agent.Platform(ua),
		Fields:    fields,
	}
	select {
	case e.events <- evt:
	default:
		e.logger.Debug("analytics buffer full, event dropped", zap.String("event", name))
	}
}

func (e *Emitter) drain() {
	for evt := range e.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := e.sink.Consume(ctx, evt); err != nil {
			e.logger.Warn("analytics sink failed", zap.String("event", evt.Name), zap.Error(err))
		}
		cancel()
	}
	close(e.done)
}

// Close flushes buffered events and closes the sink.
func (e *Emitter) Close(ctx context.Context) error {
	e.closeOnce.Do(func() {
		close(e.events)
	})
	select {
	case <-e.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return e.sink.Close(ctx)
}

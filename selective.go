package mailbox

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Predicate selects messages for RecvSelectively. It must be
// pure and must not block: it may be called many times per receive.
type Predicate[T any] func(T) bool

// Option represents an optional setting, passed to
// NewSelectiveReceiver, which alters default behavior.
type Option func(*options)

type options struct {
	logger        zerolog.Logger
	meterProvider metric.MeterProvider
}

// WithLogger sets the logger used for debug events.
// By default nothing is logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMeterProvider sets the provider of the receiver's
// instruments. The global provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// SelectiveReceiver wraps the receiving half of a mailbox and adds
// selective receive on top of plain FIFO receive.
//
// Messages pulled from the mailbox while looking for a match are kept
// in an internal buffer, at most one mailbox capacity of them, and are
// handed out later in their arrival order. The receiver must be used
// by a single goroutine and must be the only reader of the wrapped
// mailbox. Dropping it discards whatever is buffered.
type SelectiveReceiver[T any] struct {
	inner   Receiver[T]
	buffer  buffer[T]
	logger  zerolog.Logger
	metrics *metrics
}

// NewSelectiveReceiver takes exclusive ownership of inner.
func NewSelectiveReceiver[T any](inner Receiver[T], opts ...Option) *SelectiveReceiver[T] {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	ms, err := newMetrics(o.meterProvider)
	if err != nil {
		o.logger.Warn().Err(err).Msg("selective receiver metrics disabled")
		ms = noopMetrics()
	}
	return &SelectiveReceiver[T]{
		inner:   inner,
		buffer:  newBuffer[T](inner.MaxCapacity()),
		logger:  o.logger,
		metrics: ms,
	}
}

// RecvSelectively returns the earliest-arrived message satisfying match.
//
// Buffered messages are searched first, without waiting. Otherwise
// messages are pulled from the mailbox one at a time; those that don't
// match are buffered. Once the buffer holds a full mailbox capacity of
// slots the search stops and RecvSelectively reports false with a nil
// error. A failed pull is returned as is and leaves the buffer intact,
// so nothing pulled earlier is ever lost.
func (s *SelectiveReceiver[T]) RecvSelectively(ctx context.Context, match Predicate[T]) (T, bool, error) {
	if message, ok := s.buffer.take(match); ok {
		s.metrics.buffer(-1)
		s.metrics.matched(fromBuffer)
		s.logger.Debug().Int("buffered", s.buffer.Live()).Msg("selective receive matched buffered message")
		return message, true, nil
	}
	for s.buffer.Len() < s.inner.MaxCapacity() {
		message, err := s.inner.Recv(ctx)
		if err != nil {
			s.logger.Debug().Err(err).Int("buffered", s.buffer.Live()).Msg("selective receive pull failed")
			var zero T
			return zero, false, err
		}
		if match(message) {
			s.metrics.matched(fromChannel)
			return message, true, nil
		}
		s.buffer.pushBack(message)
		s.metrics.buffer(1)
	}
	s.metrics.missed()
	s.logger.Debug().
		Int("slots", s.buffer.Len()).
		Int("buffered", s.buffer.Live()).
		Msg("selective receive reached capacity without a match")
	var zero T
	return zero, false, nil
}

// Recv returns the next undelivered message in arrival order,
// skipping messages already taken by RecvSelectively.
func (s *SelectiveReceiver[T]) Recv(ctx context.Context) (T, error) {
	for s.buffer.Len() > 0 {
		if message, live := s.buffer.popFront(); live {
			s.metrics.buffer(-1)
			return message, nil
		}
	}
	return s.inner.Recv(ctx)
}

// Len returns the number of messages queued in the wrapped mailbox.
// Messages held in the receiver's own buffer are not counted; see Buffered.
func (s *SelectiveReceiver[T]) Len() int {
	return s.inner.Len()
}

func (s *SelectiveReceiver[T]) MaxCapacity() int {
	return s.inner.MaxCapacity()
}

// Buffered returns the number of messages pulled from the mailbox
// but not yet delivered.
func (s *SelectiveReceiver[T]) Buffered() int {
	return s.buffer.Live()
}

var _ Receiver[any] = (*SelectiveReceiver[any])(nil)

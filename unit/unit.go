package unit

import (
	"context"

	"go.uber.org/atomic"

	"github.com/pkorotkov/mailbox"
)

// Unit is an addressable mailbox owned by one consumer.
// It keeps the registry the mailbox was opened at together with
// a selective receiver over it, which prevents accidental uses of
// a wrong registry for the mailbox.
//
// Send and TrySend may be called from any goroutine; the receive
// methods belong to the single owning consumer.
type Unit[T any] struct {
	registry *mailbox.Registry[T]
	id       mailbox.ID
	receiver *mailbox.SelectiveReceiver[T]
	stopped  *atomic.Bool
}

// New opens a mailbox with the given capacity within the registry
// and wraps its receiving half in a selective receiver.
func New[T any](registry *mailbox.Registry[T], capacity int, options ...mailbox.Option) (*Unit[T], error) {
	id, rx, err := registry.Open(capacity)
	if err != nil {
		return nil, err
	}
	return &Unit[T]{
		registry: registry,
		id:       id,
		receiver: mailbox.NewSelectiveReceiver[T](rx, options...),
		stopped:  atomic.NewBool(false),
	}, nil
}

// ID returns the unit's mailbox ID at the registry.
func (unit *Unit[T]) ID() mailbox.ID {
	return unit.id
}

// Send sends a message to the unit.
func (unit *Unit[T]) Send(ctx context.Context, message T) error {
	return unit.registry.Send(ctx, unit.id, message)
}

// TrySend sends a message to the unit without waiting for room.
func (unit *Unit[T]) TrySend(message T) error {
	return unit.registry.TrySend(unit.id, message)
}

// Recv receives the next message in arrival order.
func (unit *Unit[T]) Recv(ctx context.Context) (T, error) {
	return unit.receiver.Recv(ctx)
}

// RecvSelectively receives the earliest message satisfying match.
func (unit *Unit[T]) RecvSelectively(ctx context.Context, match mailbox.Predicate[T]) (T, bool, error) {
	return unit.receiver.RecvSelectively(ctx, match)
}

// Stop closes the unit's mailbox. Pending and buffered
// messages can still be received.
func (unit *Unit[T]) Stop() {
	unit.registry.Remove(unit.id)
	unit.stopped.Store(true)
}

// Stopped reports whether the unit has been stopped.
func (unit *Unit[T]) Stopped() bool {
	return unit.stopped.Load()
}

// MailboxSize returns the number of messages pending in the unit's mailbox.
func (unit *Unit[T]) MailboxSize() int {
	return unit.registry.MailboxSize(unit.id)
}

// Buffered returns the number of messages held by the unit's
// selective receiver that are not yet delivered.
func (unit *Unit[T]) Buffered() int {
	return unit.receiver.Buffered()
}

package mailbox

import (
	"context"
	"sync"
)

// Sender is the send capability of a bounded mailbox.
type Sender[T any] interface {
	// Send enqueues the message, waiting for room if the mailbox
	// is full. It returns ErrSendClosed if the mailbox has been closed.
	Send(ctx context.Context, message T) error
}

// Receiver is the receive capability of a bounded mailbox.
type Receiver[T any] interface {
	// Recv waits for and returns the next message in arrival order.
	// It returns ErrRecvClosed if the mailbox has been closed
	// and there are no remaining messages.
	Recv(ctx context.Context) (T, error)

	// Len returns the number of messages queued in the mailbox.
	Len() int

	// MaxCapacity returns the mailbox's fixed capacity.
	MaxCapacity() int
}

// IsEmpty reports whether the receiver has no queued messages.
func IsEmpty[T any](r Receiver[T]) bool {
	return r.Len() == 0
}

// mailbox is a bounded FIFO shared by a Tx and an Rx.
// The messages channel is never closed; closure is signalled
// through the closed channel so that blocked senders can't panic.
type mailbox[T any] struct {
	messages chan T
	closed   chan struct{}
	once     sync.Once

	mu       sync.RWMutex // guards isClosed and inflight.Add
	isClosed bool
	inflight sync.WaitGroup // senders blocked on a full mailbox
}

func newMailbox[T any](capacity int) *mailbox[T] {
	if capacity < 1 {
		panic("mailbox: capacity must be positive")
	}
	return &mailbox[T]{
		messages: make(chan T, capacity),
		closed:   make(chan struct{}),
	}
}

func (mb *mailbox[T]) put(ctx context.Context, message T) error {
	mb.mu.RLock()
	if mb.isClosed {
		mb.mu.RUnlock()
		return ErrSendClosed
	}
	select {
	case mb.messages <- message:
		mb.mu.RUnlock()
		return nil
	default:
	}
	mb.inflight.Add(1)
	mb.mu.RUnlock()
	defer mb.inflight.Done()

	select {
	case mb.messages <- message:
		return nil
	case <-mb.closed:
		return ErrSendClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *mailbox[T]) tryPut(message T) error {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	if mb.isClosed {
		return ErrSendClosed
	}
	select {
	case mb.messages <- message:
		return nil
	default:
		return ErrFullMailbox
	}
}

func (mb *mailbox[T]) get(ctx context.Context) (T, error) {
	var zero T
	select {
	case message := <-mb.messages:
		return message, nil
	default:
	}
	select {
	case message := <-mb.messages:
		return message, nil
	case <-mb.closed:
		// A sender racing with close may still have won its select.
		mb.inflight.Wait()
		select {
		case message := <-mb.messages:
			return message, nil
		default:
			return zero, ErrRecvClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (mb *mailbox[T]) close() {
	mb.once.Do(func() {
		mb.mu.Lock()
		mb.isClosed = true
		mb.mu.Unlock()
		close(mb.closed)
	})
}

func (mb *mailbox[T]) done() bool {
	select {
	case <-mb.closed:
		return true
	default:
		return false
	}
}

// Tx is the sending half of a mailbox created by New.
// It is safe for concurrent use by any number of producers.
type Tx[T any] struct {
	mb *mailbox[T]
}

// Send enqueues the message, waiting while the mailbox is full.
// It returns ErrSendClosed once the mailbox is closed, or the
// context error if ctx is done first.
func (tx *Tx[T]) Send(ctx context.Context, message T) error {
	return tx.mb.put(ctx, message)
}

// TrySend enqueues the message without waiting. It returns
// ErrFullMailbox if there is no room.
func (tx *Tx[T]) TrySend(message T) error {
	return tx.mb.tryPut(message)
}

// Close closes the mailbox. Messages already queued remain
// receivable. Calling Close more than once is a no-op.
func (tx *Tx[T]) Close() {
	tx.mb.close()
}

// Closed reports whether the mailbox has been closed from either side.
func (tx *Tx[T]) Closed() bool {
	return tx.mb.done()
}

// Len returns the number of queued messages.
func (tx *Tx[T]) Len() int {
	return len(tx.mb.messages)
}

// Rx is the receiving half of a mailbox created by New.
// Only one goroutine should receive from it.
type Rx[T any] struct {
	mb *mailbox[T]
}

func (rx *Rx[T]) Recv(ctx context.Context) (T, error) {
	return rx.mb.get(ctx)
}

func (rx *Rx[T]) Len() int {
	return len(rx.mb.messages)
}

func (rx *Rx[T]) MaxCapacity() int {
	return cap(rx.mb.messages)
}

// Close stops the mailbox from accepting new messages
// while keeping the queued ones receivable.
func (rx *Rx[T]) Close() {
	rx.mb.close()
}

// New creates a bounded mailbox holding at most capacity
// messages and returns its sending and receiving halves.
// It panics if capacity is not positive.
func New[T any](capacity int) (*Tx[T], *Rx[T]) {
	mb := newMailbox[T](capacity)
	return &Tx[T]{mb: mb}, &Rx[T]{mb: mb}
}

var (
	_ Sender[any]   = (*Tx[any])(nil)
	_ Receiver[any] = (*Rx[any])(nil)
)

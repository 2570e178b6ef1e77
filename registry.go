package mailbox

import (
	"context"
	"sync"
)

const defaultRequestLaneCapacity = 1000

type (
	// ID is a unique identifier associated with
	// each mailbox opened at a registry.
	ID uint64

	// Interceptor is a hijacking function to inspect every
	// message routed through a registry before it is delivered.
	Interceptor[T any] func(ID, T)
)

type (
	openRequest[T any] struct {
		mb *mailbox[T]
		id chan ID
	}

	removeRequest struct {
		id   ID
		done chan struct{}
	}

	sendRequest[T any] struct {
		id      ID
		message T
		reply   chan sendReply[T]
	}

	sendReply[T any] struct {
		mb  *mailbox[T]
		err error
	}

	sizeRequest struct {
		id   ID
		size chan int
	}
)

// RegistryOption represents an optional setting, passed to
// NewRegistry, which alters default behavior.
type RegistryOption[T any] func(*Registry[T])

// WithRequestLaneCapacity sets the capacity of the registry's
// buffer that ingests all the incoming send requests.
func WithRequestLaneCapacity[T any](capacity int) RegistryOption[T] {
	return func(r *Registry[T]) {
		r.sendLane = make(chan *sendRequest[T], capacity)
	}
}

// WithInterceptor sets a function that observes every message
// accepted for routing, before it reaches its mailbox.
func WithInterceptor[T any](interceptor Interceptor[T]) RegistryOption[T] {
	return func(r *Registry[T]) {
		r.interceptor = interceptor
	}
}

// Registry keeps the sending halves of many mailboxes and routes
// messages to them by ID. All bookkeeping happens on a single
// manager goroutine; requests reach it through dedicated lanes.
type Registry[T any] struct {
	nextID      ID
	openLane    chan *openRequest[T]
	removeLane  chan *removeRequest
	sendLane    chan *sendRequest[T]
	idsLane     chan chan []ID
	sizeLane    chan *sizeRequest
	interceptor Interceptor[T]
	sendPool    sync.Pool

	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewRegistry creates a registry ready to open mailboxes.
func NewRegistry[T any](options ...RegistryOption[T]) *Registry[T] {
	r := &Registry[T]{
		nextID:     1,
		openLane:   make(chan *openRequest[T]),
		removeLane: make(chan *removeRequest),
		idsLane:    make(chan chan []ID),
		sizeLane:   make(chan *sizeRequest),
		quit:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	r.sendPool.New = func() interface{} {
		return &sendRequest[T]{reply: make(chan sendReply[T], 1)}
	}
	for _, option := range options {
		option(r)
	}
	if r.sendLane == nil {
		r.sendLane = make(chan *sendRequest[T], defaultRequestLaneCapacity)
	}
	go r.run()
	return r
}

func (r *Registry[T]) run() {
	defer close(r.stopped)
	mailboxes := make(map[ID]*mailbox[T])
	for {
		select {
		case or := <-r.openLane:
			id := r.nextID
			mailboxes[id] = or.mb
			r.nextID += 1
			or.id <- id
		case rr := <-r.removeLane:
			if mb, ok := mailboxes[rr.id]; ok {
				delete(mailboxes, rr.id)
				mb.close()
			}
			rr.done <- struct{}{}
		case sr := <-r.sendLane:
			mb, ok := mailboxes[sr.id]
			if !ok {
				sr.reply <- sendReply[T]{err: ErrMailboxNotFound}
				continue
			}
			if r.interceptor != nil {
				r.interceptor(sr.id, sr.message)
			}
			sr.reply <- sendReply[T]{mb: mb, err: mb.tryPut(sr.message)}
		case ids := <-r.idsLane:
			current := make([]ID, 0, len(mailboxes))
			for id := range mailboxes {
				current = append(current, id)
			}
			ids <- current
		case sr := <-r.sizeLane:
			var size int
			if mb, ok := mailboxes[sr.id]; ok {
				size = len(mb.messages)
			}
			sr.size <- size
		case <-r.quit:
			for _, mb := range mailboxes {
				mb.close()
			}
			return
		}
	}
}

func submit[Q any](ctx context.Context, quit <-chan struct{}, lane chan Q, request Q) error {
	select {
	case lane <- request:
		return nil
	case <-quit:
		return ErrRegistryClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// await waits for the manager's reply. Replies are buffered,
// so one sent right before the manager stopped is still seen.
func await[V any](stopped <-chan struct{}, reply chan V) (V, bool) {
	select {
	case v := <-reply:
		return v, true
	case <-stopped:
		select {
		case v := <-reply:
			return v, true
		default:
			var zero V
			return zero, false
		}
	}
}

// Open creates a mailbox with the given capacity and returns its
// ID along with the receiving half. The registry keeps the sending half.
func (r *Registry[T]) Open(capacity int) (ID, *Rx[T], error) {
	mb := newMailbox[T](capacity)
	or := &openRequest[T]{mb: mb, id: make(chan ID, 1)}
	if err := submit(context.Background(), r.quit, r.openLane, or); err != nil {
		return 0, nil, err
	}
	id, ok := await(r.stopped, or.id)
	if !ok {
		return 0, nil, ErrRegistryClosed
	}
	return id, &Rx[T]{mb: mb}, nil
}

// Send delivers the message to the mailbox with the given ID, waiting
// for room if it is full. If the mailbox is not found, it returns
// ErrMailboxNotFound.
func (r *Registry[T]) Send(ctx context.Context, id ID, message T) error {
	return r.send(ctx, id, message, true)
}

// TrySend is like Send but returns ErrFullMailbox instead of waiting.
func (r *Registry[T]) TrySend(id ID, message T) error {
	return r.send(context.Background(), id, message, false)
}

func (r *Registry[T]) send(ctx context.Context, id ID, message T, blocking bool) error {
	sr := r.sendPool.Get().(*sendRequest[T])
	sr.id = id
	sr.message = message
	if err := submit(ctx, r.quit, r.sendLane, sr); err != nil {
		r.release(sr)
		return err
	}
	reply, ok := await(r.stopped, sr.reply)
	if !ok {
		// The request may still sit in the lane; don't reuse it.
		return ErrRegistryClosed
	}
	r.release(sr)
	if reply.err == ErrFullMailbox && blocking {
		return reply.mb.put(ctx, message)
	}
	return reply.err
}

func (r *Registry[T]) release(sr *sendRequest[T]) {
	var zero T
	sr.message = zero
	r.sendPool.Put(sr)
}

// Remove closes the mailbox with the given ID and forgets it.
// Messages already queued stay receivable from its Rx.
func (r *Registry[T]) Remove(id ID) {
	rr := &removeRequest{id: id, done: make(chan struct{}, 1)}
	if submit(context.Background(), r.quit, r.removeLane, rr) != nil {
		return
	}
	await(r.stopped, rr.done)
}

// IDs returns the IDs of the mailboxes currently open at the registry.
func (r *Registry[T]) IDs() []ID {
	ids := make(chan []ID, 1)
	if submit(context.Background(), r.quit, r.idsLane, ids) != nil {
		return nil
	}
	current, _ := await(r.stopped, ids)
	return current
}

// MailboxSize returns the number of currently pending messages
// in the mailbox, or zero if there is no such mailbox.
func (r *Registry[T]) MailboxSize(id ID) int {
	sr := &sizeRequest{id: id, size: make(chan int, 1)}
	if submit(context.Background(), r.quit, r.sizeLane, sr) != nil {
		return 0
	}
	size, _ := await(r.stopped, sr.size)
	return size
}

// Close closes every open mailbox and stops the registry.
// Subsequent calls to the registry return ErrRegistryClosed.
func (r *Registry[T]) Close() {
	r.closeOnce.Do(func() {
		close(r.quit)
	})
	<-r.stopped
}

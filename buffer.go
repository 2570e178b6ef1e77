package mailbox

// slot holds a pulled message. A slot whose message has
// already been delivered stays in place as a tombstone.
type slot[T any] struct {
	message T
	live    bool
}

// buffer is a ring of slots in arrival order. Tombstones keep
// their position so that delivering from the middle never shifts
// the remaining slots.
type buffer[T any] struct {
	slots []slot[T]
	head  int
	size  int
	live  int
}

func newBuffer[T any](reserve int) buffer[T] {
	if reserve < 1 {
		reserve = 1
	}
	return buffer[T]{slots: make([]slot[T], reserve)}
}

// Len counts both live slots and tombstones.
func (b *buffer[T]) Len() int {
	return b.size
}

// Live counts slots still holding an undelivered message.
func (b *buffer[T]) Live() int {
	return b.live
}

func (b *buffer[T]) at(i int) *slot[T] {
	return &b.slots[(b.head+i)%len(b.slots)]
}

func (b *buffer[T]) pushBack(message T) {
	if b.size == len(b.slots) {
		b.grow()
	}
	*b.at(b.size) = slot[T]{message: message, live: true}
	b.size++
	b.live++
}

// popFront removes the oldest slot, returning whether it was live.
func (b *buffer[T]) popFront() (T, bool) {
	s := b.at(0)
	message, live := s.message, s.live
	*s = slot[T]{}
	b.head = (b.head + 1) % len(b.slots)
	b.size--
	if live {
		b.live--
	}
	return message, live
}

// take tombstones the oldest live slot satisfying match.
func (b *buffer[T]) take(match Predicate[T]) (T, bool) {
	var zero T
	if b.live == 0 {
		return zero, false
	}
	for i := 0; i < b.size; i++ {
		s := b.at(i)
		if s.live && match(s.message) {
			message := s.message
			*s = slot[T]{}
			b.live--
			return message, true
		}
	}
	return zero, false
}

func (b *buffer[T]) grow() {
	slots := make([]slot[T], 2*len(b.slots))
	for i := 0; i < b.size; i++ {
		slots[i] = *b.at(i)
	}
	b.slots = slots
	b.head = 0
}

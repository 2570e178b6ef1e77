package mailbox

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func drain(b *buffer[int]) []int {
	var live []int
	for b.Len() > 0 {
		if m, ok := b.popFront(); ok {
			live = append(live, m)
		}
	}
	return live
}

func TestBuffer(t *testing.T) {
	t.Run("wraps-and-grows", func(t *testing.T) {
		c := qt.New(t)
		b := newBuffer[int](3)
		b.pushBack(1)
		b.pushBack(2)
		b.pushBack(3)
		m, live := b.popFront()
		c.Assert(live, qt.IsTrue)
		c.Assert(m, qt.Equals, 1)

		b.pushBack(4)
		b.pushBack(5)
		c.Assert(b.Len(), qt.Equals, 4)
		c.Assert(b.Live(), qt.Equals, 4)
		c.Assert(drain(&b), qt.DeepEquals, []int{2, 3, 4, 5})
	})

	t.Run("take-leaves-tombstone", func(t *testing.T) {
		c := qt.New(t)
		b := newBuffer[int](4)
		for _, m := range []int{10, 20, 30, 40} {
			b.pushBack(m)
		}
		m, ok := b.take(func(x int) bool { return x > 15 })
		c.Assert(ok, qt.IsTrue)
		c.Assert(m, qt.Equals, 20)
		c.Assert(b.Len(), qt.Equals, 4)
		c.Assert(b.Live(), qt.Equals, 3)

		_, ok = b.take(func(x int) bool { return x == 20 })
		c.Assert(ok, qt.IsFalse)
		c.Assert(drain(&b), qt.DeepEquals, []int{10, 30, 40})
		c.Assert(b.Live(), qt.Equals, 0)
	})

	t.Run("take-skips-scan-without-live-slots", func(t *testing.T) {
		c := qt.New(t)
		b := newBuffer[int](0)
		b.pushBack(1)
		_, ok := b.take(func(int) bool { return true })
		c.Assert(ok, qt.IsTrue)
		_, ok = b.take(func(int) bool {
			c.Fatal("predicate called on tombstone")
			return true
		})
		c.Assert(ok, qt.IsFalse)
	})
}

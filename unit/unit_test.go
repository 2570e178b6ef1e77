package unit

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/pkorotkov/mailbox"
)

type event struct {
	kind string
	seq  int
}

func TestUnit(t *testing.T) {
	t.Run("selective-consumer", func(t *testing.T) {
		c := qt.New(t)
		registry := mailbox.NewRegistry[event]()
		defer registry.Close()
		u, err := New(registry, 8)
		c.Assert(err, qt.IsNil)
		c.Assert(registry.IDs(), qt.DeepEquals, []mailbox.ID{u.ID()})

		ctx := context.Background()
		c.Assert(u.Send(ctx, event{"tick", 1}), qt.IsNil)
		c.Assert(u.Send(ctx, event{"tick", 2}), qt.IsNil)
		c.Assert(u.TrySend(event{"reply", 3}), qt.IsNil)
		c.Assert(u.MailboxSize(), qt.Equals, 3)

		e, ok, err := u.RecvSelectively(ctx, func(e event) bool { return e.kind == "reply" })
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)
		c.Assert(e, qt.Equals, event{"reply", 3})
		c.Assert(u.MailboxSize(), qt.Equals, 0)
		c.Assert(u.Buffered(), qt.Equals, 2)

		e, err = u.Recv(ctx)
		c.Assert(err, qt.IsNil)
		c.Assert(e, qt.Equals, event{"tick", 1})
		c.Assert(u.Buffered(), qt.Equals, 1)
	})

	t.Run("stop", func(t *testing.T) {
		c := qt.New(t)
		registry := mailbox.NewRegistry[event]()
		defer registry.Close()
		u, err := New(registry, 2)
		c.Assert(err, qt.IsNil)
		c.Assert(u.Stopped(), qt.IsFalse)

		ctx := context.Background()
		c.Assert(u.Send(ctx, event{"tick", 1}), qt.IsNil)
		u.Stop()
		c.Assert(u.Stopped(), qt.IsTrue)
		c.Assert(u.Send(ctx, event{"tick", 2}), qt.ErrorIs, mailbox.ErrMailboxNotFound)

		e, err := u.Recv(ctx)
		c.Assert(err, qt.IsNil)
		c.Assert(e.seq, qt.Equals, 1)
		_, _, err = u.RecvSelectively(ctx, func(event) bool { return true })
		c.Assert(err, qt.ErrorIs, mailbox.ErrRecvClosed)
	})

	t.Run("closed-registry", func(t *testing.T) {
		c := qt.New(t)
		registry := mailbox.NewRegistry[event]()
		registry.Close()
		_, err := New(registry, 2)
		c.Assert(err, qt.ErrorIs, mailbox.ErrRegistryClosed)
	})
}

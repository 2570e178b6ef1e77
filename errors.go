package mailbox

type _Error string

func (e _Error) Error() string {
	return string(e)
}

const (
	// ErrSendClosed is returned by a send on a mailbox
	// that has been closed and will never deliver again.
	ErrSendClosed = _Error("send on closed mailbox")

	// ErrRecvClosed is returned by a receive when the mailbox
	// has been closed and there are no remaining messages.
	ErrRecvClosed = _Error("receive on closed and empty mailbox")

	ErrFullMailbox     = _Error("mailbox is full")
	ErrMailboxNotFound = _Error("mailbox not found")
	ErrRegistryClosed  = _Error("registry closed")
)

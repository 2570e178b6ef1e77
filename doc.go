// Package mailbox provides bounded single-consumer mailboxes with
// selective receive.
//
// A SelectiveReceiver wraps the receiving half of a mailbox and lets its
// owner take the earliest message matching a predicate while every
// skipped message stays available, in arrival order, to later plain
// receives. Skipped messages are parked in a buffer holding at most one
// mailbox capacity of them, so a selective receive that finds nothing
// within that window reports no match instead of buffering without bound.
//
// Mailboxes created with New, or opened at a Registry, satisfy the
// Sender and Receiver interfaces; any other bounded FIFO implementing
// Receiver can be wrapped as well.
package mailbox

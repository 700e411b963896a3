package queue

import "github.com/FaizAther/fifo/pkg/strfifo"

// StringFifo is the contract the self-test harness exercises. Both the
// ring-backed queue and the channel-backed reference satisfy it, so any
// scenario can be replayed against either and the outcomes compared.
type StringFifo interface {
	// Push appends a string. It returns false when the queue is full.
	Push(s string) bool

	// Pull removes and returns the oldest string.
	// It returns false when the queue is empty.
	Pull() (string, bool)

	// Len returns how many strings are currently queued.
	Len() int

	// Cap returns the fixed number of slots.
	Cap() int

	// Free returns how many more strings can be pushed before the queue is full.
	Free() int

	// Reset drops every queued string, returning to the empty state.
	Reset()
}

// Compile-time check that the core implementation satisfies the contract.
var _ StringFifo = (*strfifo.Fifo)(nil)

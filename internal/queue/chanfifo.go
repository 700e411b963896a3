package queue

// ChanFifo is a buffered-channel rendition of the bounded string queue,
// kept as a differential reference for the self-test harness. A Go channel
// of capacity zero is a synchronization primitive rather than a zero-slot
// buffer, but inside a select with a default case both send and receive
// fail immediately when no peer is waiting, which matches the permanently
// full-and-empty semantics of a zero-capacity queue.
type ChanFifo struct {
	ch chan string
}

// NewChan returns a channel-backed queue with the given number of slots.
// Negative capacities are clamped to zero; the ring implementation is the
// one that owes callers an error for that case.
func NewChan(capacity int) *ChanFifo {
	if capacity < 0 {
		capacity = 0
	}
	return &ChanFifo{ch: make(chan string, capacity)}
}

func (q *ChanFifo) Push(s string) bool {
	select {
	case q.ch <- s:
		return true
	default:
		return false
	}
}

func (q *ChanFifo) Pull() (string, bool) {
	select {
	case s := <-q.ch:
		return s, true
	default:
		return "", false
	}
}

func (q *ChanFifo) Len() int  { return len(q.ch) }
func (q *ChanFifo) Cap() int  { return cap(q.ch) }
func (q *ChanFifo) Free() int { return cap(q.ch) - len(q.ch) }

func (q *ChanFifo) Reset() {
	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}

var _ StringFifo = (*ChanFifo)(nil)

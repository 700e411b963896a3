// Package strfifo implements a fixed-capacity FIFO queue of strings backed
// by a pre-allocated ring of slots.
//
// The queue is single-producer/single-consumer and takes no locks: exactly
// one logical owner issues pushes and pulls. Callers that need concurrent
// access must layer their own synchronization on top.
package strfifo

import (
	"errors"
	"io"
)

// ErrNegativeCapacity is returned by New when the requested capacity is
// below zero. Capacity zero is legal: such a queue is permanently full and
// empty at the same time and accepts nothing.
var ErrNegativeCapacity = errors.New("strfifo: negative capacity")

// Fifo is a bounded string queue over a ring of capacity slots.
//
// Equal read and write indices mean the queue is either completely empty or
// completely full; the empty flag disambiguates the two, so no slot is
// sacrificed as a sentinel and the full capacity stays usable.
type Fifo struct {
	slots []string
	write int
	read  int
	empty bool
}

// New returns a queue with the given number of slots.
func New(capacity int) (*Fifo, error) {
	if capacity < 0 {
		return nil, ErrNegativeCapacity
	}
	return &Fifo{
		slots: make([]string, capacity),
		empty: true,
	}, nil
}

// Cap returns the number of slots.
func (f *Fifo) Cap() int { return len(f.slots) }

// Len returns how many strings are currently queued.
func (f *Fifo) Len() int {
	if f.empty {
		return 0
	}
	d := f.write - f.read
	if d <= 0 {
		// write has wrapped behind read, or the indices are equal with the
		// empty flag cleared, which means every slot is occupied.
		d += len(f.slots)
	}
	return d
}

// Free returns how many more strings can be pushed before the queue is full.
func (f *Fifo) Free() int { return len(f.slots) - f.Len() }

// Push appends s to the queue. It returns false and leaves the queue
// untouched when no slot is free, which is always the case for a
// zero-capacity queue. Go strings are immutable values, so storing s is
// already the copy-in the queue needs.
func (f *Fifo) Push(s string) bool {
	if f.Free() == 0 {
		return false
	}
	f.slots[f.write] = s
	f.write = (f.write + 1) % len(f.slots)
	f.empty = false
	return true
}

// Pull removes and returns the oldest queued string. It returns false
// without mutating anything when the queue holds nothing.
func (f *Fifo) Pull() (string, bool) {
	if f.Len() == 0 {
		return "", false
	}
	s := f.slots[f.read]
	f.slots[f.read] = "" // drop the reference so the string can be collected
	f.read = (f.read + 1) % len(f.slots)
	if f.read == f.write {
		f.empty = true
	}
	return s, true
}

// Reset drops every queued string and returns the queue to its initial
// empty state. Nothing previously queued stays reachable through the ring.
func (f *Fifo) Reset() {
	for i := range f.slots {
		f.slots[i] = ""
	}
	f.write = 0
	f.read = 0
	f.empty = true
}

// DrainTo pulls until the queue is empty, writing each string followed by a
// newline to w. It returns the number of strings emitted. On a write error
// the drain stops; the string that failed to emit has already left the queue.
func (f *Fifo) DrainTo(w io.Writer) (int, error) {
	n := 0
	for {
		s, ok := f.Pull()
		if !ok {
			return n, nil
		}
		if _, err := io.WriteString(w, s+"\n"); err != nil {
			return n, err
		}
		n++
	}
}

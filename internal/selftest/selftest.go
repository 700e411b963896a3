// Package selftest replays scripted push/pull scenarios against a bounded
// string queue and reports every step whose outcome differs from the
// script. The harness in cmd/selftest runs the builtin suite against both
// the ring-backed queue and the channel-backed reference, so a divergence
// between the two implementations shows up as a scenario failure.
package selftest

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/FaizAther/fifo/internal/queue"
)

// Failure describes one step whose outcome differed from the script.
type Failure struct {
	Step int
	Op   Op
	Msg  string
}

func (f Failure) String() string {
	return fmt.Sprintf("step %d (%s): %s", f.Step, f.Op, f.Msg)
}

// Result is the outcome of replaying one scenario.
type Result struct {
	Scenario string
	Steps    int
	Failures []Failure
	Drained  []string // every string emitted by drain steps, in order
}

// OK reports whether every step matched the script.
func (r Result) OK() bool { return len(r.Failures) == 0 }

func (r *Result) fail(step int, op Op, format string, args ...any) {
	r.Failures = append(r.Failures, Failure{Step: step, Op: op, Msg: fmt.Sprintf(format, args...)})
}

// drainer is satisfied by queues that can emit their contents directly;
// the ring implementation drains through its own DrainTo, everything else
// through a pull loop with the same emit format.
type drainer interface {
	DrainTo(io.Writer) (int, error)
}

func drainQueue(q queue.StringFifo, sink io.Writer) (int, error) {
	if d, ok := q.(drainer); ok {
		return d.DrainTo(sink)
	}
	n := 0
	for {
		s, ok := q.Pull()
		if !ok {
			return n, nil
		}
		if _, err := io.WriteString(sink, s+"\n"); err != nil {
			return n, err
		}
		n++
	}
}

// Run replays sc against q, writing drained strings to sink. The queue must
// be fresh: Run assumes it starts empty with capacity sc.Capacity. After
// every step the bookkeeping invariants are re-checked, so a queue whose
// occupancy drifts outside [0, capacity] fails the scenario even when the
// scripted outcomes happen to match.
func Run(q queue.StringFifo, sc Scenario, sink io.Writer) Result {
	res := Result{Scenario: sc.Name}
	for i, st := range sc.Steps {
		res.Steps++
		switch st.Op {
		case OpPush:
			if ok := q.Push(st.Value); ok != st.OK {
				res.fail(i, st.Op, "push %q returned %v, want %v", st.Value, ok, st.OK)
			}
		case OpPull:
			s, ok := q.Pull()
			if ok != st.OK {
				res.fail(i, st.Op, "pull returned ok=%v, want %v", ok, st.OK)
			} else if ok && s != st.Value {
				res.fail(i, st.Op, "pulled %q, want %q", s, st.Value)
			}
		case OpProbe:
			if got := q.Free(); got != st.Want {
				res.fail(i, st.Op, "free slots = %d, want %d", got, st.Want)
			}
		case OpDrain:
			var buf bytes.Buffer
			n, err := drainQueue(q, io.MultiWriter(&buf, sink))
			if err != nil {
				res.fail(i, st.Op, "drain: %v", err)
				break
			}
			if n != st.Want {
				res.fail(i, st.Op, "drained %d strings, want %d", n, st.Want)
			}
			if out := buf.String(); out != "" {
				res.Drained = append(res.Drained, strings.Split(strings.TrimSuffix(out, "\n"), "\n")...)
			}
			if q.Len() != 0 {
				res.fail(i, st.Op, "queue holds %d strings after drain", q.Len())
			}
		case OpReset:
			q.Reset()
			if q.Len() != 0 {
				res.fail(i, st.Op, "queue holds %d strings after reset", q.Len())
			}
		default:
			res.fail(i, st.Op, "unknown op")
		}

		if n, c := q.Len(), q.Cap(); n < 0 || n > c {
			res.fail(i, st.Op, "occupancy %d outside [0, %d]", n, c)
		} else if free := q.Free(); free != c-n {
			res.fail(i, st.Op, "free slots = %d, want %d", free, c-n)
		}
	}
	return res
}

// RunAll replays every scenario, each against a fresh queue produced by
// newQueue, and returns the per-scenario results.
func RunAll(newQueue func(capacity int) queue.StringFifo, scenarios []Scenario, sink io.Writer) []Result {
	results := make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		results = append(results, Run(newQueue(sc.Capacity), sc, sink))
	}
	return results
}

// SoakResult holds the throughput measurement of one soak run.
type SoakResult struct {
	Capacity int
	Pushed   int64
	Pulled   int64
	Elapsed  time.Duration
}

// OpsPerSecond returns the combined push+pull rate of the run.
func (s SoakResult) OpsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Pushed+s.Pulled) / s.Elapsed.Seconds()
}

// RunSoak cycles payload strings through the queue for roughly the given
// duration, alternating a burst of pushes until full with a burst of pulls
// until empty so the ring wraps continuously. The queue is left empty.
func RunSoak(q queue.StringFifo, d time.Duration, payload string) SoakResult {
	res := SoakResult{Capacity: q.Cap()}
	start := time.Now()
	for time.Since(start) < d {
		for q.Push(payload) {
			res.Pushed++
		}
		for {
			if _, ok := q.Pull(); !ok {
				break
			}
			res.Pulled++
		}
	}
	res.Elapsed = time.Since(start)
	return res
}

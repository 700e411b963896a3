package selftest

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Op enumerates the scripted operations a scenario step can perform.
type Op string

const (
	OpPush  Op = "push"  // push Value, expect OK
	OpPull  Op = "pull"  // pull, expect OK and (on success) Value
	OpProbe Op = "probe" // expect Free() == Want
	OpDrain Op = "drain" // drain to the sink, expect Want strings emitted
	OpReset Op = "reset" // reset, expect the queue to end up empty
)

// Step is one scripted operation together with its expected outcome.
type Step struct {
	Op    Op     `yaml:"op"`
	Value string `yaml:"value,omitempty"`
	OK    bool   `yaml:"ok,omitempty"`
	Want  int    `yaml:"want,omitempty"`
}

// Scenario is a named script replayed against a fresh queue of the given
// capacity.
type Scenario struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
	Steps    []Step `yaml:"steps"`
}

// Load reads a YAML scenario list. Unknown operations are rejected here so
// a typo in a scenario file fails before any queue is touched.
func Load(r io.Reader) ([]Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var scenarios []Scenario
	if err := dec.Decode(&scenarios); err != nil {
		return nil, fmt.Errorf("selftest: decoding scenarios: %w", err)
	}
	for _, sc := range scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("selftest: scenario without a name")
		}
		if sc.Capacity < 0 {
			return nil, fmt.Errorf("selftest: scenario %q: negative capacity %d", sc.Name, sc.Capacity)
		}
		for i, st := range sc.Steps {
			switch st.Op {
			case OpPush, OpPull, OpProbe, OpDrain, OpReset:
			default:
				return nil, fmt.Errorf("selftest: scenario %q step %d: unknown op %q", sc.Name, i, st.Op)
			}
		}
	}
	return scenarios, nil
}

// pushOK and pullOK cut down on noise when scripting the builtin set.
func pushOK(v string) Step  { return Step{Op: OpPush, Value: v, OK: true} }
func pushful(v string) Step { return Step{Op: OpPush, Value: v, OK: false} }
func pullOK(v string) Step  { return Step{Op: OpPull, Value: v, OK: true} }

var pullEmpty = Step{Op: OpPull, OK: false}

func probe(free int) Step { return Step{Op: OpProbe, Want: free} }
func drain(n int) Step    { return Step{Op: OpDrain, Want: n} }

var reset = Step{Op: OpReset}

// Builtin returns the canonical self-test suite: basic fill/drain scripts
// plus the boundary scenarios for full, empty, wrapped and zero-capacity
// queues.
func Builtin() []Scenario {
	return []Scenario{
		{
			Name:     "hello-world",
			Capacity: 4,
			Steps: []Step{
				pushOK("hello"),
				pushOK("world"),
				drain(2),
			},
		},
		{
			Name:     "fill-drain-refill",
			Capacity: 4,
			Steps: []Step{
				pushOK("elem1"), pushOK("elem2"), pushOK("elem3"), pushOK("elem4"),
				drain(4),
				pushOK("A"),
				drain(1),
				pushOK("X"), pushOK("Y"), pushOK("Z"), pushOK("T"),
				pushful("U"),
				drain(4),
			},
		},
		{
			Name:     "reset-while-occupied",
			Capacity: 4,
			Steps: []Step{
				pushOK("elem1"), pushOK("elem2"), pushOK("elem3"), pushOK("elem4"),
				probe(0),
				reset,
				probe(4),
				pullEmpty,
			},
		},
		{
			Name:     "interleaved-push-pull",
			Capacity: 4,
			Steps: []Step{
				pushOK("elem1"),
				pushOK("elem2"),
				pullOK("elem1"),
				pushOK("elem3"),
				pushOK("elem4"),
				pullOK("elem2"),
				pullOK("elem3"),
				pullOK("elem4"),
				pullEmpty,
			},
		},
		{
			Name:     "overflow-preserves-contents",
			Capacity: 4,
			Steps: []Step{
				pushOK("e1"), pushOK("e2"), pushOK("e3"), pushOK("e4"),
				drain(4),
				pushOK("f1"), pushOK("f2"), pushOK("f3"), pushOK("f4"),
				pushful("f5"),
				drain(4),
			},
		},
		{
			Name:     "zero-capacity",
			Capacity: 0,
			Steps: []Step{
				probe(0),
				pushful("a"),
				pullEmpty,
				probe(0),
				drain(0),
			},
		},
		{
			Name:     "two-slot-wrap",
			Capacity: 2,
			Steps: []Step{
				pushOK("a"), pushOK("a"),
				pushful("a"),
				pullOK("a"), pullOK("a"),
				pullEmpty,
				pushOK("b"),
				pullOK("b"),
				pullEmpty,
			},
		},
		{
			Name:     "single-slot",
			Capacity: 1,
			Steps: []Step{
				pushOK("a"),
				pushful("a"),
				pullOK("a"),
				pullEmpty,
				drain(0),
			},
		},
	}
}

package selftest_test

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FaizAther/fifo/internal/queue"
	"github.com/FaizAther/fifo/internal/selftest"
	"github.com/FaizAther/fifo/pkg/strfifo"
)

func newRing(t *testing.T, capacity int) queue.StringFifo {
	t.Helper()
	q, err := strfifo.New(capacity)
	require.NoError(t, err)
	return q
}

func TestBuiltinSuitePassesOnRingFifo(t *testing.T) {
	for _, sc := range selftest.Builtin() {
		t.Run(sc.Name, func(t *testing.T) {
			res := selftest.Run(newRing(t, sc.Capacity), sc, io.Discard)
			assert.True(t, res.OK(), "failures: %v", res.Failures)
			assert.Equal(t, len(sc.Steps), res.Steps)
		})
	}
}

func TestBuiltinSuitePassesOnChanFifo(t *testing.T) {
	for _, sc := range selftest.Builtin() {
		t.Run(sc.Name, func(t *testing.T) {
			res := selftest.Run(queue.NewChan(sc.Capacity), sc, io.Discard)
			assert.True(t, res.OK(), "failures: %v", res.Failures)
		})
	}
}

func TestRunRecordsDrainedStrings(t *testing.T) {
	sc := selftest.Scenario{
		Name:     "drain-capture",
		Capacity: 4,
		Steps: []selftest.Step{
			{Op: selftest.OpPush, Value: "hello", OK: true},
			{Op: selftest.OpPush, Value: "world", OK: true},
			{Op: selftest.OpDrain, Want: 2},
		},
	}

	var sink strings.Builder
	res := selftest.Run(newRing(t, sc.Capacity), sc, &sink)
	require.True(t, res.OK(), "failures: %v", res.Failures)
	assert.Equal(t, []string{"hello", "world"}, res.Drained)
	assert.Equal(t, "hello\nworld\n", sink.String())
}

func TestRunReportsMismatches(t *testing.T) {
	sc := selftest.Scenario{
		Name:     "deliberately-wrong",
		Capacity: 1,
		Steps: []selftest.Step{
			{Op: selftest.OpPush, Value: "a", OK: true},
			{Op: selftest.OpPush, Value: "b", OK: true}, // queue is full: must fail
			{Op: selftest.OpPull, Value: "z", OK: true}, // pulls "a", not "z"
			{Op: selftest.OpPull, Value: "a", OK: true}, // queue is empty
			{Op: selftest.OpProbe, Want: 3},             // capacity is 1
		},
	}

	res := selftest.Run(newRing(t, sc.Capacity), sc, io.Discard)
	require.False(t, res.OK())
	assert.Len(t, res.Failures, 4)
	assert.Equal(t, 1, res.Failures[0].Step)
	assert.Equal(t, selftest.OpPush, res.Failures[0].Op)
}

func TestLoadScenarios(t *testing.T) {
	const doc = `
- name: from-yaml
  capacity: 2
  steps:
    - {op: push, value: a, ok: true}
    - {op: push, value: b, ok: true}
    - {op: push, value: c}
    - {op: probe, want: 0}
    - {op: drain, want: 2}
`
	scenarios, err := selftest.Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, scenarios, 1)

	sc := scenarios[0]
	assert.Equal(t, "from-yaml", sc.Name)
	assert.Equal(t, 2, sc.Capacity)
	require.Len(t, sc.Steps, 5)
	assert.False(t, sc.Steps[2].OK, "ok defaults to false")

	res := selftest.Run(newRing(t, sc.Capacity), sc, io.Discard)
	assert.True(t, res.OK(), "failures: %v", res.Failures)
}

func TestLoadRejectsBadScenarios(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"unknown op", "- name: x\n  capacity: 1\n  steps:\n    - {op: shove, value: a}\n"},
		{"missing name", "- capacity: 1\n  steps: []\n"},
		{"negative capacity", "- name: x\n  capacity: -2\n  steps: []\n"},
		{"unknown field", "- name: x\n  capacity: 1\n  retries: 3\n  steps: []\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := selftest.Load(strings.NewReader(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestRunAll(t *testing.T) {
	scenarios := selftest.Builtin()
	results := selftest.RunAll(func(capacity int) queue.StringFifo {
		return newRing(t, capacity)
	}, scenarios, io.Discard)

	require.Len(t, results, len(scenarios))
	for i, res := range results {
		assert.Equal(t, scenarios[i].Name, res.Scenario)
		assert.True(t, res.OK(), "scenario %q failures: %v", res.Scenario, res.Failures)
	}
}

func TestRunSoak(t *testing.T) {
	q := newRing(t, 16)
	res := selftest.RunSoak(q, 20*time.Millisecond, "x")

	assert.Equal(t, 16, res.Capacity)
	assert.Equal(t, res.Pushed, res.Pulled, "soak must leave the queue empty")
	assert.Equal(t, 0, q.Len())
	assert.Greater(t, res.Pushed, int64(0))
	assert.Greater(t, res.OpsPerSecond(), 0.0)
	assert.GreaterOrEqual(t, res.Elapsed, 20*time.Millisecond)
}

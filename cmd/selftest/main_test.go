package main

import (
	"io"
	"strings"
	"testing"

	"github.com/FaizAther/fifo/internal/selftest"
)

func TestBuiltinSuitePassesOnAllImplementations(t *testing.T) {
	records, failed := runScenarios(getImplementations(), selftest.Builtin(), io.Discard)
	if failed != 0 {
		t.Fatalf("expected 0 failed replays, got %d", failed)
	}
	want := len(selftest.Builtin()) * len(getImplementations())
	if len(records) != want {
		t.Fatalf("expected %d scenario records, got %d", want, len(records))
	}
	for _, rec := range records {
		if len(rec.Failures) != 0 {
			t.Errorf("scenario %q on %s failed: %v", rec.Scenario, rec.Implementation, rec.Failures)
		}
		if rec.Steps == 0 {
			t.Errorf("scenario %q on %s ran no steps", rec.Scenario, rec.Implementation)
		}
	}
}

func TestRunScenariosReportsFailures(t *testing.T) {
	broken := []selftest.Scenario{
		{
			Name:     "impossible",
			Capacity: 1,
			Steps: []selftest.Step{
				{Op: selftest.OpPush, Value: "a", OK: true},
				{Op: selftest.OpPush, Value: "b", OK: true}, // full, must fail
			},
		},
	}
	records, failed := runScenarios(getImplementations(), broken, io.Discard)
	if failed != len(getImplementations()) {
		t.Fatalf("expected every implementation to fail, got %d of %d", failed, len(getImplementations()))
	}
	for _, rec := range records {
		if len(rec.Failures) == 0 {
			t.Errorf("scenario %q on %s unexpectedly passed", rec.Scenario, rec.Implementation)
		}
	}
}

func TestGetImplementations(t *testing.T) {
	impls := getImplementations()
	if len(impls) != 2 {
		t.Fatalf("expected 2 implementations, got %d", len(impls))
	}
	for _, impl := range impls {
		q, err := impl.newQueue(4)
		if err != nil {
			t.Fatalf("%s: newQueue(4): %v", impl.name, err)
		}
		if q.Cap() != 4 {
			t.Errorf("%s: Cap() = %d, want 4", impl.name, q.Cap())
		}
		if _, err := impl.newQueue(0); err != nil {
			t.Errorf("%s: newQueue(0) must be legal: %v", impl.name, err)
		}
	}
}

func TestMarkdownForSession(t *testing.T) {
	session := FullReport{
		SessionTime: "2024-01-01T00:00:00Z",
		Scenarios: []ScenarioRecord{
			{Scenario: "a", Implementation: "RingFifo", Steps: 3},
			{Scenario: "b", Implementation: "RingFifo", Steps: 2, Failures: []string{"step 1 (push): boom"}},
		},
		Soaks: []SoakRecord{
			{Capacity: 4, Throughput: 100},
			{Capacity: 4, Throughput: 300},
			{Capacity: 16, Throughput: 500},
		},
	}

	out := markdownForSession(session)

	for _, want := range []string{
		"| Capacity | Iterations | Median Throughput (ops/sec) |",
		"200", // median of 100 and 300
		"500",
		"Scenarios: 1 passed, 1 failed.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestGatherSystemInfo(t *testing.T) {
	info := gatherSystemInfo()
	if info.NumCPU <= 0 {
		t.Errorf("NumCPU = %d, want > 0", info.NumCPU)
	}
	if info.GOARCH == "" {
		t.Error("GOARCH is empty")
	}
}

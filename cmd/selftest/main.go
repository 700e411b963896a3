// Command selftest exercises the bounded string FIFO through the builtin
// scenario suite and a timed soak across a ladder of capacities. Every
// scenario is replayed against the ring-backed queue and against a
// channel-backed reference implementation; any divergence fails the run.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/FaizAther/fifo/internal/queue"
	"github.com/FaizAther/fifo/internal/selftest"
	"github.com/FaizAther/fifo/pkg/strfifo"
	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SoakRecord holds results for one soak run.
type SoakRecord struct {
	Implementation string  `json:"implementation"`
	Capacity       int     `json:"capacity"`
	Pushed         int64   `json:"pushed"`
	Pulled         int64   `json:"pulled"`
	SoakDuration   string  `json:"soak_duration"`   // requested, e.g. "1s"
	ActualElapsed  string  `json:"actual_elapsed"`  // measured time
	Throughput     float64 `json:"throughput_ops_sec"`
	Timestamp      int64   `json:"timestamp"`
	GoVersion      string  `json:"go_version"`
}

// ScenarioRecord holds the outcome of one scenario replay.
type ScenarioRecord struct {
	Scenario       string   `json:"scenario"`
	Implementation string   `json:"implementation"`
	Steps          int      `json:"steps"`
	Failures       []string `json:"failures,omitempty"`
}

// SystemInfo holds system information.
type SystemInfo struct {
	NumCPU      int     `json:"num_cpu"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH      string  `json:"go_arch"`
	TotalMemory uint64  `json:"total_memory_bytes,omitempty"`
}

// FullReport represents a complete self-test session.
type FullReport struct {
	SessionTime string           `json:"session_time"`
	SystemInfo  SystemInfo       `json:"system_info"`
	Scenarios   []ScenarioRecord `json:"scenarios"`
	Soaks       []SoakRecord     `json:"soaks"`
}

// Implementation represents one queue implementation under test.
type Implementation struct {
	name        string
	description string
	pkgName     string
	features    []string
	newQueue    func(capacity int) (queue.StringFifo, error)
}

// getImplementations enumerates the queue implementations the harness runs.
// The ring-backed queue is the subject; the channel-backed queue is the
// reference it is compared against.
func getImplementations() []Implementation {
	return []Implementation{
		{
			name:        "RingFifo",
			pkgName:     "strfifo",
			description: "Ring buffer over a pre-allocated slot array with an explicit empty flag.",
			features:    []string{"SPSC", "FIFO", "Bounded"},
			newQueue: func(capacity int) (queue.StringFifo, error) {
				return strfifo.New(capacity)
			},
		},
		{
			name:        "ChanFifo",
			pkgName:     "queue",
			description: "Buffered-channel reference used to cross-check scenario outcomes.",
			features:    []string{"SPSC", "FIFO", "Bounded", "Reference"},
			newQueue: func(capacity int) (queue.StringFifo, error) {
				return queue.NewChan(capacity), nil
			},
		},
	}
}

// runScenarios replays every scenario against every implementation and
// prints one line per replay. It returns the records plus how many replays
// failed.
func runScenarios(impls []Implementation, scenarios []selftest.Scenario, drainSink io.Writer) ([]ScenarioRecord, int) {
	var records []ScenarioRecord
	failed := 0
	for _, impl := range impls {
		for _, sc := range scenarios {
			q, err := impl.newQueue(sc.Capacity)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating %s queue for scenario %q: %v\n", impl.name, sc.Name, err)
				failed++
				continue
			}
			res := selftest.Run(q, sc, drainSink)

			rec := ScenarioRecord{
				Scenario:       sc.Name,
				Implementation: impl.name,
				Steps:          res.Steps,
			}
			for _, f := range res.Failures {
				rec.Failures = append(rec.Failures, f.String())
			}
			records = append(records, rec)

			if res.OK() {
				fmt.Printf("    PASS %-28s %s (%d steps)\n", sc.Name, impl.name, res.Steps)
			} else {
				failed++
				fmt.Printf("    FAIL %-28s %s\n", sc.Name, impl.name)
				for _, f := range res.Failures {
					fmt.Printf("         %s\n", f)
				}
			}
		}
	}
	return records, failed
}

func main() {
	// Flags.
	soakIterations := flag.Int("iter", 5, "Number of soak iterations per capacity")
	soakDuration := flag.Duration("dur", time.Second, "Duration of each soak run")
	capacityFlag := flag.Int("capacity", 0, "If non-zero, soak only that capacity; if 0, soak the builtin capacity ladder")
	scenarioFile := flag.String("scenarios", "", "Path to a YAML file with extra scenarios to run")
	jsonExport := flag.Bool("json", false, "Export results as JSON to selftest-results.json")
	markdownTable := flag.Bool("markdown-table", false, "Output markdown table from selftest-results.json and exit")
	jsonFileForMarkdown := flag.String("jsonfile", "selftest-results.json", "Path to JSON file for markdown table")
	progressFlag := flag.Bool("progress", false, "Display a progress bar during soak runs")
	showDrained := flag.Bool("show-drained", false, "Echo every string the drain steps emit")
	flag.Parse()

	if *markdownTable {
		outputMarkdownTable(*jsonFileForMarkdown)
		return
	}

	scenarios := selftest.Builtin()
	if *scenarioFile != "" {
		f, err := os.Open(*scenarioFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening scenario file %q: %v\n", *scenarioFile, err)
			os.Exit(1)
		}
		extra, err := selftest.Load(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading scenario file %q: %v\n", *scenarioFile, err)
			os.Exit(1)
		}
		scenarios = append(scenarios, extra...)
	}

	drainSink := io.Discard
	if *showDrained {
		drainSink = os.Stdout
	}

	impls := getImplementations()

	fmt.Printf("=============================\n")
	fmt.Printf("Scenario suite (%d scenarios x %d implementations)\n", len(scenarios), len(impls))
	fmt.Printf("=============================\n")
	scenarioRecords, failed := runScenarios(impls, scenarios, drainSink)

	// Soak runs exercise wrap-around far past what the scripted scenarios
	// reach; the ring queue is the only subject here.
	capacities := []int{1, 4, 16, 64, 256, 1024, 4096}
	if *capacityFlag > 0 {
		capacities = []int{*capacityFlag}
	}

	fmt.Printf("\n=============================\n")
	fmt.Printf("Soak (%d capacities x %d iterations, %v each)\n", len(capacities), *soakIterations, *soakDuration)
	fmt.Printf("=============================\n")

	var bar *progressbar.ProgressBar
	if *progressFlag {
		bar = progressbar.NewOptions(len(capacities)*(*soakIterations),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("soak"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var soaks []SoakRecord
	for _, capacity := range capacities {
		for iteration := 1; iteration <= *soakIterations; iteration++ {
			runtime.GC()
			q, err := strfifo.New(capacity)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating soak queue: %v\n", err)
				os.Exit(1)
			}
			res := selftest.RunSoak(q, *soakDuration, "payload-string-for-soak")
			if q.Len() != 0 || res.Pushed != res.Pulled {
				fmt.Fprintf(os.Stderr, "Soak left the queue inconsistent: len=%d pushed=%d pulled=%d\n",
					q.Len(), res.Pushed, res.Pulled)
				failed++
			}
			soaks = append(soaks, SoakRecord{
				Implementation: "RingFifo",
				Capacity:       capacity,
				Pushed:         res.Pushed,
				Pulled:         res.Pulled,
				SoakDuration:   soakDuration.String(),
				ActualElapsed:  res.Elapsed.String(),
				Throughput:     res.OpsPerSecond(),
				Timestamp:      time.Now().Unix(),
				GoVersion:      runtime.Version(),
			})
			if bar != nil {
				bar.Add(1)
			} else {
				fmt.Printf("    capacity=%-5d iter=%d/%d => %d ops in %v (%.0f ops/s)\n",
					capacity, iteration, *soakIterations, res.Pushed+res.Pulled, res.Elapsed, res.OpsPerSecond())
			}
		}
	}
	if bar != nil {
		bar.Finish()
	}

	report := FullReport{
		SessionTime: time.Now().Format(time.RFC3339),
		SystemInfo:  gatherSystemInfo(),
		Scenarios:   scenarioRecords,
		Soaks:       soaks,
	}

	if *jsonExport {
		const filename = "selftest-results.json"
		var previous []FullReport
		if _, err := os.Stat(filename); err == nil {
			data, err := os.ReadFile(filename)
			if err == nil && len(data) > 0 {
				json.Unmarshal(data, &previous)
			}
		}
		updated := append(previous, report)
		data, err := json.MarshalIndent(updated, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error marshalling JSON:", err)
			os.Exit(1)
		}
		if err = os.WriteFile(filename, data, 0644); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing JSON file:", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote results to %s\n", filename)
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "\n%d check(s) failed\n", failed)
		os.Exit(1)
	}
	fmt.Println("\nAll checks passed")
}

// gatherSystemInfo collects basic CPU and memory details.
func gatherSystemInfo() SystemInfo {
	info := SystemInfo{
		NumCPU: runtime.NumCPU(),
		GOARCH: runtime.GOARCH,
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

// outputMarkdownTable loads the JSON file and outputs a Markdown table of
// soak throughput per capacity for the last session.
func outputMarkdownTable(jsonFile string) {
	data, err := os.ReadFile(jsonFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading JSON file %q: %v\n", jsonFile, err)
		os.Exit(1)
	}
	var sessions []FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshalling JSON: %v\n", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "No sessions found in JSON.")
		os.Exit(1)
	}
	fmt.Print(markdownForSession(sessions[len(sessions)-1]))
}

// markdownForSession renders one session as a Markdown summary.
func markdownForSession(session FullReport) string {
	// Median throughput per capacity.
	byCapacity := make(map[int][]float64)
	for _, s := range session.Soaks {
		byCapacity[s.Capacity] = append(byCapacity[s.Capacity], s.Throughput)
	}
	var capacities []int
	for c := range byCapacity {
		capacities = append(capacities, c)
	}
	sort.Ints(capacities)

	out := "## Last Session Soak Summary\n\n"
	out += "| Capacity | Iterations | Median Throughput (ops/sec) |\n"
	out += "|----------|------------|-----------------------------|\n"
	for _, c := range capacities {
		vals := byCapacity[c]
		sort.Float64s(vals)
		var med float64
		if n := len(vals); n%2 == 1 {
			med = vals[n/2]
		} else {
			med = 0.5 * (vals[n/2-1] + vals[n/2])
		}
		out += fmt.Sprintf("| %8d | %10d | %27.0f |\n", c, len(vals), med)
	}

	passed, failedCount := 0, 0
	for _, rec := range session.Scenarios {
		if len(rec.Failures) == 0 {
			passed++
		} else {
			failedCount++
		}
	}
	out += fmt.Sprintf("\nScenarios: %d passed, %d failed.\n", passed, failedCount)
	return out
}

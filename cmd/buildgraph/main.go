// Command buildgraph renders the soak results collected by cmd/selftest as
// a throughput-versus-capacity graph with min/median/max error bars.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// SoakRecord mirrors the soak schema written by cmd/selftest.
type SoakRecord struct {
	Implementation string  `json:"implementation"`
	Capacity       int     `json:"capacity"`
	Pushed         int64   `json:"pushed"`
	Pulled         int64   `json:"pulled"`
	SoakDuration   string  `json:"soak_duration"`
	ActualElapsed  string  `json:"actual_elapsed"`
	Throughput     float64 `json:"throughput_ops_sec"`
	Timestamp      int64   `json:"timestamp"`
	GoVersion      string  `json:"go_version"`
}

// FullReport represents a complete self-test session; only the soak part is
// used here.
type FullReport struct {
	SessionTime string          `json:"session_time"`
	Soaks       []SoakRecord    `json:"soaks"`
	Scenarios   json.RawMessage `json:"scenarios,omitempty"`
	SystemInfo  json.RawMessage `json:"system_info,omitempty"`
}

// capacityStats holds min, median and max throughput for one capacity.
type capacityStats struct {
	x      float64 // category index on the X axis
	orig   float64 // original capacity value
	min    float64
	median float64
	max    float64
}

// statsPoints implements XYer and YErrorer for capacityStats, so we can plot
// lines + error bars.
type statsPoints []capacityStats

func (s statsPoints) Len() int                { return len(s) }
func (s statsPoints) XY(i int) (x, y float64) { return s[i].x, s[i].median }
func (s statsPoints) YError(i int) (low, high float64) {
	low = s[i].median - s[i].min
	high = s[i].max - s[i].median
	return low, high
}

// categoryTicks implements a categorical X-axis: 0,1,2,... => capacity labels.
type categoryTicks struct {
	positions []float64
	labels    []string
}

func (ct categoryTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, pos := range ct.positions {
		if pos >= min && pos <= max {
			ticks = append(ticks, plot.Tick{Value: pos, Label: ct.labels[i]})
		}
	}
	return ticks
}

func main() {
	jsonFile := flag.String("jsonfile", "selftest-results.json", "Path to JSON file containing self-test sessions")
	output := flag.String("out", "soak_graph.png", "Output graph image filename")
	flag.Parse()

	data, err := os.ReadFile(*jsonFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading JSON file: %v\n", err)
		os.Exit(1)
	}

	var sessions []FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshalling JSON: %v\n", err)
		os.Exit(1)
	}

	// Group throughput samples by implementation -> capacity, across sessions.
	points := make(map[string]map[float64][]float64)
	for _, session := range sessions {
		for _, s := range session.Soaks {
			if s.Throughput <= 0 {
				continue
			}
			if _, ok := points[s.Implementation]; !ok {
				points[s.Implementation] = make(map[float64][]float64)
			}
			x := float64(s.Capacity)
			points[s.Implementation][x] = append(points[s.Implementation][x], s.Throughput)
		}
	}
	if len(points) == 0 {
		fmt.Fprintln(os.Stderr, "No soak records found in JSON.")
		os.Exit(1)
	}

	p := plot.New()
	p.Title.Text = "Soak Throughput (min / median / max) vs. Capacity"
	p.X.Label.Text = "Queue Capacity"
	p.Y.Label.Text = "Throughput (ops/sec)"

	// Dark theme.
	p.BackgroundColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	p.Title.TextStyle.Color = white
	p.X.Label.TextStyle.Color = white
	p.Y.Label.TextStyle.Color = white
	p.X.Color = white
	p.Y.Color = white
	p.X.Tick.Label.Color = white
	p.Y.Tick.Label.Color = white
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Color = white

	p.Add(plotter.NewGrid())

	// Build the union of capacities and map each to a category index so the
	// ladder (1, 4, 16, ...) spaces evenly instead of bunching at the origin.
	capacitySet := make(map[float64]struct{})
	for _, byCap := range points {
		for c := range byCap {
			capacitySet[c] = struct{}{}
		}
	}
	var capValues []float64
	for v := range capacitySet {
		capValues = append(capValues, v)
	}
	sort.Float64s(capValues)

	capMapping := make(map[float64]float64)
	var positions []float64
	var labels []string
	for i, v := range capValues {
		capMapping[v] = float64(i)
		positions = append(positions, float64(i))
		labels = append(labels, strconv.FormatFloat(v, 'f', -1, 64))
	}
	p.X.Tick.Marker = categoryTicks{positions: positions, labels: labels}

	var implNames []string
	for name := range points {
		implNames = append(implNames, name)
	}
	sort.Strings(implNames)

	colors := plotutil.SoftColors
	shapes := []draw.GlyphDrawer{
		draw.CircleGlyph{},
		draw.SquareGlyph{},
		draw.TriangleGlyph{},
	}

	for i, name := range implNames {
		stats := buildStats(points[name])
		for j := range stats {
			stats[j].x = capMapping[stats[j].orig]
		}
		sort.Slice(stats, func(a, b int) bool { return stats[a].x < stats[b].x })
		sp := statsPoints(stats)

		line, err := plotter.NewLine(sp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating line: %v\n", err)
			continue
		}
		line.Color = colors[i%len(colors)]

		scatter, err := plotter.NewScatter(sp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating scatter: %v\n", err)
			continue
		}
		scatter.GlyphStyle.Radius = vg.Points(5)
		scatter.Color = colors[i%len(colors)]
		scatter.Shape = shapes[i%len(shapes)]

		yErrBars, err := plotter.NewYErrorBars(sp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating error bars: %v\n", err)
			continue
		}
		yErrBars.Color = colors[i%len(colors)]

		p.Add(line, scatter, yErrBars)
		p.Legend.Add(name, line, scatter)
	}

	if err := p.Save(12*vg.Inch, 9*vg.Inch, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving plot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Graph saved to %s\n", *output)
}

// buildStats computes min, median and max throughput per capacity.
func buildStats(byCap map[float64][]float64) []capacityStats {
	var out []capacityStats
	for x, vals := range byCap {
		if len(vals) == 0 {
			continue
		}
		sort.Float64s(vals)
		out = append(out, capacityStats{
			orig:   x,
			min:    vals[0],
			median: median(vals),
			max:    vals[len(vals)-1],
		})
	}
	return out
}

func median(sorted []float64) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return 0.5 * (sorted[mid-1] + sorted[mid])
}

// Package metrics provides a lightweight, Prometheus-compatible metrics
// collector for the bot. It renders the text exposition format without
// pulling in prometheus/client_golang.
package metrics

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Collector is the global metrics collector.
var Collector = NewMetricsCollector()

// MetricsCollector aggregates counters, gauges and histograms.
type MetricsCollector struct {
	counters   sync.Map // key -> *Counter
	gauges     sync.Map // key -> *Gauge
	histograms sync.Map // key -> *Histogram
	startTime  time.Time
}

// NewMetricsCollector creates a new collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{startTime: time.Now()}
}

// Uptime returns how long the collector has been running.
func (c *MetricsCollector) Uptime() time.Duration {
	return time.Since(c.startTime)
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name   string
	help   string
	labels string
	value  atomic.Int64
}

// Inc increments the counter by 1.
func (c *Counter) Inc() { c.value.Add(1) }

// Value returns the current counter value.
func (c *Counter) Value() int64 { return c.value.Load() }

// Gauge is a value that can go up and down.
type Gauge struct {
	name   string
	help   string
	labels string
	value  atomic.Int64
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc() { g.value.Add(1) }

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() { g.value.Add(-1) }

// Value returns the current gauge value.
func (g *Gauge) Value() int64 { return g.value.Load() }

// Histogram tracks the distribution of values.
type Histogram struct {
	name    string
	help    string
	labels  string
	mu      sync.Mutex
	count   int64
	sum     float64
	buckets []histBucket
}

type histBucket struct {
	le    float64
	count int64
}

// Observe records a value in the histogram.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += v
	for i := range h.buckets {
		if v <= h.buckets[i].le {
			h.buckets[i].count++
		}
	}
}

// Count returns the number of observations.
func (h *Histogram) Count() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// --- Registration helpers ---

// Counter returns or creates a counter with the given name and label set.
func (c *MetricsCollector) Counter(name, help, labels string) *Counter {
	key := name + "{" + labels + "}"
	if v, ok := c.counters.Load(key); ok {
		return v.(*Counter)
	}
	ctr := &Counter{name: name, help: help, labels: labels}
	actual, _ := c.counters.LoadOrStore(key, ctr)
	return actual.(*Counter)
}

// Gauge returns or creates a gauge with the given name and label set.
func (c *MetricsCollector) Gauge(name, help, labels string) *Gauge {
	key := name + "{" + labels + "}"
	if v, ok := c.gauges.Load(key); ok {
		return v.(*Gauge)
	}
	g := &Gauge{name: name, help: help, labels: labels}
	actual, _ := c.gauges.LoadOrStore(key, g)
	return actual.(*Gauge)
}

// Histogram returns or creates a histogram with the given name and label set.
func (c *MetricsCollector) Histogram(name, help, labels string, buckets []float64) *Histogram {
	key := name + "{" + labels + "}"
	if v, ok := c.histograms.Load(key); ok {
		return v.(*Histogram)
	}
	sorted := append([]float64(nil), buckets...)
	sort.Float64s(sorted)
	hb := make([]histBucket, len(sorted))
	for i, b := range sorted {
		hb[i] = histBucket{le: b}
	}
	h := &Histogram{name: name, help: help, labels: labels, buckets: hb}
	actual, _ := c.histograms.LoadOrStore(key, h)
	return actual.(*Histogram)
}

// --- Prometheus text rendering ---

// Handler returns an http.HandlerFunc that renders metrics in Prometheus text format.
func (c *MetricsCollector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		fmt.Fprint(w, c.Render())
	}
}

// Render returns the current state in exposition format. Series of the same
// name are grouped under one HELP/TYPE header.
func (c *MetricsCollector) Render() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# HELP infobot_uptime_seconds Time since start in seconds\n")
	fmt.Fprintf(&sb, "# TYPE infobot_uptime_seconds gauge\n")
	fmt.Fprintf(&sb, "infobot_uptime_seconds %d\n\n", int64(c.Uptime().Seconds()))

	var counters []*Counter
	c.counters.Range(func(_, value any) bool {
		counters = append(counters, value.(*Counter))
		return true
	})
	sort.Slice(counters, func(i, j int) bool {
		if counters[i].name != counters[j].name {
			return counters[i].name < counters[j].name
		}
		return counters[i].labels < counters[j].labels
	})
	helpWritten := make(map[string]bool)
	for _, ctr := range counters {
		if !helpWritten[ctr.name] {
			fmt.Fprintf(&sb, "# HELP %s %s\n", ctr.name, ctr.help)
			fmt.Fprintf(&sb, "# TYPE %s counter\n", ctr.name)
			helpWritten[ctr.name] = true
		}
		writeSample(&sb, ctr.name, ctr.labels, fmt.Sprintf("%d", ctr.Value()))
	}

	var gauges []*Gauge
	c.gauges.Range(func(_, value any) bool {
		gauges = append(gauges, value.(*Gauge))
		return true
	})
	sort.Slice(gauges, func(i, j int) bool { return gauges[i].name+gauges[i].labels < gauges[j].name+gauges[j].labels })
	helpWritten = make(map[string]bool)
	for _, g := range gauges {
		if !helpWritten[g.name] {
			fmt.Fprintf(&sb, "# HELP %s %s\n", g.name, g.help)
			fmt.Fprintf(&sb, "# TYPE %s gauge\n", g.name)
			helpWritten[g.name] = true
		}
		writeSample(&sb, g.name, g.labels, fmt.Sprintf("%d", g.Value()))
	}

	var hists []*Histogram
	c.histograms.Range(func(_, value any) bool {
		hists = append(hists, value.(*Histogram))
		return true
	})
	sort.Slice(hists, func(i, j int) bool { return hists[i].name+hists[i].labels < hists[j].name+hists[j].labels })
	helpWritten = make(map[string]bool)
	for _, h := range hists {
		h.mu.Lock()
		if !helpWritten[h.name] {
			fmt.Fprintf(&sb, "# HELP %s %s\n", h.name, h.help)
			fmt.Fprintf(&sb, "# TYPE %s histogram\n", h.name)
			helpWritten[h.name] = true
		}
		prefix := h.name + "_bucket{"
		if h.labels != "" {
			prefix += h.labels + ","
		}
		for _, b := range h.buckets {
			le := fmt.Sprintf("%g", b.le)
			if math.IsInf(b.le, 1) {
				le = "+Inf"
			}
			fmt.Fprintf(&sb, "%sle=\"%s\"} %d\n", prefix, le, b.count)
		}
		fmt.Fprintf(&sb, "%sle=\"+Inf\"} %d\n", prefix, h.count)
		writeSample(&sb, h.name+"_count", h.labels, fmt.Sprintf("%d", h.count))
		writeSample(&sb, h.name+"_sum", h.labels, fmt.Sprintf("%f", h.sum))
		h.mu.Unlock()
	}

	return sb.String()
}

func writeSample(sb *strings.Builder, name, labels, value string) {
	if labels != "" {
		fmt.Fprintf(sb, "%s{%s} %s\n", name, labels, value)
		return
	}
	fmt.Fprintf(sb, "%s %s\n", name, value)
}

// --- Pre-defined metrics used across the application ---

var (
	UpdatesTotal  = Collector.Counter("infobot_updates_total", "Total webhook updates received", "")
	RepliesSent   = Collector.Counter("infobot_replies_sent_total", "Total replies delivered to Telegram", "")
	SendErrors    = Collector.Counter("infobot_send_errors_total", "Total failed sendMessage calls", "")
	InFlight      = Collector.Gauge("infobot_updates_in_flight", "Updates currently being handled", "")
	latencyBucket = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
)

// CommandHandled counts one dispatched update by command name.
func CommandHandled(command string) {
	Collector.Counter("infobot_commands_total", "Dispatched updates by command",
		fmt.Sprintf("command=%q", command)).Inc()
}

// UpstreamError counts a failed upstream call by source and error kind.
func UpstreamError(source, kind string) {
	Collector.Counter("infobot_upstream_errors_total", "Failed upstream API calls",
		fmt.Sprintf("source=%q,kind=%q", source, kind)).Inc()
}

// ObserveUpstream records the latency of one upstream call.
func ObserveUpstream(source string, d time.Duration) {
	Collector.Histogram("infobot_upstream_latency_seconds", "Upstream API latency in seconds",
		fmt.Sprintf("source=%q", source), latencyBucket).Observe(d.Seconds())
}

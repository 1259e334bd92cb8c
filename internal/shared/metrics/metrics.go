package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Gateway operations tracked by the counters below.
var operations = []string{"analysis", "prediction"}

type opCounters struct {
	started    atomic.Uint64
	succeeded  atomic.Uint64
	failed     atomic.Uint64
	canceled   atomic.Uint64
	superseded atomic.Uint64
	duration   *histogram
}

var (
	gatewayCalls = newOpCounters()

	candidatesLoaded atomic.Int64
)

func newOpCounters() map[string]*opCounters {
	out := make(map[string]*opCounters, len(operations))
	for _, op := range operations {
		out[op] = &opCounters{
			duration: newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000}),
		}
	}
	return out
}

func counters(op string) *opCounters {
	return gatewayCalls[op]
}

// IncGatewayStarted counts a gateway call issued for op.
func IncGatewayStarted(op string) {
	if c := counters(op); c != nil {
		c.started.Add(1)
	}
}

// ObserveGatewayFinished counts a call outcome and records its duration.
// Outcome is one of succeeded, failed, canceled.
func ObserveGatewayFinished(op, outcome string, d time.Duration) {
	c := counters(op)
	if c == nil {
		return
	}
	switch outcome {
	case "succeeded":
		c.succeeded.Add(1)
	case "canceled":
		c.canceled.Add(1)
	default:
		c.failed.Add(1)
	}
	ms := float64(d) / float64(time.Millisecond)
	if ms < 0 {
		ms = 0
	}
	c.duration.Observe(ms)
}

// IncGatewaySuperseded counts a pending call replaced by a newer one.
func IncGatewaySuperseded(op string) {
	if c := counters(op); c != nil {
		c.superseded.Add(1)
	}
}

// SetCandidatesLoaded records the size of the loaded pool.
func SetCandidatesLoaded(n int) {
	candidatesLoaded.Store(int64(n))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeGauge(&buf, "candidates_loaded", "Candidates in the loaded pool", candidatesLoaded.Load())
	writeOpCounter(&buf, "gateway_calls_started_total", "Gateway calls started", func(c *opCounters) uint64 { return c.started.Load() })
	writeOpCounter(&buf, "gateway_calls_succeeded_total", "Gateway calls that returned a valid result", func(c *opCounters) uint64 { return c.succeeded.Load() })
	writeOpCounter(&buf, "gateway_calls_failed_total", "Gateway calls that ended in a gateway error", func(c *opCounters) uint64 { return c.failed.Load() })
	writeOpCounter(&buf, "gateway_calls_canceled_total", "Gateway calls canceled by the caller", func(c *opCounters) uint64 { return c.canceled.Load() })
	writeOpCounter(&buf, "gateway_calls_superseded_total", "Pending gateway calls replaced by a newer call", func(c *opCounters) uint64 { return c.superseded.Load() })
	fmt.Fprintf(&buf, "# HELP gateway_call_duration_ms Gateway call duration in milliseconds\n")
	fmt.Fprintf(&buf, "# TYPE gateway_call_duration_ms histogram\n")
	for _, op := range operations {
		writeHistogram(&buf, "gateway_call_duration_ms", op, gatewayCalls[op].duration.Snapshot())
	}
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeGauge(buf *bytes.Buffer, name, help string, value int64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s gauge\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeOpCounter(buf *bytes.Buffer, name, help string, value func(*opCounters) uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	for _, op := range operations {
		fmt.Fprintf(buf, "%s{operation=%q} %d\n", name, op, value(gatewayCalls[op]))
	}
}

func writeHistogram(buf *bytes.Buffer, name, op string, snap histogramSnapshot) {
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{operation=%q,le=\"%s\"} %d\n", name, op, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{operation=%q,le=\"+Inf\"} %d\n", name, op, snap.count)
	fmt.Fprintf(buf, "%s_sum{operation=%q} %s\n", name, op, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count{operation=%q} %d\n", name, op, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

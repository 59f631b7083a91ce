package metrics

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Collector tracks calculator metrics and exposes Prometheus-compatible /metrics.
type Collector struct {
	requestsTotal  [methodCount]atomic.Int64
	calculations   atomic.Int64
	invalidConfigs atomic.Int64
	inputErrors    atomic.Int64
	notModified    atomic.Int64
	latencyNanos   atomic.Int64
	latencyCount   atomic.Int64
	startTime      time.Time
}

// HTTP method indices for counter array
const (
	mGET = iota
	mPOST
	mOTHER
	methodCount
)

func methodIndex(method string) int {
	switch method {
	case http.MethodGet:
		return mGET
	case http.MethodPost:
		return mPOST
	default:
		return mOTHER
	}
}

func methodLabel(idx int) string {
	switch idx {
	case mGET:
		return "GET"
	case mPOST:
		return "POST"
	default:
		return "OTHER"
	}
}

func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// StartTime returns when the collector was created (server start time).
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

func (c *Collector) RecordRequest(method string) {
	c.requestsTotal[methodIndex(method)].Add(1)
}

// RecordCalculation counts a successful calculation.
func (c *Collector) RecordCalculation() {
	c.calculations.Add(1)
}

// RecordInvalidConfiguration counts a cluster too small to erasure-code.
func (c *Collector) RecordInvalidConfiguration() {
	c.invalidConfigs.Add(1)
}

func (c *Collector) RecordInputError() {
	c.inputErrors.Add(1)
}

func (c *Collector) RecordNotModified() {
	c.notModified.Add(1)
}

// RecordLatency adds one request duration.
func (c *Collector) RecordLatency(d time.Duration) {
	c.latencyNanos.Add(int64(d))
	c.latencyCount.Add(1)
}

// Calculations returns the number of successful calculations.
func (c *Collector) Calculations() int64 {
	return c.calculations.Load()
}

// InvalidConfigurations returns the number of sentinel results.
func (c *Collector) InvalidConfigurations() int64 {
	return c.invalidConfigs.Load()
}

// TotalRequests returns the sum across all methods.
func (c *Collector) TotalRequests() int64 {
	var total int64
	for i := 0; i < methodCount; i++ {
		total += c.requestsTotal[i].Load()
	}
	return total
}

// ServeHTTP handles GET /metrics in Prometheus exposition format.
func (c *Collector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	for i := 0; i < methodCount; i++ {
		fmt.Fprintf(w, "ecsizer_requests_total{method=%q} %d\n", methodLabel(i), c.requestsTotal[i].Load())
	}
	fmt.Fprintf(w, "ecsizer_requests_total_sum %d\n", c.TotalRequests())
	fmt.Fprintf(w, "ecsizer_calculations_total %d\n", c.calculations.Load())
	fmt.Fprintf(w, "ecsizer_invalid_configurations_total %d\n", c.invalidConfigs.Load())
	fmt.Fprintf(w, "ecsizer_input_errors_total %d\n", c.inputErrors.Load())
	fmt.Fprintf(w, "ecsizer_not_modified_total %d\n", c.notModified.Load())

	fmt.Fprintf(w, "ecsizer_request_duration_seconds_sum %.6f\n", time.Duration(c.latencyNanos.Load()).Seconds())
	fmt.Fprintf(w, "ecsizer_request_duration_seconds_count %d\n", c.latencyCount.Load())

	// Uptime
	fmt.Fprintf(w, "ecsizer_uptime_seconds %.0f\n", time.Since(c.startTime).Seconds())

	// Go runtime metrics
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fmt.Fprintf(w, "ecsizer_go_goroutines %d\n", runtime.NumGoroutine())
	fmt.Fprintf(w, "ecsizer_go_memory_alloc_bytes %d\n", mem.Alloc)
	fmt.Fprintf(w, "ecsizer_go_memory_sys_bytes %d\n", mem.Sys)
	fmt.Fprintf(w, "ecsizer_go_gc_total %d\n", mem.NumGC)
}

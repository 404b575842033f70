package tsnsim

//
// Prometheus export of per-port statistics
//
// Grounded on the runZeroInc-sockstats pack repo's pkg/exporter.TCPInfoCollector:
// same shape (a custom prometheus.Collector that recomputes its metrics from
// live state on every Collect call, rather than caching updates), here
// recomputing from a [Monitor]'s flat event table via [Monitor.PortStatsFor]
// instead of from a live TCP socket.
//

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusTarget names one (switch, egress port) pair a [PrometheusCollector]
// reports on.
type PrometheusTarget struct {
	SwitchAddress Address
	Port          int
}

// PrometheusCollector is a [prometheus.Collector] exposing spec.md §6's
// per-port statistics for a fixed set of targets. The zero value is
// invalid; use [NewPrometheusCollector].
type PrometheusCollector struct {
	monitor *Monitor

	mu      sync.Mutex
	targets []PrometheusTarget

	received *prometheus.Desc
	sent     *prometheus.Desc
	dropped  *prometheus.Desc
	queueLen *prometheus.Desc
	pktSize  *prometheus.Desc
}

var _ prometheus.Collector = &PrometheusCollector{}

// NewPrometheusCollector creates a [PrometheusCollector] reading from
// monitor, reporting on the given targets.
func NewPrometheusCollector(monitor *Monitor, targets ...PrometheusTarget) *PrometheusCollector {
	labels := []string{"switch", "port"}
	return &PrometheusCollector{
		monitor: monitor,
		targets: targets,
		received: prometheus.NewDesc(
			"tsnsim_port_frames_received_total", "Frames enqueued onto a port buffer.", labels, nil),
		sent: prometheus.NewDesc(
			"tsnsim_port_frames_sent_total", "Frames whose transmission completed on a port.", labels, nil),
		dropped: prometheus.NewDesc(
			"tsnsim_port_frames_dropped_total", "Frames removed from a port buffer without being sent.", labels, nil),
		queueLen: prometheus.NewDesc(
			"tsnsim_port_queue_length_average", "Average queue length observed at transmission time.", labels, nil),
		pktSize: prometheus.NewDesc(
			"tsnsim_port_packet_size_average", "Average transmitted frame size, in bytes.", labels, nil),
	}
}

// AddTarget registers an additional (switch, port) pair to report on.
func (c *PrometheusCollector) AddTarget(target PrometheusTarget) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets = append(c.targets, target)
}

// Describe implements prometheus.Collector.
func (c *PrometheusCollector) Describe(descs chan<- *prometheus.Desc) {
	descs <- c.received
	descs <- c.sent
	descs <- c.dropped
	descs <- c.queueLen
	descs <- c.pktSize
}

// Collect implements prometheus.Collector: it recomputes every target's
// [PortStats] from the monitor's current event table on each call.
func (c *PrometheusCollector) Collect(metrics chan<- prometheus.Metric) {
	c.mu.Lock()
	targets := append([]PrometheusTarget(nil), c.targets...)
	c.mu.Unlock()

	for _, target := range targets {
		stats, err := c.monitor.PortStatsFor(target.SwitchAddress, target.Port, nil)
		if err != nil {
			continue
		}
		labelValues := []string{string(target.SwitchAddress), strconv.Itoa(target.Port)}
		metrics <- prometheus.MustNewConstMetric(c.received, prometheus.CounterValue, float64(stats.FramesReceived), labelValues...)
		metrics <- prometheus.MustNewConstMetric(c.sent, prometheus.CounterValue, float64(stats.FramesSent), labelValues...)
		metrics <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(stats.FramesDropped), labelValues...)
		metrics <- prometheus.MustNewConstMetric(c.queueLen, prometheus.GaugeValue, stats.AverageQueueLength, labelValues...)
		metrics <- prometheus.MustNewConstMetric(c.pktSize, prometheus.GaugeValue, stats.AveragePacketSize, labelValues...)
	}
}


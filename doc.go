// Package tsnsim is a discrete-event simulator for store-and-forward,
// packet-switched networks modelled after IEEE 802.1Q bridged LANs,
// including the time-sensitive networking mechanisms of frame preemption
// and the Credit-Based Shaper (CBS).
//
// At the center of the package is the [Engine]: a virtual-time,
// single-threaded cooperative scheduler. Long-running entities — a
// [Channel] transmission, a [PortEngine], an [Injector] — are modelled as
// goroutines that rendezvous with the Engine by yielding [Event] values
// through [Process.Yield] and resuming when the Engine fires them or
// interrupts them with [Engine.Interrupt]. No real time and no OS
// parallelism is involved: the Engine only ever has one such rendezvous in
// flight, which is what makes two runs with the same seed and topology
// produce byte-identical results.
//
// A [Topology] wires [Switch]es, [Sink]s and [Injector]s together with
// [Topology.ConnectSwitches] and [Topology.ConnectSink], which create a
// [Channel] between a pair of ports. A [Switch] is a learning bridge: it
// maintains a routing table keyed by source address, forwards unicast
// frames it has learned a route for, and broadcasts everything else
// (except back out the port a frame arrived on). Each of its egress
// ports owns a [PortBuffer] — one [TransmissionSelector] per traffic
// class, either [StrictPrioritySelector] or [CreditBasedShaperSelector] —
// and a [PortEngine] that drains it onto the port's [Channel], optionally
// preempting a lower-priority frame that is already in flight.
//
// Monitoring hooks on [PortBuffer] record every enqueue, completed
// transmission and drop, and each [Channel] records every completed hop;
// [Monitor] aggregates them into per-node/port
// statistics, a flat event table, and a per-frame hop table.
// [PrometheusCollector] additionally exposes the same counters as
// Prometheus metrics.
package tsnsim

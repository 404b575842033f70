package tsnsim

//
// Monitoring: append/pop/drop logs, flat event table, per-frame hop table
//

import (
	"sync"

	"github.com/montanaflynn/stats"
)

// Action classifies one monitored event, per spec.md §6's flat table.
type Action string

const (
	// ActionReceived marks a frame enqueued onto a port buffer.
	ActionReceived Action = "received"

	// ActionTransmitted marks a frame whose transmission completed.
	ActionTransmitted Action = "transmitted"

	// ActionDropped marks a frame removed from a queue without being sent.
	ActionDropped Action = "dropped"
)

// MonitorEvent is one row of the flat event table spec.md §6 describes.
type MonitorEvent struct {
	SwitchAddress Address
	EgressPort    int
	Frame         *Frame
	Action        Action
	Time          float64
	QueueLen      int
	DTrans        float64
	DProp         float64
}

// Monitor collects [MonitorEvent]s and [HopRecord]s for the nodes and
// ports it is attached to, and aggregates them into the per-node/port
// statistics spec.md §6 describes. The zero value is ready to use.
type Monitor struct {
	mu     sync.Mutex
	events []MonitorEvent
	hops   []HopTableRow
}

// HopTableRow is one row of the per-frame hop table (spec.md §6):
// QueueDelay = Nodal - Trans - Prop.
type HopTableRow struct {
	FrameID      int64
	HopCount     int
	LastHop      bool
	Sender       Address
	SenderTime   float64
	Receiver     Address
	ReceiverTime float64
	Trans        float64
	Prop         float64
	QueueDelay   float64
	Nodal        float64
	Latency      float64
}

// NewMonitor creates an empty [Monitor].
func NewMonitor() *Monitor {
	return &Monitor{}
}

// record appends ev to the flat event table. Safe for concurrent use,
// though under normal operation it is only ever called from the single
// active simulation goroutine.
func (m *Monitor) record(ev MonitorEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// RecordHop appends one row to the per-frame hop table. dNodal is the
// total nodal delay the frame experienced at the sending node for this
// hop (queueing + transmission + propagation); dTrans and dProp are its
// transmission and propagation components.
func (m *Monitor) RecordHop(frame *Frame, hop HopRecord, lastHop bool) {
	dNodal := hop.ReceiverTime - hop.SenderTime
	row := HopTableRow{
		FrameID:      frame.ID,
		HopCount:     len(frame.Hops),
		LastHop:      lastHop,
		Sender:       hop.Sender,
		SenderTime:   hop.SenderTime,
		Receiver:     hop.Receiver,
		ReceiverTime: hop.ReceiverTime,
		Trans:        hop.Trans,
		Prop:         hop.Prop,
		QueueDelay:   dNodal - hop.Trans - hop.Prop,
		Nodal:        dNodal,
	}
	if lastHop {
		row.Latency = hop.ReceiverTime - frame.CreatedAt
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hops = append(m.hops, row)
}

// HopRows returns a copy of the per-frame hop table recorded so far.
func (m *Monitor) HopRows() []HopTableRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]HopTableRow, len(m.hops))
	copy(out, m.hops)
	return out
}

// WaitingTimeByFrame builds the waitingTimeByFrame argument
// [Monitor.PortStatsFor] expects, keyed by frame id, from each frame's
// last recorded hop's queueing delay.
func (m *Monitor) WaitingTimeByFrame() map[int64]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]float64, len(m.hops))
	for _, row := range m.hops {
		if row.LastHop {
			out[row.FrameID] = row.QueueDelay
		}
	}
	return out
}

// Events returns a copy of the flat event table recorded so far.
func (m *Monitor) Events() []MonitorEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MonitorEvent, len(m.events))
	copy(out, m.events)
	return out
}

// PortStats is the hierarchical per-node/port record spec.md §6 describes.
// AverageWaitingTime/StdDevWaitingTime keys use -1 to mean "aggregated
// across all priorities".
type PortStats struct {
	FramesReceived int
	FramesSent     int
	FramesDropped  int

	AverageWaitingTime map[int]float64
	StdDevWaitingTime  map[int]float64
	AverageQueueLength float64
	StdDevQueueLength  float64
	AveragePacketSize  float64
	StdDevPacketSize   float64
}

// allWaitingKey is the key PortStats uses to aggregate across all priorities.
const allWaitingKey = -1

// PortStatsFor aggregates statistics for one (switchAddress, egressPort)
// pair out of the recorded flat event table. waitingTimeByFrame supplies
// each transmitted frame's queueing delay (its d_queue, computed by the
// caller from the hop table), keyed by frame id, because waiting time is
// a per-hop quantity the flat table alone does not carry.
func (m *Monitor) PortStatsFor(switchAddress Address, egressPort int, waitingTimeByFrame map[int64]float64) (*PortStats, error) {
	m.mu.Lock()
	events := make([]MonitorEvent, len(m.events))
	copy(events, m.events)
	m.mu.Unlock()

	out := &PortStats{
		AverageWaitingTime: map[int]float64{},
		StdDevWaitingTime:  map[int]float64{},
	}
	var queueLens, sizes []float64
	waitingByPriority := map[int][]float64{}

	for _, ev := range events {
		if ev.SwitchAddress != switchAddress || ev.EgressPort != egressPort {
			continue
		}
		switch ev.Action {
		case ActionReceived:
			out.FramesReceived++
		case ActionTransmitted:
			out.FramesSent++
			queueLens = append(queueLens, float64(ev.QueueLen))
			sizes = append(sizes, float64(ev.Frame.TotalSize()))
			if wt, ok := waitingTimeByFrame[ev.Frame.ID]; ok {
				waitingByPriority[allWaitingKey] = append(waitingByPriority[allWaitingKey], wt)
				waitingByPriority[ev.Frame.Priority] = append(waitingByPriority[ev.Frame.Priority], wt)
			}
		case ActionDropped:
			out.FramesDropped++
		}
	}

	for prio, samples := range waitingByPriority {
		mean, err := stats.Mean(samples)
		if err != nil {
			return nil, err
		}
		sd, err := stats.StandardDeviation(samples)
		if err != nil {
			return nil, err
		}
		out.AverageWaitingTime[prio] = mean
		out.StdDevWaitingTime[prio] = sd
	}
	if len(queueLens) > 0 {
		out.AverageQueueLength, _ = stats.Mean(queueLens)
		out.StdDevQueueLength, _ = stats.StandardDeviation(queueLens)
	}
	if len(sizes) > 0 {
		out.AveragePacketSize, _ = stats.Mean(sizes)
		out.StdDevPacketSize, _ = stats.StandardDeviation(sizes)
	}
	return out, nil
}

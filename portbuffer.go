package tsnsim

//
// Port buffer: aggregates per-class selectors behind one "next frame" query
//

// TSAKind selects which [TransmissionSelector] implementation a traffic
// class uses: Strict Priority or Credit-Based Shaper.
type TSAKind int

const (
	// StrictPriority selects a [StrictPrioritySelector] for a class.
	StrictPriority TSAKind = iota

	// CreditBasedShaper selects a [CreditBasedShaperSelector] for a class.
	CreditBasedShaper
)

// SwitchParam configures one egress port's [PortBuffer]: how many traffic
// classes it exposes, any priority-map overrides, which selector
// algorithm each class uses, and (for CBS classes) the delta-bandwidth
// share each one is allotted.
type SwitchParam struct {
	// AvailableTrafficClasses is the port's traffic class count (1..8).
	// Zero means "use the default of 8".
	AvailableTrafficClasses int

	// PriorityOverrides optionally overrides individual priority->class entries.
	PriorityOverrides map[int]TrafficClass

	// TSAMap selects the transmission selection algorithm per traffic
	// class. Classes absent from the map default to [StrictPriority].
	TSAMap map[TrafficClass]TSAKind

	// BandwidthMap gives the delta-bandwidth share, in (0,1], of each
	// traffic class using [CreditBasedShaper]. Mandatory for such classes.
	BandwidthMap map[TrafficClass]float64
}

// PortBuffer is the sole mutation authority for a port's per-class queues:
// it holds the priority map, one [TransmissionSelector] per traffic class,
// and (optionally) the [Monitor] hooks spec.md §6 describes. The zero
// value is invalid; use [NewPortBuffer].
type PortBuffer struct {
	priorityMap *PriorityMap
	selectors   []TransmissionSelector

	switchAddress     Address
	port              int
	monitor           *Monitor
	portRateBitsPerUs float64
	propagationDelay  float64
}

// NewPortBuffer builds a [PortBuffer] for one egress port. now is the
// virtual time at which the port (and any CBS selectors on it) starts
// existing; portRateBitsPerUs is the port's link bandwidth, used to derive
// CBS idle/send slopes and, together with propagationDelay, the d_trans/
// d_prop the [Monitor] flat table reports (spec.md §6).
func NewPortBuffer(
	now float64,
	param *SwitchParam,
	portRateBitsPerUs float64,
	propagationDelay float64,
	switchAddress Address,
	port int,
	monitor *Monitor,
) (*PortBuffer, error) {
	if portRateBitsPerUs <= 0 {
		return nil, ErrInvalidBandwidth
	}
	count := param.AvailableTrafficClasses
	if count == 0 {
		count = 8
	}
	priorityMap, err := NewPriorityMap(count)
	if err != nil {
		return nil, err
	}
	for prio, class := range param.PriorityOverrides {
		if err := priorityMap.Override(prio, class); err != nil {
			return nil, err
		}
	}

	selectors := make([]TransmissionSelector, count)
	for class := 0; class < count; class++ {
		kind := param.TSAMap[TrafficClass(class)]
		switch kind {
		case StrictPriority:
			selectors[class] = NewStrictPrioritySelector()
		case CreditBasedShaper:
			delta, ok := param.BandwidthMap[TrafficClass(class)]
			if !ok || delta <= 0 || delta > 1 {
				return nil, ErrInvalidBandwidth
			}
			selectors[class] = NewCreditBasedShaperSelector(now, delta, portRateBitsPerUs)
		default:
			return nil, ErrUnknownChannelType
		}
	}

	return &PortBuffer{
		priorityMap:       priorityMap,
		selectors:         selectors,
		switchAddress:     switchAddress,
		port:              port,
		monitor:           monitor,
		portRateBitsPerUs: portRateBitsPerUs,
		propagationDelay:  propagationDelay,
	}, nil
}

// selectorFor returns the selector the frame's priority maps to.
func (pb *PortBuffer) selectorFor(frame *Frame) TransmissionSelector {
	return pb.selectors[pb.priorityMap.ClassFor(frame.Priority)]
}

// transDelay returns frame's nominal transmission delay on this port,
// matching the original's get_monitor_table (frame_size*8/bandwidth).
func (pb *PortBuffer) transDelay(frame *Frame) float64 {
	return float64(frame.TotalSize()) * 8 / pb.portRateBitsPerUs
}

// AppendFrame routes frame to its class selector and, if monitored,
// records an "append" event.
func (pb *PortBuffer) AppendFrame(now float64, frame *Frame) {
	pb.selectorFor(frame).AppendFrame(frame)
	if pb.monitor != nil {
		pb.monitor.record(MonitorEvent{
			Time:          now,
			SwitchAddress: pb.switchAddress,
			EgressPort:    pb.port,
			Frame:         frame,
			Action:        ActionReceived,
			QueueLen:      pb.Len(),
			DTrans:        pb.transDelay(frame),
			DProp:         pb.propagationDelay,
		})
	}
}

// DropFrame removes frame from its class selector and, if monitored,
// records a "dropped" event.
func (pb *PortBuffer) DropFrame(now float64, frame *Frame) {
	sel := pb.selectorFor(frame)
	sel.RemoveFrame(now, frame)
	if pb.monitor != nil {
		pb.monitor.record(MonitorEvent{
			Time:          now,
			SwitchAddress: pb.switchAddress,
			EgressPort:    pb.port,
			Frame:         frame,
			Action:        ActionDropped,
			QueueLen:      pb.Len(),
			DTrans:        pb.transDelay(frame),
			DProp:         pb.propagationDelay,
		})
	}
}

// TransmissionStart notifies frame's class selector that it is now being sent.
func (pb *PortBuffer) TransmissionStart(now float64, frame *Frame) {
	pb.selectorFor(frame).Transmitting(now, true)
}

// TransmissionPause notifies frame's class selector that its send was paused.
func (pb *PortBuffer) TransmissionPause(now float64, frame *Frame) {
	pb.selectorFor(frame).Transmitting(now, false)
}

// TransmissionDone notifies frame's class selector that its send finished,
// removes it, and, if monitored, records a "transmitted" event.
func (pb *PortBuffer) TransmissionDone(now float64, frame *Frame) {
	sel := pb.selectorFor(frame)
	sel.Transmitting(now, false)
	sel.RemoveFrame(now, frame)
	if pb.monitor != nil {
		pb.monitor.record(MonitorEvent{
			Time:          now,
			SwitchAddress: pb.switchAddress,
			EgressPort:    pb.port,
			Frame:         frame,
			Action:        ActionTransmitted,
			QueueLen:      pb.Len(),
			DTrans:        pb.transDelay(frame),
			DProp:         pb.propagationDelay,
		})
	}
}

// PeekNextFrame iterates traffic classes from highest to lowest index and
// returns the first class whose selector yields a non-nil frame, or nil
// if none is eligible (spec.md §4.4's selector-ordering rule).
func (pb *PortBuffer) PeekNextFrame(now float64) *Frame {
	for class := len(pb.selectors) - 1; class >= 0; class-- {
		if f := pb.selectors[class].GetFrame(now); f != nil {
			return f
		}
	}
	return nil
}

// NextEligibleAt returns the earliest instant at which some currently
// ineligible class (e.g. a CBS class with negative credit) will become
// eligible, across all classes, and whether one exists. Used by
// [PortEngine] to avoid stalling when the only queued frames are
// CBS-gated (spec.md §9's Open Question).
func (pb *PortBuffer) NextEligibleAt(now float64) (float64, bool) {
	best, found := 0.0, false
	for _, sel := range pb.selectors {
		t, ok := sel.NextEligibleAt(now)
		if !ok {
			continue
		}
		if !found || t < best {
			best, found = t, true
		}
	}
	return best, found
}

// Len returns the total number of frames queued across all classes.
func (pb *PortBuffer) Len() int {
	total := 0
	for _, sel := range pb.selectors {
		total += sel.Len()
	}
	return total
}

// Empty reports whether every class selector is empty.
func (pb *PortBuffer) Empty() bool {
	return pb.Len() == 0
}

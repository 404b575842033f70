package tsnsim

//
// Priority map: IEEE 802.1Q §8.6.6 priority-to-traffic-class mapping
//

// TrafficClass identifies a numbered queue group on a port. Higher index
// means higher selection priority in [PortBuffer.PeekNextFrame].
type TrafficClass int

// defaultPriorityTable is 802.1Q Table 8-4, reproduced verbatim: row index
// is (availableTrafficClasses-1), column index is the frame priority
// (0..7), value is the traffic class index within {0..availableTrafficClasses-1}.
var defaultPriorityTable = [8][8]int{
	{0, 0, 0, 0, 0, 0, 0, 0}, // 1 traffic class
	{0, 0, 0, 0, 1, 1, 1, 1}, // 2 traffic classes
	{0, 0, 0, 0, 1, 1, 2, 2}, // 3 traffic classes
	{0, 0, 1, 1, 2, 2, 3, 3}, // 4 traffic classes
	{0, 0, 1, 1, 2, 2, 3, 4}, // 5 traffic classes
	{1, 0, 2, 2, 3, 3, 4, 5}, // 6 traffic classes
	{1, 0, 2, 3, 4, 4, 5, 6}, // 7 traffic classes
	{1, 0, 2, 3, 4, 5, 6, 7}, // 8 traffic classes
}

// PriorityMap maps an 8-valued frame priority to a [TrafficClass] index,
// depending on how many traffic classes a port makes available. The zero
// value is not ready to use; construct with [NewPriorityMap].
type PriorityMap struct {
	availableTrafficClasses int
	table                   [8]int
}

// NewPriorityMap builds the default, 802.1Q-compliant [PriorityMap] for a
// port configured with availableTrafficClasses traffic classes
// (1..8). Returns [ErrInvalidTrafficClassCount] if count is out of range.
func NewPriorityMap(availableTrafficClasses int) (*PriorityMap, error) {
	if availableTrafficClasses < 1 || availableTrafficClasses > 8 {
		return nil, ErrInvalidTrafficClassCount
	}
	pm := &PriorityMap{availableTrafficClasses: availableTrafficClasses}
	pm.table = defaultPriorityTable[availableTrafficClasses-1]
	return pm, nil
}

// AvailableTrafficClasses returns how many traffic classes this map routes
// into.
func (pm *PriorityMap) AvailableTrafficClasses() int {
	return pm.availableTrafficClasses
}

// Override replaces the traffic class a single priority maps to. Returns
// [ErrInvalidPriority] if priority is outside {0..7}, or
// [ErrInvalidTrafficClassCount] if class is outside
// {0..AvailableTrafficClasses()-1}.
func (pm *PriorityMap) Override(priority int, class TrafficClass) error {
	if priority < 0 || priority > 7 {
		return ErrInvalidPriority
	}
	if int(class) < 0 || int(class) >= pm.availableTrafficClasses {
		return ErrInvalidTrafficClassCount
	}
	pm.table[priority] = int(class)
	return nil
}

// ClassFor returns the [TrafficClass] a frame of the given priority maps
// to. Priorities outside {0..7} map to class 0, matching the defensive
// behaviour of a learning bridge that must never refuse to forward a frame
// because of a malformed priority.
func (pm *PriorityMap) ClassFor(priority int) TrafficClass {
	if priority < 0 || priority > 7 {
		return 0
	}
	return TrafficClass(pm.table[priority])
}

package tsnsim

//
// Frame: the immutable unit of data carried through the network
//

// Header is one entry of a [Frame]'s header list: a byte count plus an
// opaque tag. Frames never carry real byte contents (spec.md Non-goals);
// a [Header]'s Tag is metadata only, e.g. "vlan" or "mpls".
type Header struct {
	// Bytes is this header's size in bytes.
	Bytes int

	// Tag is an opaque identifier for this header's kind.
	Tag string
}

// Frame is an immutable descriptor of a unit of data flowing through the
// simulation. Its TotalSize never changes after it is created.
type Frame struct {
	// ID uniquely identifies this frame within a simulation run.
	ID int64

	// Source is the originating node's address.
	Source Address

	// Destination is the intended recipient's address.
	Destination Address

	// Payload is the frame's payload size in bytes.
	Payload int

	// Priority is the user priority in {0..7}.
	Priority int

	// Headers is the ordered list of headers prepended to the payload.
	Headers []Header

	// CreatedAt is the virtual time at which this frame was created.
	CreatedAt float64

	// Hops accumulates one record per hop as the frame traverses switches.
	Hops []HopRecord
}

// HopRecord describes one hop of a monitored [Frame]'s journey, used to
// build the per-frame hop table described in spec.md §6.
type HopRecord struct {
	// Sender is the address of the node that sent this hop.
	Sender Address

	// Receiver is the address of the node that received this hop.
	Receiver Address

	// SenderTime is the virtual time the frame reached the sending node
	// (its previous hop's ReceiverTime, or its CreatedAt on the first hop).
	SenderTime float64

	// ReceiverTime is the virtual time the frame finished this hop.
	ReceiverTime float64

	// Trans is the transmission delay of this hop, in microseconds.
	Trans float64

	// Prop is the propagation delay of this hop, in microseconds.
	Prop float64
}

// TotalSize is the frame's total size in bytes: payload plus every header.
func (f *Frame) TotalSize() int {
	total := f.Payload
	for _, h := range f.Headers {
		total += h.Bytes
	}
	return total
}

// Clone returns a copy of f with its own Hops slice, so independent copies
// fanned out by a broadcast do not alias each other's hop history.
func (f *Frame) Clone() *Frame {
	clone := *f
	clone.Hops = append([]HopRecord(nil), f.Hops...)
	return &clone
}

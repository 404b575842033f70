package tsnsim

//
// Error kinds
//

import "errors"

// ErrUnknownChannelType indicates an unrecognized [TSAKind] value.
var ErrUnknownChannelType = errors.New("tsnsim: unknown channel type")

// ErrInvalidPriority indicates that a priority-map override carries a
// priority outside the {0..7} range. Frames with such a priority are not
// rejected; [PriorityMap.ClassFor] maps them to class 0.
var ErrInvalidPriority = errors.New("tsnsim: invalid priority")

// ErrInvalidBandwidth indicates a non-positive port bandwidth passed to
// [NewPortBuffer], or a [CreditBasedShaper] traffic class whose
// delta-bandwidth share is missing or outside (0,1].
var ErrInvalidBandwidth = errors.New("tsnsim: invalid bandwidth")

// ErrInvalidTrafficClassCount indicates an [SwitchParam.AvailableTrafficClasses]
// outside the {1..8} range, or a [PriorityMap.Override] target class
// outside the map's available traffic classes.
var ErrInvalidTrafficClassCount = errors.New("tsnsim: invalid traffic class count")

// ErrDuplicateNode indicates that [Topology.AddSwitch] or [Topology.AddSink]
// was called twice with the same node address.
var ErrDuplicateNode = errors.New("tsnsim: duplicate node address")

// ErrUnknownNode indicates that a [Topology] connect method referenced a
// node address that was never added.
var ErrUnknownNode = errors.New("tsnsim: unknown node address")

// ErrUnknownPort indicates a reference to a port number a node does not have.
var ErrUnknownPort = errors.New("tsnsim: unknown port")

// ErrPortInUse indicates an attempt to connect a port that is already wired.
var ErrPortInUse = errors.New("tsnsim: port already connected")

// ErrInterruptWithoutInspector is a protocol-misuse programming error
// (spec.md §7 kind 2): interrupting a sending [Process] that was not
// given an [Inspector] aborts the run, because there is no way to decide
// whether the pause is legal.
var ErrInterruptWithoutInspector = errors.New("tsnsim: interrupting a send without an inspector")

// ErrNotAwaiting is a protocol-misuse programming error: [Engine.Interrupt]
// was asked to interrupt a [Process] that has already finished.
var ErrNotAwaiting = errors.New("tsnsim: process is not running")

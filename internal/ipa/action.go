package ipa

import "github.com/camerastack/isppipeline/pkg/camcore"

// ActionType tags a message the IPA sends back to the controller.
type ActionType int

const (
	ActionV4L2Set ActionType = iota
	ActionParamFilled
	ActionMetadata
)

func (t ActionType) String() string {
	switch t {
	case ActionV4L2Set:
		return "V4L2_SET"
	case ActionParamFilled:
		return "PARAM_FILLED"
	case ActionMetadata:
		return "METADATA"
	default:
		return "UNKNOWN_ACTION"
	}
}

// Action is one decoded IPA-to-controller message, always tagged with
// the frame it targets (§4.3). Per-frame ordering between action types
// is not assumed by the controller.
type Action struct {
	Type     ActionType
	Frame    uint64
	Controls camcore.ControlList
}

// Raw type codes as they arrive off the wire, before validation.
const (
	RawV4L2Set     = 1
	RawParamFilled = 2
	RawMetadata    = 3
)

// RawAction is what the out-of-process IPA actually transmits: an
// integer type code that may not correspond to any ActionType the
// controller understands.
type RawAction struct {
	TypeCode int
	Frame    uint64
	Controls camcore.ControlList
}

// Decode validates a RawAction's type code. ok is false for an
// unrecognized code, which the caller must log and drop rather than
// act on (§4.3).
func Decode(raw RawAction) (action Action, ok bool) {
	switch raw.TypeCode {
	case RawV4L2Set:
		return Action{Type: ActionV4L2Set, Frame: raw.Frame, Controls: raw.Controls}, true
	case RawParamFilled:
		return Action{Type: ActionParamFilled, Frame: raw.Frame}, true
	case RawMetadata:
		return Action{Type: ActionMetadata, Frame: raw.Frame, Controls: raw.Controls}, true
	default:
		return Action{}, false
	}
}

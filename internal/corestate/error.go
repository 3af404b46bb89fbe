// Package corestate defines the small error taxonomy shared by every
// component of the pipeline core (frame registry, timeline, IPA channel,
// validator, and controller).
package corestate

import (
	"errors"
	"fmt"
)

// Kind classifies a core error into one of the categories the
// controller and its collaborators must distinguish when deciding
// whether to surface, log, or silently drop a failure.
type Kind int

const (
	// KindUnderrun: a free pool was empty on FrameInfo creation.
	KindUnderrun Kind = iota
	// KindInvalidStream: a request has no buffer bound to the expected stream.
	KindInvalidStream
	// KindNotFound: a registry lookup missed (late arrival after completion/stop).
	KindNotFound
	// KindConfigInvalid: the configuration validator rejected the configuration.
	KindConfigInvalid
	// KindConfigAdjusted: the validator mutated the configuration to make it legal.
	KindConfigAdjusted
	// KindDeviceError: a kernel ioctl (V4L2/media-controller) call failed.
	KindDeviceError
	// KindIPAUnavailable: the IPA collaborator could not be created.
	KindIPAUnavailable
	// KindTimelineMisconfig: the SOE action type was configured with a non-zero frame offset.
	KindTimelineMisconfig
)

// String returns a human-readable label for the error kind.
func (k Kind) String() string {
	switch k {
	case KindUnderrun:
		return "underrun"
	case KindInvalidStream:
		return "invalid_stream"
	case KindNotFound:
		return "not_found"
	case KindConfigInvalid:
		return "config_invalid"
	case KindConfigAdjusted:
		return "config_adjusted"
	case KindDeviceError:
		return "device_error"
	case KindIPAUnavailable:
		return "ipa_unavailable"
	case KindTimelineMisconfig:
		return "timeline_misconfig"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by core components. Op names
// the failing operation (e.g. "frameregistry.create", "controller.queueRequest").
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind, regardless
// of Op or wrapped cause. This lets callers write errors.Is(err, corestate.Underrun).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error for op/kind, optionally wrapping cause.
func New(op string, kind Kind, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Sentinels usable with errors.Is(err, corestate.Underrun), matching the
// pattern of comparing by Kind only (Op/Err are ignored by Is above).
var (
	Underrun          = &Error{Kind: KindUnderrun}
	InvalidStream     = &Error{Kind: KindInvalidStream}
	NotFound          = &Error{Kind: KindNotFound}
	ConfigInvalid     = &Error{Kind: KindConfigInvalid}
	ConfigAdjusted    = &Error{Kind: KindConfigAdjusted}
	DeviceError       = &Error{Kind: KindDeviceError}
	IPAUnavailable    = &Error{Kind: KindIPAUnavailable}
	TimelineMisconfig = &Error{Kind: KindTimelineMisconfig}
)

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}

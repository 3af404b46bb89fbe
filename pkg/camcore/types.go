// Package camcore holds the data types and external-collaborator
// interfaces shared by every internal component of the pipeline core:
// the frame registry, buffer pools, timeline scheduler, IPA channel,
// configuration validator, and request lifecycle controller.
//
// Nothing in this package performs I/O or holds mutable shared state;
// it exists purely so that the internal packages can describe the same
// frame, buffer, and configuration concepts without importing each other.
package camcore

import "github.com/google/uuid"

// ControlList is a generic bag of named control values, used both for
// user-supplied request controls and IPA-produced per-frame metadata.
// The core never interprets the values it carries.
type ControlList map[string]any

// Buffer is an opaque reference to a kernel (V4L2) buffer. Two Buffers
// are the same buffer iff they compare equal with ==; implementations
// are expected to be pointers or otherwise comparable values with
// stable identity for the buffer's lifetime.
type Buffer interface {
	// Index is the buffer's position within its device's buffer pool.
	Index() int
}

// Size is a pixel width/height pair.
type Size struct {
	Width  int
	Height int
}

// PixelFormat identifies a userland pixel encoding (e.g. "NV12").
type PixelFormat string

// MediaBusFormat identifies an on-chip pad-to-pad media bus encoding
// (e.g. "SBGGR10_1X10"), distinct from PixelFormat.
type MediaBusFormat string

// SubdeviceFormat is the format negotiated across a subdevice pad.
type SubdeviceFormat struct {
	MediaBus MediaBusFormat
	Size     Size
}

// StreamConfig is the userland-facing half of a negotiated pipeline
// configuration: pixel format, output size, and buffer count.
type StreamConfig struct {
	PixelFormat PixelFormat
	Size        Size
	BufferCount int
}

// CameraConfiguration is the full validated tuple of §4.4: the output
// stream configuration plus the sensor media-bus format it requires.
type CameraConfiguration struct {
	Stream       StreamConfig
	SensorFormat SubdeviceFormat

	// ConfigID correlates one validated configuration with the log
	// lines and telemetry events it produces across configure/start/stop.
	ConfigID uuid.UUID
}

// ValidationStatus is the result of running the configuration validator.
type ValidationStatus int

const (
	// Valid means the requested stream was already legal; the validator
	// only filled in the fixed buffer count and the sensor format.
	Valid ValidationStatus = iota
	// Adjusted means the validator mutated the configuration to make it legal.
	Adjusted
	// Invalid means the configuration cannot be made legal (e.g. empty).
	Invalid
)

func (s ValidationStatus) String() string {
	switch s {
	case Valid:
		return "valid"
	case Adjusted:
		return "adjusted"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ActionType tags a TimelineAction with the kind of deferred operation
// it represents.
type ActionType int

const (
	// ActionSetSensor writes sensor controls produced by the IPA.
	ActionSetSensor ActionType = iota
	// ActionSOE is the synthetic start-of-exposure marker.
	ActionSOE
	// ActionQueueBuffers enqueues the frame's three buffers to the kernel.
	ActionQueueBuffers
)

func (t ActionType) String() string {
	switch t {
	case ActionSetSensor:
		return "SetSensor"
	case ActionSOE:
		return "SOE"
	case ActionQueueBuffers:
		return "QueueBuffers"
	default:
		return "Unknown"
	}
}

// TimelineAction is a deferred, frame-targeted operation scheduled by
// the controller or the IPA (§3).
type TimelineAction struct {
	Frame    uint64
	Type     ActionType
	Controls ControlList // populated for ActionSetSensor
}

// FrameInfo binds one frame number to its owning request and the three
// kernel buffers exclusively held for that frame's lifetime (§3).
type FrameInfo struct {
	Frame   uint64
	Request Request

	ParamBuffer Buffer
	StatBuffer  Buffer
	VideoBuffer Buffer

	ParamFilled       bool
	ParamDequeued     bool
	MetadataProcessed bool
}

// Request is the external, user-submitted capture request. The core
// never inspects buffer contents; it only reads controls, resolves the
// bound video buffer, attaches metadata, and asks whether any buffers
// are still outstanding.
type Request interface {
	// ID returns a stable identifier for logging/correlation.
	ID() string
	// Controls returns the user-supplied control set for this request.
	Controls() ControlList
	// StreamBuffer returns the buffer the user bound to the pipeline's
	// single output stream, or ok=false if none is bound.
	StreamBuffer() (Buffer, bool)
	// SetMetadata attaches the per-frame result metadata.
	SetMetadata(ControlList)
	// HasPendingBuffers reports whether any buffer bound to this
	// request (of any stream) has not yet been completed.
	HasPendingBuffers() bool
}

// RequestCompleter is the camera-framework collaborator (out of scope
// per §1) that tracks per-buffer completion against a Request and
// finalizes completed requests. The controller calls it; it never
// calls back into the controller.
type RequestCompleter interface {
	// CompleteBuffer marks buf as delivered against req.
	CompleteBuffer(req Request, buf Buffer)
	// CompleteRequest finalizes req: all buffers delivered, metadata
	// attached. Called at most once per request.
	CompleteRequest(req Request)
}

// BufferReadyEvent is the kernel's completion notification for one
// buffer, carrying the sequence number and DMA-end timestamp the
// timeline scheduler needs for SOE estimation (§6).
type BufferReadyEvent struct {
	Buffer      Buffer
	Sequence    uint64
	DMAEndNanos int64
}

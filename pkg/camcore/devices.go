package camcore

// IPAClient lives in internal/ipa as ipa.Client, not here: its Send
// method takes an ipa.Event, and ipa.Event embeds camcore types, so
// declaring the interface in this package would create an import
// cycle. §6 names it IPAClient; ipa.Client is that collaborator.

// VideoDevice is the per-node collaborator over a V4L2 video device
// (pixel output, ISP parameter input, or ISP statistics output). The
// core never talks to the kernel directly; it drives these methods and
// receives BufferReadyEvent notifications out of band (§6).
type VideoDevice interface {
	SetFormat(fmt StreamConfig) (StreamConfig, error)
	ExportBuffers(count int) ([]Buffer, error)
	ImportBuffers(buffers []Buffer) error
	ReleaseBuffers() error
	StreamOn() error
	StreamOff() error
	QueueBuffer(b Buffer) error
}

// SubDevice is the per-pad collaborator over a V4L2 subdevice (sensor,
// CSI-2 receiver, or ISP subdevice) used during configure().
type SubDevice interface {
	SetFormat(pad int, fmt SubdeviceFormat) (SubdeviceFormat, error)
	GetFormat(pad int) (SubdeviceFormat, error)
	SetEnabled(enabled bool) error
}

// ControlInfo describes the legal range of one sensor control.
type ControlInfo struct {
	Min, Max, Default any
}

// Sensor is the camera sensor collaborator consumed by the
// configuration validator and the pipeline lifecycle (§6).
type Sensor interface {
	SetControls(controls ControlList) error
	SetFormat(fmt SubdeviceFormat) (SubdeviceFormat, error)
	// GetFormat asks the sensor to pick the best of candidates for size,
	// in priority order; the sensor returns whichever one it supports.
	GetFormat(candidates []MediaBusFormat, size Size) (SubdeviceFormat, error)
	Resolution() Size
	Controls() map[string]ControlInfo
}

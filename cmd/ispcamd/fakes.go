package main

import (
	"fmt"
	"log/slog"

	"github.com/camerastack/isppipeline/internal/ipa"
	"github.com/camerastack/isppipeline/pkg/camcore"
)

// fakeBuffer is an in-memory stand-in for a kernel (V4L2) buffer
// reference; only its pool index matters to the core.
type fakeBuffer struct {
	index int
}

func (b *fakeBuffer) Index() int { return b.index }

// fakeVideoDevice simulates a V4L2 video node with no real kernel
// underneath. It accepts any format, exports buffers sized to the
// requested count, and logs queue operations.
type fakeVideoDevice struct {
	name      string
	format    camcore.StreamConfig
	streaming bool
}

func (d *fakeVideoDevice) SetFormat(fmt camcore.StreamConfig) (camcore.StreamConfig, error) {
	d.format = fmt
	return fmt, nil
}

func (d *fakeVideoDevice) ExportBuffers(count int) ([]camcore.Buffer, error) {
	buffers := make([]camcore.Buffer, count)
	for i := range buffers {
		buffers[i] = &fakeBuffer{index: i}
	}
	return buffers, nil
}

func (d *fakeVideoDevice) ImportBuffers(buffers []camcore.Buffer) error { return nil }

func (d *fakeVideoDevice) ReleaseBuffers() error {
	slog.Debug("ispcamd: released buffers", "device", d.name)
	return nil
}

func (d *fakeVideoDevice) StreamOn() error {
	d.streaming = true
	slog.Debug("ispcamd: stream on", "device", d.name)
	return nil
}

func (d *fakeVideoDevice) StreamOff() error {
	d.streaming = false
	slog.Debug("ispcamd: stream off", "device", d.name)
	return nil
}

func (d *fakeVideoDevice) QueueBuffer(b camcore.Buffer) error {
	slog.Debug("ispcamd: buffer queued", "device", d.name, "index", b.Index())
	return nil
}

// fakeSensor simulates the sensor collaborator: it supports exactly
// one media-bus format at its native resolution.
type fakeSensor struct {
	resolution camcore.Size
	nativeMbus camcore.MediaBusFormat
	controls   map[string]camcore.ControlInfo
}

func (s *fakeSensor) SetControls(controls camcore.ControlList) error {
	slog.Debug("ispcamd: sensor controls applied", "controls", controls)
	return nil
}

func (s *fakeSensor) SetFormat(fmt camcore.SubdeviceFormat) (camcore.SubdeviceFormat, error) {
	return fmt, nil
}

func (s *fakeSensor) GetFormat(candidates []camcore.MediaBusFormat, size camcore.Size) (camcore.SubdeviceFormat, error) {
	for _, c := range candidates {
		if c == s.nativeMbus {
			return camcore.SubdeviceFormat{MediaBus: s.nativeMbus, Size: s.resolution}, nil
		}
	}
	return camcore.SubdeviceFormat{}, fmt.Errorf("no matching media-bus format")
}

func (s *fakeSensor) Resolution() camcore.Size { return s.resolution }

func (s *fakeSensor) Controls() map[string]camcore.ControlInfo { return s.controls }

// fakeRequest is a single-buffer capture request bound to one video
// buffer, with a pending count decremented by completeBuffer.
type fakeRequest struct {
	id       string
	controls camcore.ControlList
	buffer   camcore.Buffer
	pending  int
	metadata camcore.ControlList
}

func (r *fakeRequest) ID() string                   { return r.id }
func (r *fakeRequest) Controls() camcore.ControlList { return r.controls }
func (r *fakeRequest) StreamBuffer() (camcore.Buffer, bool) {
	return r.buffer, r.buffer != nil
}
func (r *fakeRequest) SetMetadata(m camcore.ControlList) { r.metadata = m }
func (r *fakeRequest) HasPendingBuffers() bool           { return r.pending > 0 }

// fakeCompleter tracks buffer and request completion for the demo run.
type fakeCompleter struct {
	completedRequests []string
}

func (c *fakeCompleter) CompleteBuffer(req camcore.Request, buf camcore.Buffer) {
	if fr, ok := req.(*fakeRequest); ok {
		fr.pending--
	}
	slog.Info("ispcamd: buffer completed", "request", req.ID(), "buffer_index", buf.Index())
}

func (c *fakeCompleter) CompleteRequest(req camcore.Request) {
	c.completedRequests = append(c.completedRequests, req.ID())
	slog.Info("ispcamd: request completed", "request", req.ID())
}

// fakeIPAClient is a stand-in for the out-of-process IPA. It logs
// every event it receives; the demo drives its replies explicitly
// rather than simulating a real 3A algorithm.
type fakeIPAClient struct{}

func (c *fakeIPAClient) Send(ev ipa.Event) error {
	slog.Debug("ispcamd: IPA event sent", "type", ev.Type.String(), "frame", ev.Frame)
	return nil
}

package controller

import (
	"github.com/camerastack/isppipeline/internal/ipa"
	"github.com/camerastack/isppipeline/internal/timeline"
	"github.com/camerastack/isppipeline/pkg/camcore"
)

type testBuffer struct{ index int }

func (b testBuffer) Index() int { return b.index }

type fakeDevice struct {
	name      string
	streaming bool
	queued    []camcore.Buffer
}

func (d *fakeDevice) SetFormat(fmt camcore.StreamConfig) (camcore.StreamConfig, error) {
	return fmt, nil
}

func (d *fakeDevice) ExportBuffers(count int) ([]camcore.Buffer, error) {
	out := make([]camcore.Buffer, count)
	for i := range out {
		out[i] = testBuffer{index: i}
	}
	return out, nil
}

func (d *fakeDevice) ImportBuffers(buffers []camcore.Buffer) error { return nil }
func (d *fakeDevice) ReleaseBuffers() error                        { return nil }
func (d *fakeDevice) StreamOn() error                              { d.streaming = true; return nil }
func (d *fakeDevice) StreamOff() error                             { d.streaming = false; return nil }
func (d *fakeDevice) QueueBuffer(b camcore.Buffer) error {
	d.queued = append(d.queued, b)
	return nil
}

type fakeSensor struct {
	resolution camcore.Size
	native     camcore.MediaBusFormat
	controls   []camcore.ControlList
}

func (s *fakeSensor) SetControls(c camcore.ControlList) error {
	s.controls = append(s.controls, c)
	return nil
}

func (s *fakeSensor) SetFormat(fmt camcore.SubdeviceFormat) (camcore.SubdeviceFormat, error) {
	return fmt, nil
}

func (s *fakeSensor) GetFormat(candidates []camcore.MediaBusFormat, size camcore.Size) (camcore.SubdeviceFormat, error) {
	for _, c := range candidates {
		if c == s.native {
			return camcore.SubdeviceFormat{MediaBus: s.native, Size: s.resolution}, nil
		}
	}
	return camcore.SubdeviceFormat{}, nil
}

func (s *fakeSensor) Resolution() camcore.Size                     { return s.resolution }
func (s *fakeSensor) Controls() map[string]camcore.ControlInfo     { return nil }

// fakeRequest models a single-stream request: pending starts at 1 (the
// video buffer) and is decremented when the controller reports that
// buffer complete.
type fakeRequest struct {
	id       string
	buf      camcore.Buffer
	hasBuf   bool
	pending  int
	metadata camcore.ControlList
}

func (r *fakeRequest) ID() string                   { return r.id }
func (r *fakeRequest) Controls() camcore.ControlList { return nil }
func (r *fakeRequest) StreamBuffer() (camcore.Buffer, bool) {
	return r.buf, r.hasBuf
}
func (r *fakeRequest) SetMetadata(m camcore.ControlList) { r.metadata = m }
func (r *fakeRequest) HasPendingBuffers() bool           { return r.pending > 0 }

type fakeCompleter struct {
	completedBuffers int
	completed        []string
}

func (c *fakeCompleter) CompleteBuffer(req camcore.Request, buf camcore.Buffer) {
	c.completedBuffers++
	if r, ok := req.(*fakeRequest); ok {
		r.pending--
	}
}

func (c *fakeCompleter) CompleteRequest(req camcore.Request) {
	c.completed = append(c.completed, req.ID())
}

type fakeIPAClient struct {
	events []ipa.Event
}

func (c *fakeIPAClient) Send(ev ipa.Event) error {
	c.events = append(c.events, ev)
	return nil
}

// newTestController wires a Controller against fakes and carries it
// through Configure/AllocateBuffers/Start so tests can drive
// QueueRequest directly.
func newTestController(t interface{ Fatalf(string, ...any) }) (*Controller, *fakeCompleter, *fakeIPAClient, *fakeSensor) {
	return newTestControllerWithDelays(t, timeline.DefaultDelays())
}

func newTestControllerWithDelays(t interface{ Fatalf(string, ...any) }, delays map[camcore.ActionType]timeline.Delay) (*Controller, *fakeCompleter, *fakeIPAClient, *fakeSensor) {
	devices := Devices{
		Param: &fakeDevice{name: "param"},
		Stat:  &fakeDevice{name: "stat"},
		Video: &fakeDevice{name: "video"},
	}
	completer := &fakeCompleter{}
	ipaClient := &fakeIPAClient{}
	sensor := &fakeSensor{resolution: camcore.Size{Width: 1920, Height: 1080}, native: "SBGGR10_1X10"}

	ctrl, err := New(devices, completer, ipaClient, delays)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := camcore.CameraConfiguration{
		Stream: camcore.StreamConfig{PixelFormat: "NV12", Size: camcore.Size{Width: 1920, Height: 1080}},
	}
	if _, _, err := ctrl.Configure(req, sensor); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if err := ctrl.AllocateBuffers(); err != nil {
		t.Fatalf("AllocateBuffers() error = %v", err)
	}
	if err := ctrl.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	return ctrl, completer, ipaClient, sensor
}

// Command ispcamd wires fake V4L2, sensor, and IPA collaborators that
// satisfy the core's §6 interfaces to the real controller and drives
// one capture end to end, without touching any real kernel or IPA
// infrastructure. It mirrors the donor's demo-binary convention
// (modules/framebus/examples/basic, modules/stream-capture/examples/simple).
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/camerastack/isppipeline/internal/controller"
	"github.com/camerastack/isppipeline/internal/ipa"
	"github.com/camerastack/isppipeline/pkg/camcore"
)

func main() {
	configPath := flag.String("config", "", "path to pipeline defaults YAML (optional)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	defaults := defaultPipelineDefaults()
	if *configPath != "" {
		loaded, err := loadPipelineDefaults(*configPath)
		if err != nil {
			slog.Error("ispcamd: failed to load config, using built-in defaults", "error", err)
		} else {
			defaults = loaded
		}
	}

	if err := run(defaults); err != nil {
		slog.Error("ispcamd: run failed", "error", err)
		os.Exit(1)
	}
}

func run(defaults pipelineDefaults) error {
	sensor := &fakeSensor{
		resolution: camcore.Size{Width: defaults.Sensor.Resolution.Width, Height: defaults.Sensor.Resolution.Height},
		nativeMbus: camcore.MediaBusFormat(defaults.Sensor.NativeMediaBus),
		controls:   map[string]camcore.ControlInfo{"AeEnable": {Default: false}},
	}

	devices := controller.Devices{
		Param: &fakeVideoDevice{name: "param"},
		Stat:  &fakeVideoDevice{name: "stat"},
		Video: &fakeVideoDevice{name: "video"},
	}

	completer := &fakeCompleter{}
	ipaClient := &fakeIPAClient{}

	ctrl, err := controller.New(devices, completer, ipaClient, defaults.timelineDelays())
	if err != nil {
		return err
	}

	probe, _ := ctrl.GenerateConfiguration(sensor, []string{"viewfinder"})
	slog.Debug("ispcamd: generated starting configuration", "pixel_format", probe.Stream.PixelFormat, "width", probe.Stream.Size.Width, "height", probe.Stream.Size.Height)

	cfg, status, err := ctrl.Configure(defaults.requestedConfiguration(), sensor)
	if err != nil {
		return err
	}
	slog.Info("ispcamd: configured", "status", status.String(), "config_id", cfg.ConfigID)

	if err := ctrl.AllocateBuffers(); err != nil {
		return err
	}
	if err := ctrl.Start(); err != nil {
		return err
	}
	defer ctrl.Stop()

	req := &fakeRequest{
		id:       "demo-request-0",
		controls: camcore.ControlList{"AeEnable": true},
		buffer:   &fakeBuffer{index: 0},
		pending:  1,
	}

	frame, err := ctrl.QueueRequest(req)
	if err != nil {
		return err
	}

	// Let the timeline's wall-clock-scheduled QueueBuffers action fire.
	ctrl.Advance(time.Now().Add(20 * time.Millisecond))

	ctrl.HandleIPAAction(ipa.RawAction{TypeCode: ipa.RawV4L2Set, Frame: frame, Controls: camcore.ControlList{"AnalogueGain": 1.0}})
	ctrl.HandleIPAAction(ipa.RawAction{TypeCode: ipa.RawParamFilled, Frame: frame})

	info, ok := ctrl.FrameInfo(frame)
	if !ok {
		slog.Error("ispcamd: frame vanished before delivery", "frame", frame)
		return nil
	}

	ctrl.BufferReady(camcore.BufferReadyEvent{
		Buffer:      req.buffer,
		Sequence:    frame,
		DMAEndNanos: time.Second.Nanoseconds(),
	})
	ctrl.ParamReady(info.ParamBuffer)
	ctrl.StatReady(info.StatBuffer)

	ctrl.HandleIPAAction(ipa.RawAction{
		TypeCode: ipa.RawMetadata,
		Frame:    frame,
		Controls: camcore.ControlList{"Exposure": 1000},
	})

	stats := ctrl.Stats()
	slog.Info("ispcamd: run complete",
		"completed_requests", completer.completedRequests,
		"in_flight", stats.InFlightFrames,
		"param_pool_free", stats.ParamPoolFree,
		"param_pool_capacity", stats.ParamPoolCapacity,
		"underruns", stats.Underruns)

	return nil
}

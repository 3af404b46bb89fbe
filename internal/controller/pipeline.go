package controller

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/camerastack/isppipeline/internal/bufferpool"
	"github.com/camerastack/isppipeline/internal/corestate"
	"github.com/camerastack/isppipeline/internal/frameregistry"
	"github.com/camerastack/isppipeline/internal/ipa"
	"github.com/camerastack/isppipeline/internal/validator"
	"github.com/camerastack/isppipeline/pkg/camcore"
)

// GenerateConfiguration builds a starting CameraConfiguration for a
// requested set of stream roles, grounded on
// PipelineHandlerRkISP1::generateConfiguration (§6, §9's capability
// trait). An empty roles set asks for a bare, unconfigured object
// (the framework probing capabilities before committing to a stream)
// and is returned unvalidated, matching the original; a non-empty
// roles set gets a default NV12-at-sensor-resolution stream run
// through the validator, since this pipeline only ever exposes one
// stream regardless of how many roles were requested.
func (c *Controller) GenerateConfiguration(sensor camcore.Sensor, roles []string) (camcore.CameraConfiguration, camcore.ValidationStatus) {
	if len(roles) == 0 {
		return camcore.CameraConfiguration{}, camcore.Valid
	}

	cfg := camcore.CameraConfiguration{
		Stream: camcore.StreamConfig{
			PixelFormat: validator.DefaultPixelFormat,
			Size:        sensor.Resolution(),
		},
	}

	return validator.Validate(cfg, sensor)
}

// Configure validates requested against sensor and applies the result
// to the video device and sensor pad, grounded on
// PipelineHandlerRkISP1::configure (§4.4, §6). It does not touch the
// kernel stream state or the IPA; that happens in Start.
func (c *Controller) Configure(requested camcore.CameraConfiguration, sensor camcore.Sensor) (camcore.CameraConfiguration, camcore.ValidationStatus, error) {
	const op = "controller.configure"

	cfg, status := validator.Validate(requested, sensor)
	if status == camcore.Invalid {
		return cfg, status, corestate.New(op, corestate.KindConfigInvalid, fmt.Errorf("configuration rejected"))
	}
	cfg.ConfigID = uuid.New()

	actual, err := c.devices.Video.SetFormat(cfg.Stream)
	if err != nil {
		return cfg, status, corestate.New(op, corestate.KindDeviceError, err)
	}
	cfg.Stream = actual

	if _, err := sensor.SetFormat(cfg.SensorFormat); err != nil {
		return cfg, status, corestate.New(op, corestate.KindDeviceError, err)
	}

	c.sensor = sensor
	c.config = cfg

	slog.Info("controller: configuration applied",
		"config_id", cfg.ConfigID, "status", status.String(),
		"pixel_format", cfg.Stream.PixelFormat, "width", cfg.Stream.Size.Width, "height", cfg.Stream.Size.Height)

	return cfg, status, nil
}

// AllocateBuffers exports the video stream's buffers and creates the
// param/stat pools at bufferCount+1 each, then maps them to the IPA
// (§4.6, grounded on PipelineHandlerRkISP1::allocateBuffers).
func (c *Controller) AllocateBuffers() error {
	const op = "controller.allocatebuffers"
	count := c.config.Stream.BufferCount + 1

	if _, err := c.devices.Video.ExportBuffers(c.config.Stream.BufferCount); err != nil {
		return corestate.New(op, corestate.KindDeviceError, err)
	}

	paramBuffers, err := c.devices.Param.ExportBuffers(count)
	if err != nil {
		c.devices.Video.ReleaseBuffers()
		return corestate.New(op, corestate.KindDeviceError, err)
	}

	statBuffers, err := c.devices.Stat.ExportBuffers(count)
	if err != nil {
		c.devices.Param.ReleaseBuffers()
		c.devices.Video.ReleaseBuffers()
		return corestate.New(op, corestate.KindDeviceError, err)
	}

	c.paramPool = bufferpool.New(paramBuffers)
	c.statPool = bufferpool.New(statBuffers)

	mappings := make([]ipa.BufferMapping, 0, 2*count)
	for _, buf := range paramBuffers {
		mappings = append(mappings, ipa.BufferMapping{ID: ipa.EncodeParam(buf.Index()), Memory: buf})
	}
	for _, buf := range statBuffers {
		mappings = append(mappings, ipa.BufferMapping{ID: ipa.EncodeStat(buf.Index()), Memory: buf})
	}

	if err := c.ipaChannel.MapBuffers(mappings); err != nil {
		return corestate.New(op, corestate.KindIPAUnavailable, err)
	}

	slog.Info("controller: buffers allocated", "count", count)
	return nil
}

// FreeBuffers drains the pools, unmaps the IPA buffers, and releases
// the three devices' kernel buffers. Release failures are logged only
// (§4.6).
func (c *Controller) FreeBuffers() {
	var ids []ipa.BufferID

	if c.paramPool != nil {
		for _, buf := range c.paramPool.Drain() {
			ids = append(ids, ipa.EncodeParam(buf.Index()))
		}
	}
	if c.statPool != nil {
		for _, buf := range c.statPool.Drain() {
			ids = append(ids, ipa.EncodeStat(buf.Index()))
		}
	}

	if err := c.ipaChannel.UnmapBuffers(ids); err != nil {
		slog.Error("controller: failed to unmap IPA buffers", "error", err)
	}

	if err := c.devices.Param.ReleaseBuffers(); err != nil {
		slog.Error("controller: failed to release param buffers", "error", err)
	}
	if err := c.devices.Stat.ReleaseBuffers(); err != nil {
		slog.Error("controller: failed to release stat buffers", "error", err)
	}
	if err := c.devices.Video.ReleaseBuffers(); err != nil {
		slog.Error("controller: failed to release video buffers", "error", err)
	}

	c.paramPool = nil
	c.statPool = nil
	c.registry = nil
}

// Start streams on param, stat, then video, unwinding in reverse
// order on any failure (§4.6). On success it (re)creates the frame
// registry over the allocated pools, resets the frame counter, and
// sends the IPA CONFIGURE event.
func (c *Controller) Start() error {
	const op = "controller.start"

	if c.paramPool == nil || c.statPool == nil {
		return corestate.New(op, corestate.KindDeviceError, fmt.Errorf("buffers not allocated"))
	}

	if err := c.devices.Param.StreamOn(); err != nil {
		return corestate.New(op, corestate.KindDeviceError, fmt.Errorf("param stream-on: %w", err))
	}

	if err := c.devices.Stat.StreamOn(); err != nil {
		c.devices.Param.StreamOff()
		return corestate.New(op, corestate.KindDeviceError, fmt.Errorf("stat stream-on: %w", err))
	}

	if err := c.devices.Video.StreamOn(); err != nil {
		c.devices.Stat.StreamOff()
		c.devices.Param.StreamOff()
		return corestate.New(op, corestate.KindDeviceError, fmt.Errorf("video stream-on: %w", err))
	}

	c.registry = frameregistry.New(c.paramPool, c.statPool)
	c.frame = 0
	c.started = true

	entityControls := map[string]camcore.ControlInfo{}
	if c.sensor != nil {
		entityControls = c.sensor.Controls()
	}

	if err := c.ipaChannel.Configure(c.config.Stream, entityControls); err != nil {
		slog.Error("controller: IPA configure failed", "error", err)
	}

	slog.Info("controller: started", "config_id", c.config.ConfigID)
	return nil
}

// Stop streams off video, stat, then param (failures logged only),
// resets the timeline, discards any in-flight frames, and clears the
// started flag (§4.6, §5).
func (c *Controller) Stop() {
	if err := c.devices.Video.StreamOff(); err != nil {
		slog.Warn("controller: failed to stop video stream", "error", err)
	}
	if err := c.devices.Stat.StreamOff(); err != nil {
		slog.Warn("controller: failed to stop stat stream", "error", err)
	}
	if err := c.devices.Param.StreamOff(); err != nil {
		slog.Warn("controller: failed to stop param stream", "error", err)
	}

	c.timeline.Reset()

	if c.registry != nil {
		discarded := c.registry.DiscardAll()
		if len(discarded) > 0 {
			slog.Info("controller: discarded in-flight frames on stop", "count", len(discarded))
		}
	}

	c.started = false
	slog.Info("controller: stopped")
}

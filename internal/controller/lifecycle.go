package controller

import (
	"log/slog"
	"time"

	"github.com/camerastack/isppipeline/internal/corestate"
	"github.com/camerastack/isppipeline/internal/ipa"
	"github.com/camerastack/isppipeline/internal/telemetry"
	"github.com/camerastack/isppipeline/pkg/camcore"
)

// QueueRequest allocates the next frame number, creates its FrameInfo,
// notifies the IPA, and schedules the frame's QueueBuffers action
// (§4.5). On failure no FrameInfo is created, the IPA is not notified,
// and the frame counter does not advance; an underrun is only counted
// in Stats and reported to telemetry.
func (c *Controller) QueueRequest(req camcore.Request) (uint64, error) {
	info, err := c.registry.Create(c.frame, req)
	if err != nil {
		if corestate.Is(err, corestate.KindUnderrun) {
			c.underruns++
			c.emit(telemetry.EventUnderrun, c.frame)
		}
		return 0, err
	}

	frame := c.frame
	paramID := ipa.EncodeParam(info.ParamBuffer.Index())

	if err := c.ipaChannel.QueueRequest(frame, paramID, req.Controls()); err != nil {
		slog.Error("controller: IPA queue_request failed", "frame", frame, "error", err)
	}

	fired := c.timeline.ScheduleAction(camcore.TimelineAction{Frame: frame, Type: camcore.ActionQueueBuffers})

	c.frame++

	for _, action := range fired {
		c.executeAction(action)
	}

	slog.Debug("controller: request queued", "frame", frame, "request", req.ID())
	return frame, nil
}

// executeAction runs one fired TimelineAction against its collaborator.
func (c *Controller) executeAction(action camcore.TimelineAction) {
	switch action.Type {
	case camcore.ActionSetSensor:
		c.runSetSensor(action)
	case camcore.ActionQueueBuffers:
		c.runQueueBuffers(action.Frame)
	case camcore.ActionSOE:
		// Synthetic marker; nothing to dispatch.
	default:
		slog.Warn("controller: unknown timeline action type", "type", action.Type)
	}
}

func (c *Controller) runSetSensor(action camcore.TimelineAction) {
	if c.sensor == nil {
		return
	}
	if err := c.sensor.SetControls(action.Controls); err != nil {
		slog.Error("controller: sensor control write failed", "frame", action.Frame, "error", err)
	}
}

// runQueueBuffers enqueues a frame's three buffers to the kernel. The
// param buffer is skipped (and the frame runs with default ISP
// parameters) if the IPA never signalled PARAM_FILLED in time (§4.5).
func (c *Controller) runQueueBuffers(frame uint64) {
	info, ok := c.registry.FindByFrame(frame)
	if !ok {
		slog.Debug("controller: queue_buffers for unknown frame", "frame", frame)
		return
	}

	if info.ParamFilled {
		if err := c.devices.Param.QueueBuffer(info.ParamBuffer); err != nil {
			slog.Error("controller: failed to queue param buffer", "frame", frame, "error", err)
		}
	} else {
		c.paramSkipped++
		c.emit(telemetry.EventParamSkipped, frame)
		slog.Warn("controller: param buffer not filled in time, running with defaults", "frame", frame)
	}

	if err := c.devices.Stat.QueueBuffer(info.StatBuffer); err != nil {
		slog.Error("controller: failed to queue stat buffer", "frame", frame, "error", err)
	}
	if err := c.devices.Video.QueueBuffer(info.VideoBuffer); err != nil {
		slog.Error("controller: failed to queue video buffer", "frame", frame, "error", err)
	}
}

// Advance runs every pending timeline action whose resolved fire time
// is due by now: actions scheduled relative to queue time, and offset-0
// actions whose frame's SOE is already known. The outer event loop
// calls this periodically (§4.2, §9).
func (c *Controller) Advance(now time.Time) {
	for _, action := range c.timeline.Advance(now) {
		c.executeAction(action)
	}
}

// HandleIPAAction decodes a raw IPA action and folds it into
// controller state. Unknown type codes are logged and dropped (§4.3).
func (c *Controller) HandleIPAAction(raw ipa.RawAction) {
	action, ok := ipa.Decode(raw)
	if !ok {
		slog.Warn("controller: unknown IPA action type, dropping", "type_code", raw.TypeCode, "frame", raw.Frame)
		return
	}

	switch action.Type {
	case ipa.ActionV4L2Set:
		fired := c.timeline.ScheduleAction(camcore.TimelineAction{
			Frame:    action.Frame,
			Type:     camcore.ActionSetSensor,
			Controls: action.Controls,
		})
		for _, a := range fired {
			c.executeAction(a)
		}

	case ipa.ActionParamFilled:
		if info, ok := c.registry.FindByFrame(action.Frame); ok {
			info.ParamFilled = true
		}

	case ipa.ActionMetadata:
		info, ok := c.registry.FindByFrame(action.Frame)
		if !ok {
			slog.Debug("controller: metadata for unknown frame", "frame", action.Frame)
			return
		}
		info.Request.SetMetadata(action.Controls)
		info.MetadataProcessed = true
		c.tryComplete(info)
	}
}

// BufferReady handles a completed video buffer: SOE estimation, frame
// counter resync to the hardware sequence number, buffer completion
// against the request, and a completion check (§4.5).
func (c *Controller) BufferReady(event camcore.BufferReadyEvent) {
	for _, action := range c.timeline.BufferReady(event) {
		c.executeAction(action)
	}

	if event.Sequence+1 > c.frame {
		c.frame = event.Sequence + 1
	}

	info, ok := c.registry.FindByBuffer(event.Buffer)
	if !ok {
		slog.Debug("controller: video buffer ready for unknown frame")
		return
	}

	c.completer.CompleteBuffer(info.Request, event.Buffer)
	c.tryComplete(info)
}

// ParamReady handles the kernel returning a param buffer after
// consumption (§4.5).
func (c *Controller) ParamReady(buf camcore.Buffer) {
	info, ok := c.registry.FindByBuffer(buf)
	if !ok {
		slog.Debug("controller: param buffer ready for unknown frame")
		return
	}

	info.ParamDequeued = true
	c.tryComplete(info)
}

// StatReady handles the kernel filling a stat buffer; it forwards the
// signal to the IPA, which will later reply with METADATA (§4.5).
func (c *Controller) StatReady(buf camcore.Buffer) {
	info, ok := c.registry.FindByBuffer(buf)
	if !ok {
		slog.Debug("controller: stat buffer ready for unknown frame")
		return
	}

	if err := c.ipaChannel.SignalStatBuffer(info.Frame, ipa.EncodeStat(buf.Index())); err != nil {
		slog.Error("controller: IPA signal_stat_buffer failed", "frame", info.Frame, "error", err)
	}
}

// tryComplete evaluates the completion predicate and, the first time
// it is true, completes the request and destroys its FrameInfo (§4.5).
func (c *Controller) tryComplete(info *camcore.FrameInfo) {
	if info.Request.HasPendingBuffers() {
		return
	}
	if !info.MetadataProcessed || !info.ParamDequeued {
		return
	}

	c.completer.CompleteRequest(info.Request)
	c.requestsComplete++
	c.emit(telemetry.EventFrameComplete, info.Frame)

	if err := c.registry.Destroy(info.Frame); err != nil {
		slog.Error("controller: failed to destroy completed frame", "frame", info.Frame, "error", err)
	}
}

// Package ipa implements the typed event/action protocol of spec §4.3
// between the controller and the out-of-process Image Processing
// Algorithm collaborator, and the BufferID wire encoding the two sides
// share for param/stat buffer identity.
package ipa

import "github.com/camerastack/isppipeline/pkg/camcore"

// EventType tags a message the controller sends to the IPA.
type EventType int

const (
	EventConfigure EventType = iota
	EventMapBuffers
	EventUnmapBuffers
	EventQueueRequest
	EventSignalStatBuffer
)

func (t EventType) String() string {
	switch t {
	case EventConfigure:
		return "CONFIGURE"
	case EventMapBuffers:
		return "MAP_BUFFERS"
	case EventUnmapBuffers:
		return "UNMAP_BUFFERS"
	case EventQueueRequest:
		return "QUEUE_REQUEST"
	case EventSignalStatBuffer:
		return "SIGNAL_STAT_BUFFER"
	default:
		return "UNKNOWN_EVENT"
	}
}

// BufferMapping pairs a stable wire id with the memory it names, sent
// once at MAP_BUFFERS time (§4.3).
type BufferMapping struct {
	ID     BufferID
	Memory camcore.Buffer
}

// Event is one message sent on the controller-to-IPA half of the
// channel. Only the fields relevant to Type are populated.
type Event struct {
	Type EventType
	Frame uint64

	StreamConfig   camcore.StreamConfig
	EntityControls map[string]camcore.ControlInfo

	Buffers  []BufferMapping
	UnmapIDs []BufferID

	ParamBufferID BufferID
	UserControls  camcore.ControlList

	StatBufferID BufferID
}

// Client is the out-of-process IPA collaborator. Send delivers one
// Event; the IPA's replies arrive out of band as Actions, handed back
// to the controller through Decode.
type Client interface {
	Send(Event) error
}

// Channel centralizes Event construction so callers never build an
// Event by hand; it is the "single typed channel" design note of §9
// applied to the controller-to-IPA direction.
type Channel struct {
	client Client
}

// New wraps client in a Channel.
func New(client Client) *Channel {
	return &Channel{client: client}
}

// Configure sends the one-shot CONFIGURE event at pipeline start.
func (c *Channel) Configure(cfg camcore.StreamConfig, entityControls map[string]camcore.ControlInfo) error {
	return c.client.Send(Event{
		Type:           EventConfigure,
		StreamConfig:   cfg,
		EntityControls: entityControls,
	})
}

// MapBuffers sends the param/stat buffer id-to-memory mapping.
func (c *Channel) MapBuffers(mappings []BufferMapping) error {
	return c.client.Send(Event{Type: EventMapBuffers, Buffers: mappings})
}

// UnmapBuffers revokes previously mapped ids, sent from freeBuffers.
func (c *Channel) UnmapBuffers(ids []BufferID) error {
	return c.client.Send(Event{Type: EventUnmapBuffers, UnmapIDs: ids})
}

// QueueRequest notifies the IPA of a newly queued frame.
func (c *Channel) QueueRequest(frame uint64, paramID BufferID, userControls camcore.ControlList) error {
	return c.client.Send(Event{
		Type:          EventQueueRequest,
		Frame:         frame,
		ParamBufferID: paramID,
		UserControls:  userControls,
	})
}

// SignalStatBuffer tells the IPA the kernel has filled frame's stat buffer.
func (c *Channel) SignalStatBuffer(frame uint64, statID BufferID) error {
	return c.client.Send(Event{
		Type:         EventSignalStatBuffer,
		Frame:        frame,
		StatBufferID: statID,
	})
}

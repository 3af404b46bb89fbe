package ipa

import (
	"testing"

	"github.com/camerastack/isppipeline/pkg/camcore"
)

type recordingClient struct {
	events []Event
}

func (c *recordingClient) Send(ev Event) error {
	c.events = append(c.events, ev)
	return nil
}

func TestChannelBuildsTypedEvents(t *testing.T) {
	client := &recordingClient{}
	ch := New(client)

	ch.Configure(camcore.StreamConfig{PixelFormat: "NV12"}, nil)
	ch.QueueRequest(3, EncodeParam(1), camcore.ControlList{"AeEnable": true})
	ch.SignalStatBuffer(3, EncodeStat(1))
	ch.UnmapBuffers([]BufferID{EncodeParam(0), EncodeStat(0)})

	if len(client.events) != 4 {
		t.Fatalf("got %d events, want 4", len(client.events))
	}

	if client.events[0].Type != EventConfigure {
		t.Errorf("events[0].Type = %v, want EventConfigure", client.events[0].Type)
	}
	if client.events[1].Type != EventQueueRequest || client.events[1].Frame != 3 {
		t.Errorf("events[1] = %+v, want QUEUE_REQUEST for frame 3", client.events[1])
	}
	if client.events[2].Type != EventSignalStatBuffer {
		t.Errorf("events[2].Type = %v, want EventSignalStatBuffer", client.events[2].Type)
	}
	if client.events[3].Type != EventUnmapBuffers || len(client.events[3].UnmapIDs) != 2 {
		t.Errorf("events[3] = %+v, want UNMAP_BUFFERS with 2 ids", client.events[3])
	}
}

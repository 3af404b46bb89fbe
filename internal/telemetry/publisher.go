// Package telemetry implements a best-effort, publish-only MQTT sink
// for pipeline lifecycle events (frame completion, buffer underrun,
// skipped parameters). It is outside the §4/§5 core: the controller
// may attach one at Start() and forget about it.
//
// Grounded on References/orion-prototipe/internal/emitter's MQTTEmitter:
// same paho.mqtt.golang client setup and auto-reconnect options, trimmed
// to publish-only with no control-plane command loop.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// EventKind tags a published telemetry event.
type EventKind string

const (
	EventFrameComplete EventKind = "frame_complete"
	EventUnderrun      EventKind = "underrun"
	EventParamSkipped  EventKind = "param_skipped"
)

// Event is one frame-lifecycle occurrence the pipeline reports.
type Event struct {
	Kind      EventKind `json:"kind"`
	Frame     uint64    `json:"frame"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher drains an outbound queue on its own goroutine so the
// single-threaded controller never blocks on the network. This is the
// one goroutine and the one mutex in the whole repository that is not
// part of the core's event-thread model (§5) — it guards an external,
// best-effort collaborator, not controller state.
type Publisher struct {
	client mqtt.Client
	topic  string
	qos    byte

	queue chan Event

	mu        sync.Mutex
	published uint64
	dropped   uint64
	errors    uint64
}

// New builds a Publisher for broker/clientID, publishing to topic.
// Connect must be called before Publish has any effect.
func New(broker, clientID, topic string) *Publisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(mqtt.Client) {
		slog.Info("telemetry: mqtt connected", "broker", broker, "client_id", clientID)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		slog.Warn("telemetry: mqtt connection lost, will auto-reconnect", "error", err)
	}

	return &Publisher{
		client: mqtt.NewClient(opts),
		topic:  topic,
		qos:    0,
		queue:  make(chan Event, 256),
	}
}

// Connect establishes the broker connection and starts the draining
// goroutine.
func (p *Publisher) Connect() error {
	token := p.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("telemetry: mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("telemetry: mqtt connect failed: %w", err)
	}

	go p.run()
	return nil
}

// Publish enqueues ev for delivery without blocking the caller. A full
// queue drops the event: lifecycle correctness never depends on
// telemetry delivery.
func (p *Publisher) Publish(ev Event) {
	select {
	case p.queue <- ev:
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		slog.Debug("telemetry: queue full, dropping event", "kind", ev.Kind, "frame", ev.Frame)
	}
}

func (p *Publisher) run() {
	for ev := range p.queue {
		payload, err := json.Marshal(ev)
		if err != nil {
			p.recordError()
			continue
		}

		token := p.client.Publish(p.topic, p.qos, false, payload)
		if !token.WaitTimeout(2*time.Second) || token.Error() != nil {
			p.recordError()
			slog.Warn("telemetry: publish failed", "kind", ev.Kind, "frame", ev.Frame)
			continue
		}

		p.mu.Lock()
		p.published++
		p.mu.Unlock()
	}
}

func (p *Publisher) recordError() {
	p.mu.Lock()
	p.errors++
	p.mu.Unlock()
}

// Close stops the draining goroutine and disconnects from the broker.
func (p *Publisher) Close() {
	close(p.queue)
	p.client.Disconnect(250)
}

// Stats is a snapshot of delivery counters.
type Stats struct {
	Published uint64
	Dropped   uint64
	Errors    uint64
}

// Stats returns the current delivery counters.
func (p *Publisher) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Published: p.published, Dropped: p.dropped, Errors: p.errors}
}

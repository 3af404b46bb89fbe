package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/camerastack/isppipeline/internal/timeline"
	"github.com/camerastack/isppipeline/pkg/camcore"
)

// pipelineDefaults is the thin on-disk configuration for the demo
// harness: sensor resolution and native media-bus format, requested
// stream shape, timeline delays, and MQTT settings. Modeled on References/orion-prototipe/internal/config's plain
// yaml.v3-unmarshalled struct + separate Validate step.
type pipelineDefaults struct {
	Sensor struct {
		Resolution struct {
			Width  int `yaml:"width"`
			Height int `yaml:"height"`
		} `yaml:"resolution"`
		NativeMediaBus string `yaml:"native_media_bus"`
	} `yaml:"sensor"`

	Stream struct {
		PixelFormat string `yaml:"pixel_format"`
		Width       int    `yaml:"width"`
		Height      int    `yaml:"height"`
		BufferCount int    `yaml:"buffer_count"`
	} `yaml:"stream"`

	Timeline struct {
		SetSensorDelayMS    int `yaml:"set_sensor_delay_ms"`
		QueueBuffersDelayMS int `yaml:"queue_buffers_delay_ms"`
	} `yaml:"timeline"`

	MQTT struct {
		Broker string `yaml:"broker"`
		Topic  string `yaml:"topic"`
	} `yaml:"mqtt"`
}

func loadPipelineDefaults(path string) (pipelineDefaults, error) {
	var cfg pipelineDefaults

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := validateDefaults(&cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func validateDefaults(cfg *pipelineDefaults) error {
	if cfg.Sensor.Resolution.Width <= 0 || cfg.Sensor.Resolution.Height <= 0 {
		return fmt.Errorf("sensor.resolution must be positive")
	}
	if cfg.Stream.BufferCount <= 0 {
		cfg.Stream.BufferCount = 4
	}
	if cfg.Timeline.SetSensorDelayMS <= 0 {
		cfg.Timeline.SetSensorDelayMS = 5
	}
	if cfg.Timeline.QueueBuffersDelayMS <= 0 {
		cfg.Timeline.QueueBuffersDelayMS = 10
	}
	return nil
}

func defaultPipelineDefaults() pipelineDefaults {
	var cfg pipelineDefaults
	cfg.Sensor.Resolution.Width = 1920
	cfg.Sensor.Resolution.Height = 1080
	cfg.Sensor.NativeMediaBus = "SBGGR10_1X10"
	cfg.Stream.PixelFormat = "NV12"
	cfg.Stream.Width = 1920
	cfg.Stream.Height = 1080
	cfg.Stream.BufferCount = 1
	cfg.Timeline.SetSensorDelayMS = 5
	cfg.Timeline.QueueBuffersDelayMS = 10
	return cfg
}

func (cfg pipelineDefaults) requestedConfiguration() camcore.CameraConfiguration {
	return camcore.CameraConfiguration{
		Stream: camcore.StreamConfig{
			PixelFormat: camcore.PixelFormat(cfg.Stream.PixelFormat),
			Size:        camcore.Size{Width: cfg.Stream.Width, Height: cfg.Stream.Height},
			BufferCount: cfg.Stream.BufferCount,
		},
	}
}

func (cfg pipelineDefaults) timelineDelays() map[camcore.ActionType]timeline.Delay {
	defaults := timeline.DefaultDelays()
	defaults[camcore.ActionSetSensor] = timeline.Delay{
		FrameOffset: -1,
		TimeDelay:   time.Duration(cfg.Timeline.SetSensorDelayMS) * time.Millisecond,
	}
	defaults[camcore.ActionQueueBuffers] = timeline.Delay{
		FrameOffset: -1,
		TimeDelay:   time.Duration(cfg.Timeline.QueueBuffersDelayMS) * time.Millisecond,
	}
	return defaults
}

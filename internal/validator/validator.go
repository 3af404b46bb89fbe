// Package validator implements the configuration negotiation of spec
// §4.4, grounded on RkISP1CameraConfiguration::validate (rkisp1.cpp):
// cap to one stream, fall back to a default pixel format, negotiate a
// sensor media-bus format, and default/clamp the output size.
package validator

import "github.com/camerastack/isppipeline/pkg/camcore"

// DefaultPixelFormat is substituted when the requested format is not
// in acceptedFormats.
const DefaultPixelFormat camcore.PixelFormat = "NV12"

// FixedBufferCount is the buffer count every validated configuration
// is set to (§4.4 step 6).
const FixedBufferCount = 4

const (
	minWidth  = 32
	maxWidth  = 4416
	minHeight = 16
	maxHeight = 3312

	defaultWidth = 1280
)

// acceptedFormats mirrors the rkisp1 pipeline's accepted pixel format
// set; anything outside it is replaced by DefaultPixelFormat.
var acceptedFormats = map[camcore.PixelFormat]bool{
	"YUYV": true,
	"YVYU": true,
	"VYUY": true,
	"NV16": true,
	"NV61": true,
	"NV21": true,
	"NV12": true,
	"GREY": true,
}

// sensorFormatPriority is the 12-bit, then 10-bit, then 8-bit Bayer
// candidate list offered to the sensor, in the order the hardware
// prefers them.
var sensorFormatPriority = []camcore.MediaBusFormat{
	"SBGGR12_1X12", "SGBRG12_1X12", "SGRBG12_1X12", "SRGGB12_1X12",
	"SBGGR10_1X10", "SGBRG10_1X10", "SGRBG10_1X10", "SRGGB10_1X10",
	"SBGGR8_1X8", "SGBRG8_1X8", "SGRBG8_1X8", "SRGGB8_1X8",
}

// Validate negotiates cfg against sensor, returning the (possibly
// mutated) configuration and its status. cfg is not mutated in place;
// the caller receives the validated copy. Validation is idempotent:
// calling Validate again on a Valid result returns it unchanged with
// status Valid (§4.4).
func Validate(cfg camcore.CameraConfiguration, sensor camcore.Sensor) (camcore.CameraConfiguration, camcore.ValidationStatus) {
	if cfg.Stream.PixelFormat == "" && cfg.Stream.Size.Width == 0 && cfg.Stream.Size.Height == 0 && cfg.Stream.BufferCount == 0 {
		return cfg, camcore.Invalid
	}

	status := camcore.Valid
	stream := cfg.Stream

	if !acceptedFormats[stream.PixelFormat] {
		stream.PixelFormat = DefaultPixelFormat
		status = camcore.Adjusted
	}

	sensorFormat, _ := sensor.GetFormat(sensorFormatPriority, stream.Size)
	if sensorFormat.Size.Width == 0 || sensorFormat.Size.Height == 0 {
		sensorFormat.Size = sensor.Resolution()
	}

	requestedSize := stream.Size
	if stream.Size.Width == 0 || stream.Size.Height == 0 {
		stream.Size.Width = defaultWidth
		stream.Size.Height = defaultWidth * sensorFormat.Size.Height / sensorFormat.Size.Width
	}

	stream.Size.Width = clamp(stream.Size.Width, minWidth, maxWidth)
	stream.Size.Height = clamp(stream.Size.Height, minHeight, maxHeight)

	if stream.Size != requestedSize {
		status = camcore.Adjusted
	}

	stream.BufferCount = FixedBufferCount

	return camcore.CameraConfiguration{Stream: stream, SensorFormat: sensorFormat, ConfigID: cfg.ConfigID}, status
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

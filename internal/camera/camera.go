// Package camera provides the GStreamer-backed frame source and device
// lister used when the backend owns the camera hardware (kiosk deployments).
// Browser clients decode on-device and never touch this package.
package camera

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/nutriscan/nutriscan/internal/scanner"
)

// Config bounds the capture pipeline. Barcode decoding does not need more
// than a modest resolution.
type Config struct {
	Width  int
	Height int
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 720
	}
	return c
}

// Lister enumerates video input devices through a GStreamer device monitor.
type Lister struct {
	mu      sync.Mutex
	monitor *gst.DeviceMonitor
}

func NewLister() *Lister {
	return &Lister{}
}

// RequestAccess initializes GStreamer and starts the device monitor. On
// platforms where the video subsystem is unavailable this is where the
// failure surfaces, before any enumeration.
func (l *Lister) RequestAccess(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	gst.Init(nil)
	if l.monitor == nil {
		monitor := gst.NewDeviceMonitor()
		monitor.AddFilter("Video/Source", nil)
		if ok := monitor.Start(); !ok {
			return &scanner.ScanError{Kind: scanner.KindPermissionDenied, Err: fmt.Errorf("device monitor refused to start")}
		}
		l.monitor = monitor
	}
	return nil
}

// ListCameras returns the currently visible video sources. Enumerated fresh
// per call; hotplugged devices appear without a restart.
func (l *Lister) ListCameras(_ context.Context) ([]scanner.CameraDevice, error) {
	l.mu.Lock()
	monitor := l.monitor
	l.mu.Unlock()

	if monitor == nil {
		return nil, &scanner.ScanError{Kind: scanner.KindPermissionDenied, Err: fmt.Errorf("camera access not requested")}
	}

	var devices []scanner.CameraDevice
	for _, device := range monitor.GetDevices() {
		id := device.GetDisplayName()
		if props := device.GetProperties(); props != nil {
			if path, err := props.GetValue("device.path"); err == nil {
				if s, ok := path.(string); ok && s != "" {
					id = s
				}
			}
		}
		devices = append(devices, scanner.CameraDevice{ID: id, Label: device.GetDisplayName()})
	}
	return devices, nil
}

// Close stops the device monitor.
func (l *Lister) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.monitor != nil {
		l.monitor.Stop()
		l.monitor = nil
	}
}

// Source captures RGB frames from a v4l2 device.
//
// Pipeline: v4l2src → videoconvert → videoscale → capsfilter(RGB) → appsink
type Source struct {
	cfg Config

	mu       sync.Mutex
	pipeline *gst.Pipeline
	frames   chan scanner.Frame
	closed   atomic.Bool

	framesDropped uint64
}

func NewSource(cfg Config) *Source {
	return &Source{cfg: cfg.withDefaults()}
}

// Start builds and starts the capture pipeline for the device. The returned
// channel stays open until Stop. Frames are sent non-blocking; when the
// consumer lags, frames are dropped rather than queued.
func (s *Source) Start(_ context.Context, device scanner.CameraDevice) (<-chan scanner.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pipeline != nil {
		return nil, &scanner.ScanError{Kind: scanner.KindOther, Err: fmt.Errorf("camera stream already running")}
	}

	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, &scanner.ScanError{Kind: scanner.KindCameraUnsupported, Err: fmt.Errorf("create pipeline: %w", err)}
	}

	src, err := gst.NewElement("v4l2src")
	if err != nil {
		return nil, &scanner.ScanError{Kind: scanner.KindCameraUnsupported, Err: fmt.Errorf("create v4l2src: %w", err)}
	}
	src.SetProperty("device", device.ID)

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, &scanner.ScanError{Kind: scanner.KindCameraUnsupported, Err: fmt.Errorf("create videoconvert: %w", err)}
	}

	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, &scanner.ScanError{Kind: scanner.KindCameraUnsupported, Err: fmt.Errorf("create videoscale: %w", err)}
	}

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, &scanner.ScanError{Kind: scanner.KindCameraUnsupported, Err: fmt.Errorf("create capsfilter: %w", err)}
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString(rgbCaps(s.cfg.Width, s.cfg.Height)))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, &scanner.ScanError{Kind: scanner.KindCameraUnsupported, Err: fmt.Errorf("create appsink: %w", err)}
	}
	appsink.SetProperty("sync", false)
	appsink.SetProperty("max-buffers", 1) // keep only the latest frame
	appsink.SetProperty("drop", true)

	pipeline.AddMany(src, converter, scaler, capsfilter, appsink.Element)
	if err := gst.ElementLinkMany(src, converter, scaler, capsfilter, appsink.Element); err != nil {
		return nil, &scanner.ScanError{Kind: scanner.KindCameraUnsupported, Err: fmt.Errorf("link pipeline: %w", err)}
	}

	frames := make(chan scanner.Frame, 4)
	width, height := s.cfg.Width, s.cfg.Height

	appsink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			return s.onNewSample(sink, frames, width, height)
		},
	})

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return nil, &scanner.ScanError{Kind: scanner.KindPermissionDenied, Err: fmt.Errorf("start pipeline: %w", err)}
	}

	s.pipeline = pipeline
	s.frames = frames
	s.closed.Store(false)

	slog.Info("camera: capture started", "device", device.ID, "width", width, "height", height)
	return frames, nil
}

// Stop tears down the pipeline and closes the frame channel. Idempotent;
// safe with no capture in progress.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pipeline != nil {
		if err := s.pipeline.SetState(gst.StateNull); err != nil {
			slog.Warn("camera: pipeline teardown failed", "error", err)
		}
		s.pipeline = nil
	}
	if s.frames != nil && s.closed.CompareAndSwap(false, true) {
		close(s.frames)
		s.frames = nil
	}
	return nil
}

func (s *Source) onNewSample(sink *app.Sink, frames chan<- scanner.Frame, width, height int) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		// A single bad sample should not kill the stream.
		return gst.FlowOK
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) == 0 {
		buffer.Unmap()
		return gst.FlowOK
	}

	frameData := make([]byte, len(data))
	copy(frameData, data)
	buffer.Unmap()

	if s.closed.Load() {
		return gst.FlowEOS
	}

	select {
	case frames <- scanner.Frame{Width: width, Height: height, Data: frameData}:
	default:
		dropped := atomic.AddUint64(&s.framesDropped, 1)
		slog.Debug("camera: dropping frame, channel full", "dropped_total", dropped)
	}
	return gst.FlowOK
}

func rgbCaps(width, height int) string {
	return fmt.Sprintf("video/x-raw,format=RGB,width=%d,height=%d", width, height)
}

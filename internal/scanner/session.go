// Package scanner owns barcode acquisition: camera device selection, the
// frame-decoding engine, and the scan session state machine driven by the
// UI surface.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// State is the scan session lifecycle. Idle is both the initial state and the
// state returned to after StopScanning.
type State int

const (
	StateIdle State = iota
	StateRequestingPermission
	StateDeviceSelection
	StateScanning
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingPermission:
		return "requesting_permission"
	case StateDeviceSelection:
		return "device_selection"
	case StateScanning:
		return "scanning"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrScanInProgress reports a second StartScanning while one is in flight.
// This is a precondition violation: the UI gates the start action on the
// camera not being shown, so hitting it means a programming error upstream.
var ErrScanInProgress = errors.New("scan already in progress")

// StateListener observes session transitions; message is the user-displayable
// error text when state is StateError, empty otherwise.
type StateListener func(state State, message string)

// Session orchestrates one scan: permission, device selection, decoder
// lifecycle. Success is terminal; a fresh StartScanning is needed to scan
// again. At most one decode is in flight per session.
type Session struct {
	devices DeviceLister
	decoder Decoder

	mu       sync.Mutex
	state    State
	lastErr  string
	cancel   context.CancelFunc
	stopping bool
	listener StateListener
}

func NewSession(devices DeviceLister, decoder Decoder) *Session {
	return &Session{devices: devices, decoder: decoder, state: StateIdle}
}

// SetListener registers the transition observer. Must be set before
// StartScanning; transitions are delivered in order, on the scanning
// goroutine.
func (s *Session) SetListener(fn StateListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
}

// State returns the current state and, in StateError, the display message.
func (s *Session) State() (State, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastErr
}

// StartScanning walks the session through permission, device selection and
// decoding, and returns the decoded barcode text. It blocks until a symbol
// is decoded, a failure occurs, or StopScanning cancels the attempt; the
// cancelled case returns a KindStreamEnded error the caller must treat as a
// silent outcome.
func (s *Session) StartScanning(ctx context.Context, sink VideoSink) (string, error) {
	s.mu.Lock()
	if s.state != StateIdle && s.state != StateSuccess && s.state != StateError {
		s.mu.Unlock()
		return "", ErrScanInProgress
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopping = false
	s.mu.Unlock()
	defer cancel()

	s.setState(StateRequestingPermission, "")
	if err := s.devices.RequestAccess(ctx); err != nil {
		return "", s.fail(classify(err, KindPermissionDenied))
	}

	s.setState(StateDeviceSelection, "")
	devices, err := s.devices.ListCameras(ctx)
	if err != nil {
		return "", s.fail(classify(err, KindNoCameraFound))
	}
	if len(devices) == 0 {
		return "", s.fail(newScanError(KindNoCameraFound, fmt.Errorf("no video input devices")))
	}
	device := PickPreferred(devices)

	s.setState(StateScanning, "")
	barcode, err := s.decoder.Decode(ctx, device, sink)
	if err != nil {
		return "", s.fail(err)
	}

	// Release the camera stream before reporting success.
	if err := s.decoder.Stop(); err != nil {
		log.Printf("decoder stop after success: %v", err)
	}
	s.setState(StateSuccess, "")
	return barcode, nil
}

// StopScanning cancels any in-flight operation, releases the camera stream
// and returns the session to Idle. Callable from any state; never fails.
func (s *Session) StopScanning() {
	s.mu.Lock()
	s.stopping = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	if err := s.decoder.Stop(); err != nil {
		log.Printf("decoder stop: %v", err)
	}
	s.setState(StateIdle, "")
}

// fail records the error state unless the failure is the echo of an
// intentional stop, which is swallowed.
func (s *Session) fail(err error) error {
	s.mu.Lock()
	stopping := s.stopping
	s.mu.Unlock()

	if stopping && KindOf(err) == KindStreamEnded {
		return err
	}

	if stopErr := s.decoder.Stop(); stopErr != nil {
		log.Printf("decoder stop after failure: %v", stopErr)
	}
	s.setState(StateError, err.Error())
	return err
}

func (s *Session) setState(state State, message string) {
	s.mu.Lock()
	if s.stopping && state != StateIdle {
		// A stopped session stays Idle; late transitions from the
		// in-flight attempt are discarded.
		s.mu.Unlock()
		return
	}
	s.state = state
	s.lastErr = message
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener(state, message)
	}
}

// classify wraps plain errors with a default kind, keeping explicit
// ScanError kinds intact.
func classify(err error, fallback ErrorKind) error {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return newScanError(KindStreamEnded, err)
	}
	return newScanError(fallback, err)
}

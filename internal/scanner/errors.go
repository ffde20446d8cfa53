package scanner

import (
	"errors"
	"fmt"
)

// ErrorKind classifies scan failures so callers can dispatch on the kind
// instead of matching raw messages.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindPermissionDenied
	KindNoCameraFound
	KindCameraUnsupported
	// KindStreamEnded marks a decode that ended because its stream went away.
	// When it is the side effect of an intentional stop it is a silent no-op
	// outcome, not a user-facing error.
	KindStreamEnded
)

func (k ErrorKind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission denied"
	case KindNoCameraFound:
		return "no camera found"
	case KindCameraUnsupported:
		return "camera unsupported"
	case KindStreamEnded:
		return "stream ended"
	default:
		return "scan failed"
	}
}

// ScanError carries the failure kind through the session controller up to the
// UI-facing surface.
type ScanError struct {
	Kind ErrorKind
	Err  error
}

func (e *ScanError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from an error chain, defaulting to KindOther.
func KindOf(err error) ErrorKind {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Kind
	}
	return KindOther
}

func newScanError(kind ErrorKind, err error) *ScanError {
	return &ScanError{Kind: kind, Err: err}
}

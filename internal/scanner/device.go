package scanner

import (
	"context"
	"strings"
)

// CameraDevice is one available video-input device. Devices are enumerated
// fresh on each scan start: labels are often blank before camera permission
// is granted, so a cached list would be stale.
type CameraDevice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DeviceLister enumerates camera hardware. RequestAccess must succeed before
// ListCameras, because device labels are unreliable pre-permission.
type DeviceLister interface {
	RequestAccess(ctx context.Context) error
	ListCameras(ctx context.Context) ([]CameraDevice, error)
}

// backFacingHints mark rear cameras, which are preferred for barcode work.
var backFacingHints = []string{"back", "rear", "environment"}

// PickPreferred selects the first device whose label looks like a rear-facing
// camera, falling back to the first device in enumeration order. Deterministic
// for a given input sequence.
func PickPreferred(devices []CameraDevice) CameraDevice {
	for _, device := range devices {
		label := strings.ToLower(device.Label)
		for _, hint := range backFacingHints {
			if strings.Contains(label, hint) {
				return device
			}
		}
	}
	return devices[0]
}

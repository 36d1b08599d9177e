package device

import (
	"fmt"

	"github.com/notargets/gocca"
)

// fallbackBackends are tried in order when no device properties are given
var fallbackBackends = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// NewDevice creates an OCCA device from props, or the first backend that
// works among OpenMP, CUDA and Serial when props is empty
func NewDevice(props string) (*gocca.OCCADevice, error) {
	if props != "" {
		device, err := gocca.NewDevice(props)
		if err != nil {
			return nil, fmt.Errorf("failed to create device %s: %w", props, err)
		}
		return device, nil
	}

	var lastErr error
	for _, p := range fallbackBackends {
		device, err := gocca.NewDevice(p)
		if err == nil {
			return device, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to create any device: %w", lastErr)
}

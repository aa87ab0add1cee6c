package babyrest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-ble/ble"
)

// Find scans for the device with the given address and returns its
// advertised local name.
//
// Scanning stops as soon as a matching advertisement is seen or the
// context expires. The address comparison is case-insensitive.
//
// Parameters:
//   - ctx: Bounds the scan; use context.WithTimeout
//   - address: Bluetooth MAC address to look for
//
// Returns:
//   - string: Advertised local name (may be empty)
//   - error: ErrDeviceNotFound if the scan ends without a sighting
func Find(ctx context.Context, address string) (string, error) {
	if err := InitTransport(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var name string
	found := false

	handler := func(adv ble.Advertisement) {
		name = adv.LocalName()
		found = true
		cancel()
	}
	filter := func(adv ble.Advertisement) bool {
		return strings.EqualFold(adv.Addr().String(), address)
	}

	err := ble.Scan(scanCtx, false, handler, filter)
	if found {
		return name, nil
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: scanning: %w", ErrTransport, err)
	}
	return "", fmt.Errorf("%w: %s", ErrDeviceNotFound, address)
}

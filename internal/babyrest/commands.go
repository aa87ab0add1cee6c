package babyrest

import (
	"context"
	"fmt"
)

// Command verbs accepted by the TX characteristic. Commands are short
// ASCII strings with hex-encoded arguments.
const (
	cmdPower  = "SI" // SI01 on, SI00 off
	cmdSound  = "SN" // SN<track>
	cmdVolume = "SV" // SV<volume>
	cmdColour = "SC" // SC<r><g><b><brightness>
)

// powerCommand builds the power command payload.
func powerCommand(on bool) []byte {
	value := 0
	if on {
		value = 1
	}
	return []byte(fmt.Sprintf("%s%02x", cmdPower, value))
}

// soundCommand builds the sound track command payload.
func soundCommand(track int) []byte {
	return []byte(fmt.Sprintf("%s%02x", cmdSound, track))
}

// volumeCommand builds the volume command payload.
func volumeCommand(volume int) []byte {
	return []byte(fmt.Sprintf("%s%02x", cmdVolume, volume))
}

// colourCommand builds the colour and brightness command payload.
func colourCommand(red, green, blue, brightness int) []byte {
	return []byte(fmt.Sprintf("%s%02x%02x%02x%02x", cmdColour, red, green, blue, brightness))
}

// sendCommand writes a command and refreshes the cached state so it
// reflects the device's new settings.
func (d *Device) sendCommand(ctx context.Context, payload []byte) error {
	if err := d.writeTX(ctx, payload); err != nil {
		return err
	}
	_, err := d.RefreshData(ctx)
	return err
}

// SetPower turns the light on or off.
//
// Parameters:
//   - ctx: Bounds the write and the follow-up refresh
//   - on: true to turn the light on
//
// Returns:
//   - error: ErrTransport on link failure, ctx.Err() on timeout
func (d *Device) SetPower(ctx context.Context, on bool) error {
	return d.sendCommand(ctx, powerCommand(on))
}

// SetSound selects the active sound track. Track 0 stops playback.
func (d *Device) SetSound(ctx context.Context, track int) error {
	if track < 0 || track > 255 {
		return fmt.Errorf("%w: sound track %d", ErrOutOfRange, track)
	}
	return d.sendCommand(ctx, soundCommand(track))
}

// SetVolume sets the sound volume (0-255).
func (d *Device) SetVolume(ctx context.Context, volume int) error {
	if volume < 0 || volume > 255 {
		return fmt.Errorf("%w: volume %d", ErrOutOfRange, volume)
	}
	return d.sendCommand(ctx, volumeCommand(volume))
}

// SetColour sets the light colour and brightness in one command.
//
// All channels are 0-255. Brightness 0 with power on leaves the light
// effectively dark; use SetPower to switch it off properly.
func (d *Device) SetColour(ctx context.Context, red, green, blue, brightness int) error {
	for _, v := range []int{red, green, blue, brightness} {
		if v < 0 || v > 255 {
			return fmt.Errorf("%w: colour channel %d", ErrOutOfRange, v)
		}
	}
	return d.sendCommand(ctx, colourCommand(red, green, blue, brightness))
}

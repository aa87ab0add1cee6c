package babyrest

import "fmt"

// Feedback payload layout. The device returns a fixed-format buffer with
// section markers: 'C' (colour), 'S' (sound), 'P' (power). Values follow
// each marker at fixed offsets.
const (
	feedbackMinLength = 15

	colourMarkerIndex = 5
	colourMarker      = 0x43 // 'C'
	redIndex          = 6
	greenIndex        = 7
	blueIndex         = 8
	brightnessIndex   = 9

	soundMarkerIndex = 10
	soundMarker      = 0x53 // 'S'
	soundIndex       = 11
	volumeIndex      = 12

	powerMarkerIndex = 13
	powerMarker      = 0x50 // 'P'
	powerIndex       = 14

	// powerOffMask: either bit set in the power byte means the light is off.
	powerOffMask = 0xC0
)

// State is a decoded snapshot of the night light.
type State struct {
	// Power is true when the light is on.
	Power bool

	// Red, Green, Blue are the colour channels (0-255).
	Red   int
	Green int
	Blue  int

	// Brightness is the light intensity (0-255).
	Brightness int

	// Sound is the active sound track number (0 = none).
	Sound int

	// Volume is the sound volume (0-255).
	Volume int
}

// ParseFeedback decodes a feedback characteristic payload into a State.
//
// The payload must be at least 15 bytes and carry the three section
// markers at their fixed positions. Anything else returns
// ErrInvalidFeedback.
//
// Parameters:
//   - payload: Raw bytes read from the feedback characteristic
//
// Returns:
//   - State: Decoded device state
//   - error: ErrInvalidFeedback if the layout does not match
func ParseFeedback(payload []byte) (State, error) {
	if len(payload) < feedbackMinLength {
		return State{}, fmt.Errorf("%w: %d bytes, need %d", ErrInvalidFeedback, len(payload), feedbackMinLength)
	}
	if payload[colourMarkerIndex] != colourMarker {
		return State{}, fmt.Errorf("%w: colour marker not found", ErrInvalidFeedback)
	}
	if payload[soundMarkerIndex] != soundMarker {
		return State{}, fmt.Errorf("%w: sound marker not found", ErrInvalidFeedback)
	}
	if payload[powerMarkerIndex] != powerMarker {
		return State{}, fmt.Errorf("%w: power marker not found", ErrInvalidFeedback)
	}

	return State{
		Power:      payload[powerIndex]&powerOffMask == 0,
		Red:        int(payload[redIndex]),
		Green:      int(payload[greenIndex]),
		Blue:       int(payload[blueIndex]),
		Brightness: int(payload[brightnessIndex]),
		Sound:      int(payload[soundIndex]),
		Volume:     int(payload[volumeIndex]),
	}, nil
}

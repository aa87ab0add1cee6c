package babyrest

import (
	"context"
	"errors"
	"testing"
)

func TestPowerCommand(t *testing.T) {
	if got := string(powerCommand(true)); got != "SI01" {
		t.Errorf("powerCommand(true) = %q, want %q", got, "SI01")
	}
	if got := string(powerCommand(false)); got != "SI00" {
		t.Errorf("powerCommand(false) = %q, want %q", got, "SI00")
	}
}

func TestSoundCommand(t *testing.T) {
	tests := []struct {
		track int
		want  string
	}{
		{0, "SN00"},
		{3, "SN03"},
		{255, "SNff"},
	}

	for _, tt := range tests {
		if got := string(soundCommand(tt.track)); got != tt.want {
			t.Errorf("soundCommand(%d) = %q, want %q", tt.track, got, tt.want)
		}
	}
}

func TestVolumeCommand(t *testing.T) {
	tests := []struct {
		volume int
		want   string
	}{
		{0, "SV00"},
		{64, "SV40"},
		{255, "SVff"},
	}

	for _, tt := range tests {
		if got := string(volumeCommand(tt.volume)); got != tt.want {
			t.Errorf("volumeCommand(%d) = %q, want %q", tt.volume, got, tt.want)
		}
	}
}

func TestColourCommand(t *testing.T) {
	tests := []struct {
		name                        string
		red, green, blue, brightess int
		want                        string
	}{
		{"warm white", 255, 128, 0, 200, "SCff8000c8"},
		{"all zero", 0, 0, 0, 0, "SC00000000"},
		{"full", 255, 255, 255, 255, "SCffffffff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(colourCommand(tt.red, tt.green, tt.blue, tt.brightess))
			if got != tt.want {
				t.Errorf("colourCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandRangeValidation(t *testing.T) {
	// A disconnected device rejects out-of-range arguments before
	// touching the link.
	d := &Device{}
	ctx := context.Background()

	if err := d.SetSound(ctx, 256); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetSound(256) error = %v, want ErrOutOfRange", err)
	}
	if err := d.SetVolume(ctx, -1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetVolume(-1) error = %v, want ErrOutOfRange", err)
	}
	if err := d.SetColour(ctx, 0, 0, 300, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetColour(blue=300) error = %v, want ErrOutOfRange", err)
	}
}

func TestDevice_NotConnected(t *testing.T) {
	d := &Device{}
	ctx := context.Background()

	if _, err := d.RefreshData(ctx); !errors.Is(err, ErrNotConnected) {
		t.Errorf("RefreshData() on disconnected device error = %v, want ErrNotConnected", err)
	}
	if err := d.SetPower(ctx, true); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SetPower() on disconnected device error = %v, want ErrNotConnected", err)
	}
	if err := d.Disconnect(); err != nil {
		t.Errorf("Disconnect() on disconnected device error = %v", err)
	}
}

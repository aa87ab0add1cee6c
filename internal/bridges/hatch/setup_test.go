package hatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/FutureGUIs/hatchrest/internal/babyrest"
)

func fakeDialer(dev *fakeDevice, err error) Dialer {
	return func(ctx context.Context, address, name string) (Device, error) {
		if err != nil {
			return nil, err
		}
		return dev, nil
	}
}

func TestSetup_Success(t *testing.T) {
	dev := &fakeDevice{}
	dev.setState(babyrest.State{Power: true})
	broker := newMockMQTT()

	entry, err := Setup(context.Background(), SetupOptions{
		Address:  "AA:BB:CC:DD:EE:FF",
		UniqueID: "aa:bb:cc:dd:ee:ff",
		MQTT:     broker,
		Dial:     fakeDialer(dev, nil),
	})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer entry.Coordinator.Stop()

	if entry.ID == "" {
		t.Error("entry ID not generated")
	}
	if entry.UniqueID != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("UniqueID = %q", entry.UniqueID)
	}
	if entry.Name != "Nursery Rest" {
		t.Errorf("Name = %q, want advertised name", entry.Name)
	}
	if !entry.Coordinator.HasData() {
		t.Error("coordinator has no data after setup")
	}
	if !entry.Switch.IsOn() {
		t.Error("switch state not seeded from initial refresh")
	}

	broker.mu.Lock()
	_, subscribed := broker.subs["hatchrest/command/aa:bb:cc:dd:ee:ff"]
	broker.mu.Unlock()
	if !subscribed {
		t.Error("switch not subscribed to its command topic")
	}
}

func TestSetup_ConfiguredNameWins(t *testing.T) {
	dev := &fakeDevice{}

	entry, err := Setup(context.Background(), SetupOptions{
		Address:  "AA:BB:CC:DD:EE:FF",
		UniqueID: "id",
		Name:     "Bedside Light",
		MQTT:     newMockMQTT(),
		Dial:     fakeDialer(dev, nil),
	})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer entry.Coordinator.Stop()

	if entry.Name != "Bedside Light" {
		t.Errorf("Name = %q, want configured name", entry.Name)
	}
}

func TestSetup_MissingIdentity(t *testing.T) {
	_, err := Setup(context.Background(), SetupOptions{
		Address: "AA:BB:CC:DD:EE:FF",
		MQTT:    newMockMQTT(),
		Dial:    fakeDialer(&fakeDevice{}, nil),
	})
	if !errors.Is(err, ErrMissingIdentity) {
		t.Errorf("Setup() error = %v, want ErrMissingIdentity", err)
	}
}

func TestSetup_DialFailureNotReady(t *testing.T) {
	dialErr := errors.New("dial tcp: host unreachable")

	_, err := Setup(context.Background(), SetupOptions{
		Address:  "AA:BB:CC:DD:EE:FF",
		UniqueID: "id",
		MQTT:     newMockMQTT(),
		Dial:     fakeDialer(nil, dialErr),
	})

	var notReady *NotReadyError
	if !errors.As(err, &notReady) {
		t.Fatalf("Setup() error = %T, want *NotReadyError", err)
	}
	if notReady.Address != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("Address = %q", notReady.Address)
	}
	if !strings.Contains(err.Error(), "AA:BB:CC:DD:EE:FF") {
		t.Errorf("Error() = %q, want the address included", err.Error())
	}
	if !errors.Is(err, dialErr) {
		t.Error("expected the dial error to survive errors.Is")
	}
}

func TestSetup_InitialRefreshFailureNotReady(t *testing.T) {
	dev := &fakeDevice{}
	dev.setError(babyrest.ErrTransport)

	_, err := Setup(context.Background(), SetupOptions{
		Address:  "AA:BB:CC:DD:EE:FF",
		UniqueID: "id",
		MQTT:     newMockMQTT(),
		Dial:     fakeDialer(dev, nil),
	})

	var notReady *NotReadyError
	if !errors.As(err, &notReady) {
		t.Fatalf("Setup() error = %T, want *NotReadyError", err)
	}

	dev.mu.Lock()
	disconnected := dev.disconnected
	dev.mu.Unlock()
	if !disconnected {
		t.Error("device not disconnected after failed initial refresh")
	}
}

package hatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FutureGUIs/hatchrest/internal/babyrest"
	"github.com/FutureGUIs/hatchrest/internal/infrastructure/mqtt"
)

// commandTimeout bounds a single command write plus its follow-up refresh.
const commandTimeout = 5 * time.Second

// CommandClient is the device surface used for commands.
// Satisfied by *babyrest.Device; mocked in tests.
type CommandClient interface {
	SetPower(ctx context.Context, on bool) error
	SetColour(ctx context.Context, red, green, blue, brightness int) error
	SetSound(ctx context.Context, track int) error
	SetVolume(ctx context.Context, volume int) error
}

// MQTTClient is the transport surface the bridge needs.
// Satisfied by *mqtt.Client; mocked in tests.
type MQTTClient interface {
	// Publish sends a JSON message to a topic.
	Publish(topic string, payload any, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, handler func(topic string, payload []byte) error) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// Switch exposes the night light's power state over MQTT.
//
// It publishes a retained state message after every successful refresh
// and executes commands received on the device's command topic. Beyond
// plain on/off it also accepts colour, sound and volume commands, since
// the device applies them through the same characteristic.
type Switch struct {
	*Entity

	device CommandClient
	mqtt   MQTTClient
	logger Logger
}

// NewSwitch creates a switch entity for a device.
//
// Parameters:
//   - entity: Identity and coordinator binding
//   - device: Command surface for the device
//   - mqttClient: Transport for state and commands
//   - logger: Optional structured logger
func NewSwitch(entity *Entity, device CommandClient, mqttClient MQTTClient, logger Logger) *Switch {
	return &Switch{
		Entity: entity,
		device: device,
		mqtt:   mqttClient,
		logger: logger,
	}
}

// Start wires the switch into MQTT: it subscribes to the device's
// command topic and registers a coordinator listener that publishes
// state after each successful refresh.
func (s *Switch) Start() error {
	topic := mqtt.Topics{}.DeviceCommand(s.uniqueID)
	if err := s.mqtt.Subscribe(topic, s.handleCommand); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	s.coordinator.AddListener(s.publishState)

	if s.logger != nil {
		s.logger.Info("switch started", "device", s.uniqueID, "topic", topic)
	}
	return nil
}

// IsOn reports the light's power state from the last good snapshot.
func (s *Switch) IsOn() bool {
	return s.coordinator.Snapshot().Power
}

// publishState is the coordinator listener. Failed refreshes publish
// nothing; the previously retained message stays current on the broker.
func (s *Switch) publishState(state babyrest.State, err error) {
	if err != nil {
		return
	}

	msg := NewStateMessage(s.uniqueID, s.address, state)
	topic := mqtt.Topics{}.DeviceState(s.uniqueID)
	if pubErr := s.mqtt.Publish(topic, msg, true); pubErr != nil {
		if s.logger != nil {
			s.logger.Error("failed to publish state", "device", s.uniqueID, "error", pubErr)
		}
	}
}

// handleCommand executes a command message from the core.
func (s *Switch) handleCommand(topic string, payload []byte) error {
	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("parsing command: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	switch cmd.Command {
	case CommandTurnOn:
		err = s.device.SetPower(ctx, true)
	case CommandTurnOff:
		err = s.device.SetPower(ctx, false)
	case CommandSetColour:
		err = s.setColour(ctx, cmd.Parameters)
	case CommandSetSound:
		err = s.setSound(ctx, cmd.Parameters)
	case CommandSetVolume:
		err = s.setVolume(ctx, cmd.Parameters)
	default:
		return fmt.Errorf("unknown command %q", cmd.Command)
	}

	if err != nil {
		if s.logger != nil {
			s.logger.Error("command failed", "device", s.uniqueID, "command", cmd.Command, "error", err)
		}
		return err
	}

	// Fan the new state out immediately rather than waiting for the
	// next scheduled poll.
	if refreshErr := s.coordinator.Refresh(); refreshErr != nil {
		return refreshErr
	}

	if s.logger != nil {
		s.logger.Debug("command executed", "device", s.uniqueID, "command", cmd.Command)
	}
	return nil
}

// setColour applies a set_colour command.
func (s *Switch) setColour(ctx context.Context, params map[string]any) error {
	red, ok := intParam(params, "red")
	if !ok {
		return fmt.Errorf("set_colour: missing red")
	}
	green, ok := intParam(params, "green")
	if !ok {
		return fmt.Errorf("set_colour: missing green")
	}
	blue, ok := intParam(params, "blue")
	if !ok {
		return fmt.Errorf("set_colour: missing blue")
	}
	brightness, ok := intParam(params, "brightness")
	if !ok {
		// Keep current brightness when not specified
		brightness = s.coordinator.Snapshot().Brightness
	}
	return s.device.SetColour(ctx, red, green, blue, brightness)
}

// setSound applies a set_sound command.
func (s *Switch) setSound(ctx context.Context, params map[string]any) error {
	track, ok := intParam(params, "track")
	if !ok {
		return fmt.Errorf("set_sound: missing track")
	}
	return s.device.SetSound(ctx, track)
}

// setVolume applies a set_volume command.
func (s *Switch) setVolume(ctx context.Context, params map[string]any) error {
	volume, ok := intParam(params, "volume")
	if !ok {
		return fmt.Errorf("set_volume: missing volume")
	}
	return s.device.SetVolume(ctx, volume)
}

// intParam extracts an integer parameter from a decoded JSON map.
// JSON numbers arrive as float64.
func intParam(params map[string]any, key string) (int, bool) {
	if params == nil {
		return 0, false
	}
	value, ok := params[key]
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

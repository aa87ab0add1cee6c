package hatch

// Device descriptor constants.
const (
	// Domain identifies this integration in descriptor identifiers.
	Domain = "hatch"

	// manufacturer and model describe the hardware.
	manufacturer = "Hatch"
	model        = "Rest"

	// connectionBluetooth is the connection type key in descriptors.
	connectionBluetooth = "bluetooth"

	// fallbackDeviceName is used when the device never advertised a name.
	fallbackDeviceName = "Hatch Rest"
)

// Identifier is a (domain, id) pair identifying a device within the
// home automation core.
type Identifier struct {
	Domain string `json:"domain"`
	ID     string `json:"id"`
}

// Connection is a (type, value) pair describing a physical connection.
type Connection struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// DeviceInfo is the device registry descriptor for a night light.
type DeviceInfo struct {
	// Identifiers links this device to the integration.
	Identifiers []Identifier `json:"identifiers"`

	// Connections records the Bluetooth address.
	Connections []Connection `json:"connections"`

	// Name is the display name.
	Name string `json:"name"`

	// Manufacturer is always "Hatch".
	Manufacturer string `json:"manufacturer"`

	// Model is always "Rest".
	Model string `json:"model"`
}

// Entity ties a coordinator to a device's identity. Concrete entities
// (the switch) embed it.
type Entity struct {
	coordinator *Coordinator
	uniqueID    string
	address     string
	name        string
}

// NewEntity creates an entity for the device behind the coordinator.
//
// Parameters:
//   - coordinator: Polling coordinator for the device
//   - uniqueID: Stable unique identifier (typically the lowercased address)
//   - address: Bluetooth MAC address
//   - name: Advertised device name (may be empty)
func NewEntity(coordinator *Coordinator, uniqueID, address, name string) *Entity {
	return &Entity{
		coordinator: coordinator,
		uniqueID:    uniqueID,
		address:     address,
		name:        name,
	}
}

// UniqueID returns the entity's stable unique identifier.
func (e *Entity) UniqueID() string {
	return e.uniqueID
}

// DeviceName returns the display name: the advertised name when known,
// otherwise a generic fallback.
func (e *Entity) DeviceName() string {
	if e.name != "" {
		return e.name
	}
	return fallbackDeviceName
}

// DeviceInfo builds the device registry descriptor.
//
// Returns:
//   - DeviceInfo: Descriptor with identifiers, connections, name,
//     manufacturer and model
//   - error: ErrMissingIdentity if the entity has no unique ID or address
func (e *Entity) DeviceInfo() (DeviceInfo, error) {
	if e.uniqueID == "" || e.address == "" {
		return DeviceInfo{}, ErrMissingIdentity
	}

	return DeviceInfo{
		Identifiers: []Identifier{
			{Domain: Domain, ID: e.uniqueID},
		},
		Connections: []Connection{
			{Type: connectionBluetooth, Value: e.address},
		},
		Name:         e.DeviceName(),
		Manufacturer: manufacturer,
		Model:        model,
	}, nil
}

// Available reports whether the entity's data is current: at least one
// refresh has succeeded and the most recent one did not fail.
func (e *Entity) Available() bool {
	return e.coordinator.HasData() && e.coordinator.LastUpdateSuccess()
}

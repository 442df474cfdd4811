package protocol

import "fmt"

// Response is a typed view over one incoming datagram.
type Response interface {
	CommandID() CommandID
	MessageID() byte
	Frame() *Datagram
}

// base carries the decoded datagram every response type wraps. Short data
// sections yield zero values from the accessors rather than panics.
type base struct {
	frame *Datagram
}

func (b base) CommandID() CommandID { return b.frame.CommandID() }
func (b base) MessageID() byte      { return b.frame.MessageID() }
func (b base) Frame() *Datagram     { return b.frame }

func (b base) dataByte(i int) byte {
	data := b.frame.Data()
	if i < 0 || i >= len(data) {
		return 0
	}
	return data[i]
}

// Acknowledgement confirms an operation that carries no payload of its own
// (login, heartbeat, key toggles).
type Acknowledgement struct {
	base
}

func (r *Acknowledgement) String() string {
	return fmt.Sprintf("Acknowledgement{id=0x%02X}", r.MessageID())
}

// GenericUnusedResponse wraps any incoming command id without a dedicated
// type, keeping the raw frame available. Unknown-but-legal traffic from
// newer firmware lands here instead of failing.
type GenericUnusedResponse struct {
	base
}

func (r *GenericUnusedResponse) String() string {
	return fmt.Sprintf("GenericUnused{cmd=%s, id=0x%02X}", r.CommandID(), r.MessageID())
}

// RoomCountResponse lists the room ids present on the box. The first data
// byte is the room total; the ids follow.
type RoomCountResponse struct {
	base
}

// Rooms returns the room id list.
func (r *RoomCountResponse) Rooms() []byte {
	data := r.frame.Data()
	if len(data) <= 1 {
		return nil
	}
	return data[1:]
}

// Total returns the number of rooms reported.
func (r *RoomCountResponse) Total() int { return len(r.Rooms()) }

func (r *RoomCountResponse) String() string {
	return fmt.Sprintf("RoomCount{total=%d}", r.Total())
}

// NodeCountResponse lists the node ids present on the box, laid out like
// RoomCountResponse.
type NodeCountResponse struct {
	base
}

// Nodes returns the node id list.
func (r *NodeCountResponse) Nodes() []byte {
	data := r.frame.Data()
	if len(data) <= 1 {
		return nil
	}
	return data[1:]
}

// Total returns the number of nodes reported.
func (r *NodeCountResponse) Total() int { return len(r.Nodes()) }

func (r *NodeCountResponse) String() string {
	return fmt.Sprintf("NodeCount{total=%d}", r.Total())
}

// RoomMetaDataResponse carries one room's id and display name.
type RoomMetaDataResponse struct {
	base
}

// RoomID returns the room this metadata belongs to.
func (r *RoomMetaDataResponse) RoomID() byte { return r.dataByte(0) }

// Name returns the room's display name.
func (r *RoomMetaDataResponse) Name() string {
	data := r.frame.Data()
	if len(data) <= 1 {
		return ""
	}
	return decodeUTF16LE(data[1:])
}

func (r *RoomMetaDataResponse) String() string {
	return fmt.Sprintf("RoomMetaData{room=%d, name=%q}", r.RoomID(), r.Name())
}

// KeyStatusResponse reports the power state of one key. The same frame
// shape serves both solicited status queries and the unsolicited updates
// the box pushes when a physical key changes.
type KeyStatusResponse struct {
	base
}

// NodeID returns the node the key belongs to.
func (r *KeyStatusResponse) NodeID() byte { return r.dataByte(0) }

// KeyID returns the key index on the node.
func (r *KeyStatusResponse) KeyID() byte { return r.dataByte(1) }

// Power returns the reported power state.
func (r *KeyStatusResponse) Power() KeyPowerStatus { return KeyPowerStatus(r.dataByte(2)) }

// IsOn reports whether the key is switched on.
func (r *KeyStatusResponse) IsOn() bool { return r.Power() == PowerOn }

// IsOff reports whether the key is switched off.
func (r *KeyStatusResponse) IsOff() bool { return r.Power() == PowerOff }

// IsReleased reports whether the key is in the released state.
func (r *KeyStatusResponse) IsReleased() bool { return r.Power() == PowerReleased }

func (r *KeyStatusResponse) String() string {
	return fmt.Sprintf("KeyStatus{node=%d, key=%d, power=%s}", r.NodeID(), r.KeyID(), r.Power())
}

// NodeMetaDataResponse describes one node: identity, keys, lock and LED
// state. The fixed header is followed by one key-type byte per key, then a
// trailing block addressed relative to the key list.
type NodeMetaDataResponse struct {
	base
}

// Offsets within the data section, confirmed against V1 captures.
const (
	nodeMetaMACIndex       = 1
	nodeMetaMACLength      = 8
	nodeMetaTotalKeysIndex = 10
	nodeMetaKeysIndex      = 11

	// Positions within the trailing block that follows the key list.
	nodeMetaRawLocked  = 0
	nodeMetaRawLED     = 1
	nodeMetaRawVersion = 3
	nodeMetaRawRoomID  = 7
)

// NodeID returns the node id.
func (r *NodeMetaDataResponse) NodeID() byte { return r.dataByte(0) }

// MACAddress returns the node MAC as colon-separated hex.
func (r *NodeMetaDataResponse) MACAddress() string {
	data := r.frame.Data()
	if len(data) < nodeMetaMACIndex+nodeMetaMACLength {
		return ""
	}
	return HexString(data[nodeMetaMACIndex : nodeMetaMACIndex+nodeMetaMACLength])
}

// TotalKeys returns the number of keys on the node.
func (r *NodeMetaDataResponse) TotalKeys() int { return int(r.dataByte(nodeMetaTotalKeysIndex)) }

func (r *NodeMetaDataResponse) atOffset(i int) byte {
	return r.dataByte(nodeMetaKeysIndex + r.TotalKeys() + i)
}

// KeyTypes returns the per-key type byte for each key, indexed by key id.
func (r *NodeMetaDataResponse) KeyTypes() []byte {
	data := r.frame.Data()
	total := r.TotalKeys()
	if len(data) < nodeMetaKeysIndex+total {
		return nil
	}
	return data[nodeMetaKeysIndex : nodeMetaKeysIndex+total]
}

// RoomID returns the room the node is assigned to.
func (r *NodeMetaDataResponse) RoomID() byte { return r.atOffset(nodeMetaRawRoomID) }

// LockStatus returns the node's button lock state.
func (r *NodeMetaDataResponse) LockStatus() LockStatus {
	return LockStatus(r.atOffset(nodeMetaRawLocked))
}

// IsLocked reports whether the node's buttons are locked.
func (r *NodeMetaDataResponse) IsLocked() bool { return r.LockStatus() == Locked }

// LEDLevel returns the panel backlight level.
func (r *NodeMetaDataResponse) LEDLevel() LEDBackgroundBrightness {
	return LEDBackgroundBrightness(r.atOffset(nodeMetaRawLED))
}

// FirmwareVersion returns the node firmware version string.
func (r *NodeMetaDataResponse) FirmwareVersion() string {
	major := r.atOffset(nodeMetaRawVersion)
	minor := r.atOffset(nodeMetaRawVersion + 1)
	patch := r.atOffset(nodeMetaRawVersion + 2)
	return fmt.Sprintf("%d.%d%d", major, minor, patch)
}

func (r *NodeMetaDataResponse) String() string {
	return fmt.Sprintf("NodeMetaData{node=%d, room=%d, keys=%d, locked=%v}",
		r.NodeID(), r.RoomID(), r.TotalKeys(), r.IsLocked())
}

// NodeMetaDataV2Response is the V2 layout of node metadata. The V2 field
// packing has not been mapped yet, so the raw data section is exposed
// as-is.
type NodeMetaDataV2Response struct {
	base
}

// NodeID returns the node id, the one field shared with the V1 layout.
func (r *NodeMetaDataV2Response) NodeID() byte { return r.dataByte(0) }

func (r *NodeMetaDataV2Response) String() string {
	return fmt.Sprintf("NodeMetaDataV2{node=%d, data=%d bytes}", r.NodeID(), len(r.frame.Data()))
}

// KeyParametersResponse carries one key's configuration.
type KeyParametersResponse struct {
	base
}

const keyParamsNameIndex = 12

// NodeID returns the node the key belongs to.
func (r *KeyParametersResponse) NodeID() byte { return r.dataByte(0) }

// KeyID returns the key index on the node.
func (r *KeyParametersResponse) KeyID() byte { return r.dataByte(1) }

// Category returns the key's load category.
func (r *KeyParametersResponse) Category() KeyCategory { return KeyCategory(r.dataByte(2)) }

// DimmerRatio returns the configured dimmer ratio, 0-100.
func (r *KeyParametersResponse) DimmerRatio() byte { return r.dataByte(3) }

// Name returns the key's display name.
func (r *KeyParametersResponse) Name() string {
	data := r.frame.Data()
	if len(data) <= keyParamsNameIndex {
		return ""
	}
	return decodeUTF16LE(data[keyParamsNameIndex:])
}

func (r *KeyParametersResponse) String() string {
	return fmt.Sprintf("KeyParameters{node=%d, key=%d, category=%s, name=%q}",
		r.NodeID(), r.KeyID(), r.Category(), r.Name())
}

// KeyParametersV2Response is the V2 layout of key parameters, raw for now
// like NodeMetaDataV2Response.
type KeyParametersV2Response struct {
	base
}

// NodeID returns the node the key belongs to.
func (r *KeyParametersV2Response) NodeID() byte { return r.dataByte(0) }

// KeyID returns the key index on the node.
func (r *KeyParametersV2Response) KeyID() byte { return r.dataByte(1) }

func (r *KeyParametersV2Response) String() string {
	return fmt.Sprintf("KeyParametersV2{node=%d, key=%d}", r.NodeID(), r.KeyID())
}

// InternalUnitStatusesResponse carries the box's internal unit status
// block, unparsed.
type InternalUnitStatusesResponse struct {
	base
}

func (r *InternalUnitStatusesResponse) String() string {
	return fmt.Sprintf("InternalUnitStatuses{data=%d bytes}", len(r.frame.Data()))
}

package client

import (
	"context"
	"fmt"

	"github.com/vitrealabs/vbox/internal/protocol"
)

// GetRoomCount returns the room ids configured on the box.
func (c *Client) GetRoomCount(ctx context.Context) (*protocol.RoomCountResponse, error) {
	resp, err := c.Send(ctx, protocol.NewRoomCount())
	if err != nil {
		return nil, err
	}
	rc, ok := resp.(*protocol.RoomCountResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response %T to RoomCount", resp)
	}
	return rc, nil
}

// GetNodeCount returns the node ids configured on the box.
func (c *Client) GetNodeCount(ctx context.Context) (*protocol.NodeCountResponse, error) {
	resp, err := c.Send(ctx, protocol.NewNodeCount())
	if err != nil {
		return nil, err
	}
	nc, ok := resp.(*protocol.NodeCountResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response %T to NodeCount", resp)
	}
	return nc, nil
}

// GetRoomMetaData returns the metadata (name) for one room.
func (c *Client) GetRoomMetaData(ctx context.Context, roomID byte) (*protocol.RoomMetaDataResponse, error) {
	resp, err := c.Send(ctx, protocol.NewRoomMetaData(roomID))
	if err != nil {
		return nil, err
	}
	rm, ok := resp.(*protocol.RoomMetaDataResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response %T to RoomMetaData", resp)
	}
	return rm, nil
}

// GetNodeMetaData returns the metadata for one node. The concrete type
// depends on the configured protocol version: *NodeMetaDataResponse for
// v1, *NodeMetaDataV2Response for v2.
func (c *Client) GetNodeMetaData(ctx context.Context, nodeID byte) (protocol.Response, error) {
	return c.Send(ctx, protocol.NewNodeMetaData(nodeID))
}

// GetKeyStatus returns the current power state of one key.
func (c *Client) GetKeyStatus(ctx context.Context, nodeID, keyID byte) (*protocol.KeyStatusResponse, error) {
	resp, err := c.Send(ctx, protocol.NewKeyStatus(nodeID, keyID))
	if err != nil {
		return nil, err
	}
	ks, ok := resp.(*protocol.KeyStatusResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response %T to KeyStatus", resp)
	}
	return ks, nil
}

// GetKeyParameters returns a key's configuration. The concrete type
// depends on the configured protocol version: *KeyParametersResponse for
// v1, *KeyParametersV2Response for v2.
func (c *Client) GetKeyParameters(ctx context.Context, nodeID, keyID byte) (protocol.Response, error) {
	return c.Send(ctx, protocol.NewKeyParameters(nodeID, keyID))
}

// GetInternalUnitStatuses returns the box's internal unit status block.
func (c *Client) GetInternalUnitStatuses(ctx context.Context) (*protocol.InternalUnitStatusesResponse, error) {
	resp, err := c.Send(ctx, protocol.NewInternalUnitStatuses())
	if err != nil {
		return nil, err
	}
	ius, ok := resp.(*protocol.InternalUnitStatusesResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response %T to InternalUnitStatuses", resp)
	}
	return ius, nil
}

// RefreshNodeStatus asks the box to re-announce a node's key states. The
// refreshed states arrive as unsolicited updates on key status handlers.
func (c *Client) RefreshNodeStatus(ctx context.Context, nodeID byte) error {
	_, err := c.Send(ctx, protocol.NewNodeStatus(nodeID))
	return err
}

// ToggleKey actuates a key. dimmerRatio is 0-100 and only meaningful for
// dimmable keys; timer is in seconds, 0 for no timer.
func (c *Client) ToggleKey(ctx context.Context, nodeID, keyID byte, status protocol.KeyPowerStatus, dimmerRatio byte, timer uint16) error {
	_, err := c.Send(ctx, protocol.NewToggleKeyStatus(nodeID, keyID, status, dimmerRatio, timer))
	return err
}

// TurnKeyOn switches a key on at full brightness.
func (c *Client) TurnKeyOn(ctx context.Context, nodeID, keyID byte) error {
	return c.ToggleKey(ctx, nodeID, keyID, protocol.PowerOn, 100, 0)
}

// TurnKeyOff switches a key off.
func (c *Client) TurnKeyOff(ctx context.Context, nodeID, keyID byte) error {
	return c.ToggleKey(ctx, nodeID, keyID, protocol.PowerOff, 0, 0)
}

// ReleaseKey sends the key release event, used for long-press keys such as
// shutters.
func (c *Client) ReleaseKey(ctx context.Context, nodeID, keyID byte) error {
	return c.ToggleKey(ctx, nodeID, keyID, protocol.PowerReleased, 0, 0)
}

// SendHeartbeat writes an explicit keepalive and waits for the box to
// acknowledge it.
func (c *Client) SendHeartbeat(ctx context.Context) error {
	_, err := c.Send(ctx, protocol.NewHeartbeat())
	return err
}

// OnKeyStatus registers a handler for unsolicited key status updates and
// returns a function that unregisters it. Responses to explicit KeyStatus
// requests are delivered to their caller, not to handlers.
func (c *Client) OnKeyStatus(h KeyStatusHandler) func() {
	return c.events.subscribe(h)
}

// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua

// State is the Client's single state variable (spec §3, §4.1). Exactly
// one of these holds at any observable point; transitions notify
// Configuration.StateCallback synchronously from inside the event loop.
type State int

const (
	Disconnected State = iota
	Connected
	SecureChannelOpen
	Session
	SessionRenewed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connected:
		return "Connected"
	case SecureChannelOpen:
		return "SecureChannel"
	case Session:
		return "Session"
	case SessionRenewed:
		return "SessionRenewed"
	default:
		return "Unknown"
	}
}

// StateCallback observes a transition to newState. It runs
// synchronously on the event-loop thread (spec §4.1: "emits
// stateCallback(newState) exactly once, synchronously, before
// returning to the event-loop caller").
type StateCallback func(newState State)

func (c *Client) setState(s State) {
	c.state = s
	if c.cfg.StateCallback != nil {
		c.cfg.StateCallback(s)
	}
}

// GetState returns the client's current state.
func (c *Client) GetState() State {
	return c.state
}

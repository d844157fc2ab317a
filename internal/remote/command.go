// Package remote exposes the viewer controls over a websocket so scripts and
// other tools can drive a running viewer.
package remote

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshview/internal/viewer"
)

// Actions accepted in Command.Action.
const (
	ActionPlay   = "play"
	ActionPause  = "pause"
	ActionToggle = "toggle"
	ActionSpeed  = "speed"
	ActionReset  = "reset"
	ActionOpen   = "open"
	ActionState  = "state"
)

// Command errors.
var (
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingPath   = errors.New("open requires a path")
	ErrRejected      = errors.New("file rejected")
)

// Command is one JSON message from a client.
type Command struct {
	Action string  `json:"action"`
	Value  float32 `json:"value,omitempty"`
	Path   string  `json:"path,omitempty"`
}

// Validate checks the command before it is queued.
func (c Command) Validate() error {
	switch c.Action {
	case ActionPlay, ActionPause, ActionToggle, ActionSpeed, ActionReset, ActionState:
		return nil
	case ActionOpen:
		if c.Path == "" {
			return ErrMissingPath
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, c.Action)
	}
}

// Apply runs cmd on the UI thread. Speeds are bounded like the slider.
// State requests change nothing; the server answers them itself.
func Apply(cmd Command, s *viewer.Session, p *viewer.Pipeline) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	switch cmd.Action {
	case ActionPlay:
		s.SetPlaying(true)
	case ActionPause:
		s.SetPlaying(false)
	case ActionToggle:
		s.TogglePlay()
	case ActionSpeed:
		s.SetSpeed(viewer.QuantizeSpeed(cmd.Value))
	case ActionReset:
		s.Reset()
	case ActionState:
	case ActionOpen:
		if req := p.OpenRemote(cmd.Path); req.State == viewer.StateRejected {
			return fmt.Errorf("%w: %v", ErrRejected, req.Err)
		}
	}
	return nil
}

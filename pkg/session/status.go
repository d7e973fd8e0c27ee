// Package session owns the camera lifecycle and the recurring
// capture-classify-announce cycle.
package session

import "fmt"

// Status is the session's current lifecycle phase.
//
// The machine is: Ready → Initializing → Detecting ⇄ (Error | Stopped).
// Error and Stopped return to Initializing only via a fresh Start.
type Status int

const (
	// StatusReady means the session has never been activated.
	StatusReady Status = iota

	// StatusInitializing means camera access is being requested.
	StatusInitializing

	// StatusDetecting means the recurring classification cycle is live.
	StatusDetecting

	// StatusError means the last camera request or classification failed.
	StatusError

	// StatusStopped means the session was deactivated by the user.
	StatusStopped
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusInitializing:
		return "initializing"
	case StatusDetecting:
		return "detecting"
	case StatusError:
		return "error"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText renders the status as its lowercase name for JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Facing selects which physical camera is requested.
type Facing int

const (
	// FacingFront is the user-facing camera.
	FacingFront Facing = iota

	// FacingRear is the environment-facing camera.
	FacingRear
)

// String implements fmt.Stringer.
func (f Facing) String() string {
	if f == FacingRear {
		return "rear"
	}
	return "front"
}

// MarshalText renders the facing mode as its name for JSON.
func (f Facing) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Opposite returns the other facing mode.
func (f Facing) Opposite() Facing {
	if f == FacingFront {
		return FacingRear
	}
	return FacingFront
}

// ParseFacing converts a string to a Facing value.
func ParseFacing(s string) (Facing, error) {
	switch s {
	case "front":
		return FacingFront, nil
	case "rear":
		return FacingRear, nil
	default:
		return FacingFront, fmt.Errorf("session: unknown facing mode %q", s)
	}
}

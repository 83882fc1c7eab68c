package alarm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of the alarm scheduler.
type State int

const (
	// Idle means no alarm is pending.
	Idle State = iota
	// Armed means the scheduler is polling for the target minute.
	Armed
	// Fired means the target minute was reached and the trigger was emitted.
	Fired
)

// String returns the lower-case wire name of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Fired:
		return "fired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ParseState converts a wire name back to a State.
func ParseState(s string) (State, error) {
	switch s {
	case "idle":
		return Idle, nil
	case "armed":
		return Armed, nil
	case "fired":
		return Fired, nil
	default:
		return Idle, fmt.Errorf("unknown alarm state %q", s)
	}
}

// Handle identifies a single arming of the alarm.
// The zero Handle identifies nothing.
type Handle struct {
	// ID is unique per arming.
	ID uuid.UUID
	// Time is the target the alarm was armed with.
	Time Time
}

// NewHandle allocates a handle for a new arming.
func NewHandle(t Time) Handle {
	return Handle{
		ID:   uuid.New(),
		Time: t,
	}
}

// IsZero reports whether the handle identifies no arming.
func (h Handle) IsZero() bool {
	return h.ID == uuid.Nil
}

// Actor identifies who armed the alarm.
type Actor struct {
	// Hostname is the machine name where the request came from.
	Hostname string
	// Username is the system user who made the request.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as username@hostname.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return a.Username + "@" + a.Hostname
}

// Status is a point-in-time snapshot of the scheduler.
type Status struct {
	// State is the lifecycle state.
	State State
	// Handle is the current arming, zero when Idle.
	Handle Handle
	// ArmedAt is when the current arming was made.
	ArmedAt time.Time
	// FiredAt is when the trigger was emitted, zero unless Fired.
	FiredAt time.Time
}

// Clone returns a copy of the status.
func (s *Status) Clone() *Status {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

package iframework

import (
	"io"
	"time"
)

// SystemBundleID identifies the container's own root bundle, which the
// launcher never touches.
const SystemBundleID int64 = 0

// Factory produces container instances from an effective properties map. The
// host environment supplies exactly one implementation.
type Factory interface {
	New(properties map[string]string) (Framework, error)
}

// StopEvent is the outcome of waiting for the container to stop.
type StopEvent int

const (
	Stopped StopEvent = iota
	StoppedUpdate
	Timedout
)

func (e StopEvent) String() string {
	switch e {
	case StoppedUpdate:
		return "stopped-update"
	case Timedout:
		return "timedout"
	default:
		return "stopped"
	}
}

// Framework is the launcher's view of a module container. Implementations
// serialize bundle operations internally, the launcher never issues them
// concurrently.
type Framework interface {
	Init() error
	Start() error
	Stop() error

	// Active reports whether the container is started or in transition.
	Active() bool

	// WaitForStop blocks until the container stops or the timeout elapses.
	// A zero timeout waits indefinitely.
	WaitForStop(timeout time.Duration) (StopEvent, error)

	// Bundle looks an installed bundle up by its location key.
	Bundle(location string) (Bundle, bool)
	Bundles() []Bundle

	InstallBundle(location string, source io.Reader) (Bundle, error)

	StartLevel() int
}

// BundleState mirrors the container's bundle lifecycle states.
type BundleState int

const (
	Installed BundleState = iota
	Resolved
	Starting
	Active
	Stopping
	Uninstalled
)

func (s BundleState) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Starting:
		return "starting"
	case Active:
		return "active"
	case Stopping:
		return "stopping"
	case Uninstalled:
		return "uninstalled"
	default:
		return "installed"
	}
}

// Bundle is a single loadable unit managed by the container.
type Bundle interface {
	ID() int64
	Location() string
	State() BundleState
	SymbolicName() string
	Version() string

	// Fragment bundles never start or stop on their own.
	Fragment() bool

	Update(source io.Reader) error
	Uninstall() error
	SetStartLevel(level int) error
	Start() error
	Stop() error
}

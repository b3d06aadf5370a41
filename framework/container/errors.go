package container

import (
	"errors"
	"fmt"
)

var (
	// ErrScopeAlreadyBound is reported when a Container tries to bind as
	// Global, or as Scene for a scene, while another Container holds it.
	ErrScopeAlreadyBound = errors.New("scope already bound")

	// ErrNoScene is reported when a scene bootstrap source has no scene.
	ErrNoScene = errors.New("node has no scene")

	// ErrAlreadyAttached is returned when a node already carries a Container.
	ErrAlreadyAttached = errors.New("node already has a container")
)

// ScopeError describes a rejected bootstrap.
type ScopeError struct {
	Op        string // "bind global", "bind scene"
	Container string
	Scene     SceneID
	Holder    string // name of the Container holding the scope, if any
	Err       error
}

func (e *ScopeError) Error() string {
	msg := fmt.Sprintf("container: %s %q", e.Op, e.Container)
	if e.Scene != "" {
		msg += fmt.Sprintf(" (scene %s)", e.Scene)
	}
	if e.Holder != "" {
		msg += fmt.Sprintf(": held by %q", e.Holder)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ScopeError) Unwrap() error { return e.Err }

package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrCorruptSession is wrapped by stores when a persisted session exists but
// cannot be decoded. The session manager replaces it with a fresh one.
var ErrCorruptSession = errors.New("corrupt session")

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrMalformedAction is returned when a button payload cannot be decoded.
var ErrMalformedAction = errors.New("malformed action")

// ErrUnhandledAction is returned when an action is not handled by the receiver.
var ErrUnhandledAction = errors.New("unhandled action")

// ErrCorruptSnapshot is returned when a persisted engine cannot be restored.
// Callers recover by building a fresh engine at the scene root.
var ErrCorruptSnapshot = errors.New("corrupt navigation snapshot")

// SourceFailure reports a content source error or timeout. The turn is aborted
// and navigation state is left as it was before the turn.
type SourceFailure struct {
	NodeID string
	Err    error
}

func (e *SourceFailure) Error() string {
	return fmt.Sprintf("content source failed for node %q: %v", e.NodeID, e.Err)
}

func (e *SourceFailure) Unwrap() error { return e.Err }

// RenderFailure reports that a view could not be delivered.
type RenderFailure struct {
	Err error
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("render failed: %v", e.Err)
}

func (e *RenderFailure) Unwrap() error { return e.Err }

// NavigationFault reports a malformed or impossible navigation request.
// State is left unchanged and the user gets a corrective message.
type NavigationFault struct {
	Action Action
	Reason string
}

func (e *NavigationFault) Error() string {
	return fmt.Sprintf("navigation fault on %s: %s", e.Action, e.Reason)
}

// IsSourceFailure reports whether err wraps a SourceFailure.
func IsSourceFailure(err error) bool {
	var sf *SourceFailure
	return errors.As(err, &sf)
}

// IsNavigationFault reports whether err wraps a NavigationFault.
func IsNavigationFault(err error) bool {
	var nf *NavigationFault
	return errors.As(err, &nf)
}

// IsRenderFailure reports whether err wraps a RenderFailure.
func IsRenderFailure(err error) bool {
	var rf *RenderFailure
	return errors.As(err, &rf)
}

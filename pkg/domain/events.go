package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSceneEnter EventType = "scene_enter"
	EventSceneLeave EventType = "scene_leave"
	EventSourceLoad EventType = "source_load"
	EventRender     EventType = "render"
	EventTurn       EventType = "turn"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// SceneEvent represents entry or exit from a scene.
type SceneEvent struct {
	EventBase
	UserID int64     `json:"user_id"`
	Scene  SceneName `json:"scene"`
}

// LoadEvent describes one content source call.
type LoadEvent struct {
	EventBase
	NodeID   string        `json:"node_id"`
	Offset   int           `json:"offset"`
	Limit    int           `json:"limit"`
	Count    int           `json:"count"`
	HasMore  bool          `json:"has_more"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// RenderEvent describes one renderer call.
type RenderEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Err    error  `json:"-"`
}

// TurnEvent describes a completed user turn.
type TurnEvent struct {
	EventBase
	UserID   int64         `json:"user_id"`
	Scene    SceneName     `json:"scene"`
	Outcome  string        `json:"outcome"` // ok, source_failure, render_failure, fault, error
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for observability.
type LifecycleHooks struct {
	OnSceneEnter func(context.Context, *SceneEvent)
	OnSceneLeave func(context.Context, *SceneEvent)
	OnSourceLoad func(context.Context, *LoadEvent)
	OnRender     func(context.Context, *RenderEvent)
	OnTurn       func(context.Context, *TurnEvent)
}

// NewEventBase stamps an event with the current time.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}

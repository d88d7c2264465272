package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/cthstore/storefront/internal/navigation"
	"github.com/cthstore/storefront/pkg/domain"
)

// Scene is one state of the conversation.
type Scene interface {
	Name() domain.SceneName

	// Enter is called on first entry and on re-entry.
	Enter(ctx context.Context, t *Turn) error
	// Leave is called before the session moves to another scene.
	Leave(ctx context.Context, t *Turn) error

	OnMessage(ctx context.Context, t *Turn, text string) error
	OnAction(ctx context.Context, t *Turn, action domain.Action) error
}

// Turn carries the state of one inbound event through the scenes.
type Turn struct {
	Session *domain.Session
	Target  domain.Target

	m *Machine
}

// Goto leaves the current scene and enters next.
func (t *Turn) Goto(ctx context.Context, next domain.SceneName) error {
	target, ok := t.m.scenes[next]
	if !ok {
		return fmt.Errorf("unknown scene %q", next)
	}
	if err := t.leave(ctx); err != nil {
		return err
	}
	t.Session.Scene = next
	t.Session.Step = domain.StepNone
	return t.enter(ctx, target)
}

// Reenter runs the current scene's leave and enter hooks again.
func (t *Turn) Reenter(ctx context.Context) error {
	return t.Goto(ctx, t.Session.Scene)
}

func (t *Turn) leave(ctx context.Context) error {
	current, ok := t.m.scenes[t.Session.Scene]
	if !ok {
		return nil
	}
	if err := current.Leave(ctx, t); err != nil {
		return err
	}
	if t.m.hooks.OnSceneLeave != nil {
		t.m.hooks.OnSceneLeave(ctx, t.sceneEvent(domain.EventSceneLeave))
	}
	return nil
}

func (t *Turn) enter(ctx context.Context, s Scene) error {
	t.m.logger.Debug("Entering scene", "user_id", t.Session.UserID, "scene", s.Name())
	if t.m.hooks.OnSceneEnter != nil {
		t.m.hooks.OnSceneEnter(ctx, t.sceneEvent(domain.EventSceneEnter))
	}
	return s.Enter(ctx, t)
}

func (t *Turn) sceneEvent(typ domain.EventType) *domain.SceneEvent {
	return &domain.SceneEvent{
		EventBase: domain.NewEventBase(typ),
		UserID:    t.Session.UserID,
		Scene:     t.Session.Scene,
	}
}

// Show delivers a view that is not produced by a navigation engine.
func (t *Turn) Show(ctx context.Context, view domain.View) error {
	if _, err := t.m.renderer.Render(ctx, t.Target, view); err != nil {
		t.m.logger.Error("Render failed", "user_id", t.Session.UserID, "err", err)
		return &domain.RenderFailure{Err: err}
	}
	return nil
}

// Notify sends a short notice. Failures are logged only.
func (t *Turn) Notify(ctx context.Context, text string) {
	if err := t.m.renderer.Notify(ctx, t.Target, text); err != nil {
		t.m.logger.Warn("Notice not delivered", "user_id", t.Session.UserID, "err", err)
	}
}

// engine restores a persisted engine or builds a fresh one at root.
// A snapshot that cannot be restored is replaced by a fresh engine.
func (t *Turn) engine(snap *domain.Snapshot, root func() domain.Node, opts ...navigation.Option) *navigation.Engine {
	opts = append(t.m.engineOptions(), opts...)
	if snap == nil {
		return navigation.New(root(), opts...)
	}
	e, err := navigation.Restore(snap, opts...)
	if err != nil {
		t.m.logger.Warn("Persisted engine unusable, starting fresh",
			"user_id", t.Session.UserID,
			"scene", t.Session.Scene,
			"err", err,
		)
		return navigation.New(root(), opts...)
	}
	return e
}

// persist reports whether the engine must be written back after err.
func persist(err error) bool {
	return err == nil || domain.IsRenderFailure(err)
}

// errUnexpectedInput marks text a scene does not accept.
var errUnexpectedInput = errors.New("unexpected input")

// Package scene implements the conversation state machine hosting the
// navigation engines: main menu, catalog, product processing, cart and FAQ.
//
// Every inbound event runs as one turn under the user's session lock. The
// turn loads the session, routes the event to the active scene and saves the
// session only if the turn completed. Content source failures abort the turn
// without saving, so the persisted position stays where it was.
package scene

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cthstore/storefront/internal/logging"
	"github.com/cthstore/storefront/internal/navigation"
	"github.com/cthstore/storefront/internal/shop"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
	"github.com/cthstore/storefront/pkg/session"
)

// User-visible notices of the error policy.
const (
	NoticeRetry       = "Something went wrong, please try again."
	NoticeStale       = "This option is no longer available."
	NoticeUseButtons  = "Please use the buttons below."
	NoticeUnsupported = "This action is not supported here."
)

// Turn outcomes reported to OnTurn.
const (
	OutcomeOK            = "ok"
	OutcomeSourceFailure = "source_failure"
	OutcomeRenderFailure = "render_failure"
	OutcomeFault         = "fault"
	OutcomeError         = "error"
)

// Machine routes chat events to scenes.
type Machine struct {
	sessions *session.Manager
	repo     ports.ShopRepository
	renderer ports.Renderer
	checkout ports.Checkout

	scenes map[domain.SceneName]Scene

	pageSize    int
	currency    string
	loadTimeout time.Duration
	labels      navigation.Labels
	maxInput    int

	catalogSource *shop.CatalogSource
	cartSource    *shop.CartSource
	faqSource     *shop.FAQSource

	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// NewMachine builds a machine with the storefront scenes registered.
func NewMachine(sessions *session.Manager, repo ports.ShopRepository, renderer ports.Renderer, opts ...Option) *Machine {
	m := &Machine{
		sessions:    sessions,
		repo:        repo,
		renderer:    renderer,
		scenes:      make(map[domain.SceneName]Scene),
		pageSize:    domain.DefaultPageSize,
		currency:    DefaultCurrency,
		loadTimeout: navigation.DefaultLoadTimeout,
		labels:      navigation.DefaultLabels,
		maxInput:    DefaultMaxInputSize,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.catalogSource = &shop.CatalogSource{Repo: repo, Currency: m.currency, PageSize: m.pageSize}
	m.cartSource = &shop.CartSource{Repo: repo, Currency: m.currency}
	m.faqSource = &shop.FAQSource{Repo: repo}

	m.Register(&MainMenu{})
	m.Register(&Catalog{m: m})
	m.Register(&ProductProcessing{m: m})
	m.Register(&Cart{m: m})
	m.Register(&FAQ{m: m})
	return m
}

// Register adds or replaces a scene.
func (m *Machine) Register(s Scene) {
	m.scenes[s.Name()] = s
}

// Scene returns a registered scene.
func (m *Machine) Scene(name domain.SceneName) (Scene, bool) {
	s, ok := m.scenes[name]
	return s, ok
}

// Sessions returns the session manager.
func (m *Machine) Sessions() *session.Manager {
	return m.sessions
}

func (m *Machine) engineOptions() []navigation.Option {
	return []navigation.Option{
		navigation.WithRenderer(m.renderer),
		navigation.WithGlobalActions(domain.Button{Label: "To Main Menu", Action: domain.Custom(shop.TokenMainMenu)}),
		navigation.WithLabels(m.labels),
		navigation.WithLoadTimeout(m.loadTimeout),
		navigation.WithLogger(m.logger),
		navigation.WithHooks(m.hooks),
	}
}

// HandleText routes a text message. /start and /menu reset the conversation.
// Oversized or malformed text is answered without running a turn.
func (m *Machine) HandleText(ctx context.Context, target domain.Target, text string) error {
	text, err := sanitizeInput(text, m.maxInput)
	if err != nil {
		m.logger.Warn("Rejected text input", "user_id", target.UserID, "err", err)
		if err := m.renderer.Notify(ctx, target, inputNotice(err)); err != nil {
			m.logger.Error("Notify failed", "user_id", target.UserID, "err", err)
		}
		return nil
	}
	text = strings.TrimSpace(text)
	return m.turn(ctx, target, func(ctx context.Context, t *Turn) error {
		if isMenuCommand(text) {
			return t.home(ctx)
		}
		return m.current(t).OnMessage(ctx, t, text)
	})
}

// HandleCallback routes a button press carrying encoded action data.
func (m *Machine) HandleCallback(ctx context.Context, target domain.Target, data string) error {
	action, err := domain.ParseAction(data)
	if err != nil {
		m.logger.Warn("Malformed callback data", "user_id", target.UserID, "data", data, "err", err)
		if err := m.renderer.Notify(ctx, target, NoticeStale); err != nil {
			m.logger.Error("Notify failed", "user_id", target.UserID, "err", err)
		}
		return nil
	}
	return m.turn(ctx, target, func(ctx context.Context, t *Turn) error {
		if action == domain.Custom(shop.TokenMainMenu) {
			return t.home(ctx)
		}
		return m.current(t).OnAction(ctx, t, action)
	})
}

// Start registers the user, greets them and opens the main menu.
func (m *Machine) Start(ctx context.Context, target domain.Target, user domain.User) error {
	return m.turn(ctx, target, func(ctx context.Context, t *Turn) error {
		created, err := m.repo.UpsertUser(ctx, user)
		if err != nil {
			m.logger.Error("User registration failed", "user_id", user.ID, "err", err)
			t.Notify(ctx, "An error occurred during registration. Please try again later.")
			return session.ErrSkipSave
		}
		name := greetingName(user)
		if created {
			t.Notify(ctx, "Hello, "+name+"! Nice to meet you. You are registered.")
		} else {
			t.Notify(ctx, "Welcome back, "+name+"!")
		}
		return t.home(ctx)
	})
}

// home clears the conversation and enters the main menu.
func (t *Turn) home(ctx context.Context) error {
	if err := t.leave(ctx); err != nil {
		return err
	}
	t.Session.Reset()
	return t.enter(ctx, t.m.scenes[domain.SceneMainMenu])
}

// current resolves the active scene. An unknown scene name falls back to the main menu.
func (m *Machine) current(t *Turn) Scene {
	if s, ok := m.scenes[t.Session.Scene]; ok {
		return s
	}
	m.logger.Warn("Session points at unknown scene, resetting", "user_id", t.Session.UserID, "scene", t.Session.Scene)
	t.Session.Reset()
	return m.scenes[domain.SceneMainMenu]
}

// turn runs fn under the user's session lock and applies the error policy.
// Only failures of the session layer itself are returned.
func (m *Machine) turn(ctx context.Context, target domain.Target, fn func(context.Context, *Turn) error) error {
	start := time.Now()
	var (
		sceneName domain.SceneName
		outcome   = OutcomeOK
	)

	err := m.sessions.Turn(ctx, target.UserID, target.ChatID, func(ctx context.Context, sess *domain.Session) error {
		t := &Turn{Session: sess, Target: target, m: m}
		err := fn(ctx, t)
		sceneName = sess.Scene
		outcome = classify(err)
		return m.settle(ctx, t, err)
	})

	if m.hooks.OnTurn != nil {
		if err != nil && outcome == OutcomeOK {
			outcome = OutcomeError
		}
		m.hooks.OnTurn(ctx, &domain.TurnEvent{
			EventBase: domain.NewEventBase(domain.EventTurn),
			UserID:    target.UserID,
			Scene:     sceneName,
			Outcome:   outcome,
			Duration:  time.Since(start),
		})
	}
	if err != nil {
		m.logger.Error("Turn failed", "user_id", target.UserID, "err", err)
	}
	return err
}

// settle maps a scene error to a user-visible notice. It returns nil when
// the session must be saved and session.ErrSkipSave when it must not.
func (m *Machine) settle(ctx context.Context, t *Turn, err error) error {
	switch {
	case err == nil:
		return nil

	case errors.Is(err, session.ErrSkipSave):
		return err

	case domain.IsSourceFailure(err):
		m.logger.Warn("Content source failed, turn aborted", "user_id", t.Session.UserID, "err", err)
		t.Notify(ctx, NoticeRetry)
		return session.ErrSkipSave

	case domain.IsRenderFailure(err):
		// Already logged by the engine; the state change stands.
		return nil

	case domain.IsNavigationFault(err):
		t.Notify(ctx, NoticeStale)
		return session.ErrSkipSave

	case errors.Is(err, domain.ErrUnhandledAction):
		m.logger.Debug("Unhandled action", "user_id", t.Session.UserID, "scene", t.Session.Scene, "err", err)
		t.Notify(ctx, NoticeUnsupported)
		return session.ErrSkipSave

	case errors.Is(err, errUnexpectedInput):
		t.Notify(ctx, NoticeUseButtons)
		return session.ErrSkipSave

	default:
		m.logger.Error("Scene failed", "user_id", t.Session.UserID, "scene", t.Session.Scene, "err", err)
		t.Notify(ctx, NoticeRetry)
		return session.ErrSkipSave
	}
}

func classify(err error) string {
	switch {
	case err == nil, errors.Is(err, session.ErrSkipSave):
		return OutcomeOK
	case domain.IsSourceFailure(err):
		return OutcomeSourceFailure
	case domain.IsRenderFailure(err):
		return OutcomeRenderFailure
	case domain.IsNavigationFault(err), errors.Is(err, domain.ErrUnhandledAction), errors.Is(err, errUnexpectedInput):
		return OutcomeFault
	default:
		return OutcomeError
	}
}

func isMenuCommand(text string) bool {
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd == "/start" || cmd == "/menu"
}

func greetingName(u domain.User) string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	default:
		return "User"
	}
}

package session

import (
	"context"
	"sync"
	"time"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultLoginPath    = "/login"

	MessageExpired      = "Your session has expired. Please log in again."
	MessageInvalid      = "Your session is no longer valid. Please log in again."
	MessageChanged      = "Your session changed in another tab. Please log in again."
	MessageUnauthorized = "You are not authorized. Please log in again."
)

type Trigger string

const (
	TriggerNavigation  Trigger = "navigation"
	TriggerInteraction Trigger = "interaction"
	TriggerVisibility  Trigger = "visibility"
	TriggerPoll        Trigger = "poll"
	TriggerWrite       Trigger = "write"
)

// Interaction kinds that re-validate the session.
const (
	InteractionClick   = "click"
	InteractionKeydown = "keydown"
	InteractionFocus   = "focus"
)

type Option func(*Guard)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithRedirect sets the callback invoked with the login path after a forced logout.
func WithRedirect(fn func(loginPath string)) Option {
	return func(g *Guard) { g.redirect = fn }
}

func WithPollInterval(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.poll = d
		}
	}
}

func WithLoginPath(path string) Option {
	return func(g *Guard) { g.loginPath = path }
}

// Guard keeps a tab's authenticated state consistent with the stored token.
type Guard struct {
	tab       *Tab
	now       func() time.Time
	redirect  func(string)
	poll      time.Duration
	loginPath string

	mu            sync.Mutex
	location      string
	authenticated bool
	unsubscribe   func()
	logouts       int
}

func NewGuard(tab *Tab, opts ...Option) *Guard {
	g := &Guard{
		tab:       tab,
		now:       time.Now,
		redirect:  func(string) {},
		poll:      DefaultPollInterval,
		loginPath: DefaultLoginPath,
		location:  "/",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) Tab() *Tab { return g.tab }

// Start subscribes to storage changes and validates the current token once.
func (g *Guard) Start() Validation {
	unsub := g.tab.Subscribe(g.onChange)

	g.mu.Lock()
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
	g.unsubscribe = unsub
	g.mu.Unlock()

	return g.Check(TriggerNavigation)
}

func (g *Guard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
}

// Run polls the token until ctx is done.
func (g *Guard) Run(ctx context.Context) {
	ticker := time.NewTicker(g.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Check(TriggerPoll)
		}
	}
}

// Navigate records path as the current location and re-validates.
func (g *Guard) Navigate(path string) Validation {
	g.mu.Lock()
	g.location = path
	g.mu.Unlock()
	return g.Check(TriggerNavigation)
}

func (g *Guard) Interact(kind string) Validation {
	switch kind {
	case InteractionClick, InteractionKeydown, InteractionFocus:
		return g.Check(TriggerInteraction)
	}
	return g.Validate()
}

// VisibilityChanged re-validates when the tab becomes visible.
func (g *Guard) VisibilityChanged(visible bool) Validation {
	if !visible {
		return g.Validate()
	}
	return g.Check(TriggerVisibility)
}

// Validate reports the state of the stored token without side effects.
func (g *Guard) Validate() Validation {
	token, _ := g.tab.Get(KeyAuthToken)
	return Validate(token, g.now())
}

// Authenticated reports whether the last check saw a valid token.
func (g *Guard) Authenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated
}

// Logouts counts forced logouts performed by this guard.
func (g *Guard) Logouts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.logouts
}

// Check validates the stored token and forces a logout when it is present
// but invalid, or when it disappeared while the tab was authenticated.
func (g *Guard) Check(trigger Trigger) Validation {
	v := g.Validate()

	g.mu.Lock()
	wasAuthenticated := g.authenticated
	g.authenticated = v.Valid
	g.mu.Unlock()

	switch {
	case v.Valid:
	case v.Reason == ReasonMissing:
		if wasAuthenticated {
			g.logout(true, "", MessageInvalid, trigger, v.Reason)
		}
	case v.Reason == ReasonExpired:
		g.logout(true, "", MessageExpired, trigger, v.Reason)
	default:
		g.logout(true, "", MessageInvalid, trigger, v.Reason)
	}
	return v
}

// ForceLogout clears the persisted session, stores redirectTo (the current
// location when empty) and message for the login page, and redirects.
func (g *Guard) ForceLogout(redirectTo, message string) {
	g.logout(true, redirectTo, message, "", ReasonNone)
}

func (g *Guard) onChange(c Change) {
	if c.Key != KeyAuthToken {
		return
	}
	if c.Origin == g.tab.ID {
		g.Check(TriggerWrite)
		return
	}

	// A token written by another tab ends this tab's session without touching
	// the shared keys, which now belong to the writer. A tab that is not
	// signed in adopts the new token if it is valid.
	if !g.Authenticated() {
		g.Check(TriggerWrite)
		return
	}
	g.logout(false, "", MessageChanged, TriggerWrite, ReasonNone)
}

func (g *Guard) logout(clear bool, redirectTo, message string, trigger Trigger, reason Reason) {
	g.mu.Lock()
	g.authenticated = false
	g.logouts++
	if redirectTo == "" {
		redirectTo = g.location
	}
	g.mu.Unlock()

	logger.L().Info("session: forced logout",
		zap.String("tab", g.tab.ID),
		zap.String("trigger", string(trigger)),
		zap.String("reason", string(reason)),
		zap.String("redirect", redirectTo),
	)

	if clear {
		for _, key := range []string{KeyAuthToken, KeyRole, KeyUser} {
			g.tab.Remove(key)
		}
	}

	if redirectTo != "" && redirectTo != g.loginPath {
		g.tab.Session().Set(g.tab.ID, KeyRedirectAfterLogin, redirectTo)
	}
	if message != "" {
		g.tab.Session().Set(g.tab.ID, KeyLogoutMessage, message)
	}

	g.redirect(g.loginPath)
}

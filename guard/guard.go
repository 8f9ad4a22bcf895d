// Package guard gates navigation to protected screens. It consults the
// session resolver on every navigation and never lets a store failure escape:
// each check ends in a defined decision.
package guard

import (
	"context"

	"go.uber.org/zap"

	"github.com/shopflow/shopflow-client/logger"
	"github.com/shopflow/shopflow-client/session"
	"github.com/shopflow/shopflow-client/types"
)

// Decision is the terminal outcome of a guard check.
type Decision string

const (
	Render          Decision = "render"
	RedirectToLogin Decision = "redirect-to-login"
)

// Result carries the guard's decision together with the session it was based
// on. Interim is true when the first resolution attempt failed and the caller
// showed (or should have shown) a loading placeholder before the retry.
type Result struct {
	Decision Decision
	Session  types.Session
	Interim  bool
}

// Guard decides whether a protected screen may render.
//
// Policy: unauthenticated visitors are redirected to login. The only path
// into guest mode is an explicit guest-entry navigation; plain navigation to
// a protected route never silently promotes a visitor to guest.
type Guard struct {
	sessions *session.Manager
	log      *zap.SugaredLogger
}

// New returns a Guard using the given session manager.
func New(sessions *session.Manager) *Guard {
	return &Guard{
		sessions: sessions,
		log:      logger.GetLogger(),
	}
}

// Check evaluates access to route. It re-resolves the session on every call,
// so a navigation after logout or login always sees fresh state.
func (g *Guard) Check(ctx context.Context, route types.Route, intent types.Intent) Result {
	sess, err := g.sessions.Resolve(ctx)
	interim := false
	if err != nil {
		// A freshly loaded tab can race the store becoming readable. Treat
		// the state as unknown: render a loading placeholder and re-resolve
		// once instead of redirecting on a transient failure.
		g.log.Warnw("Session resolution failed, retrying once", "route", route, "error", err)
		interim = true
		sess, err = g.sessions.Resolve(ctx)
		if err != nil {
			g.log.Errorw("Session resolution failed twice, treating as unauthenticated",
				"route", route, "error", err)
			return Result{Decision: RedirectToLogin, Session: types.Session{Mode: types.ModeNone}, Interim: true}
		}
	}

	if sess.Authenticated {
		return Result{Decision: Render, Session: sess, Interim: interim}
	}

	if intent == types.IntentGuestEntry {
		if err := g.sessions.EnableGuestMode(ctx); err != nil {
			g.log.Errorw("Failed to enable guest mode", "error", err)
			return Result{Decision: RedirectToLogin, Session: sess, Interim: interim}
		}
		g.log.Infow("Visitor entered guest mode", "route", route)
		return Result{
			Decision: Render,
			Session:  types.Session{Authenticated: true, Mode: types.ModeGuest},
			Interim:  interim,
		}
	}

	g.log.Debugw("Unauthenticated navigation redirected to login", "route", route)
	return Result{Decision: RedirectToLogin, Session: sess, Interim: interim}
}

// Package guard enforces per-route authentication and role requirements
// before navigation. It is the sole place permission is decided client-side.
package guard

import (
	"context"

	"go.uber.org/zap"

	"github.com/cqhs/articlecheck/internal/model"
)

// Requirements is what a route declares about who may enter it.
type Requirements struct {
	Auth  bool // route needs a session
	Admin bool // route is admin-only
	User  bool // route is regular-user-only
}

// Decision is the guard's verdict for one navigation.
type Decision int

const (
	// Allow lets the navigation proceed.
	Allow Decision = iota
	// ToLogin redirects to the login view.
	ToLogin
	// ToHome redirects a non-admin away from an admin-only route.
	ToHome
	// ToAdmin redirects an admin away from a user-only route.
	ToAdmin
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case ToLogin:
		return "login"
	case ToHome:
		return "home"
	case ToAdmin:
		return "admin"
	}
	return "unknown"
}

// Session is the slice of the auth service the guard consumes.
type Session interface {
	IsAuthenticated() bool
	CurrentUser(ctx context.Context) (model.User, error)
	Logout()
}

// Guard decides navigations against the current session.
type Guard struct {
	auth Session
	log  *zap.Logger
}

// New constructs a Guard.
func New(auth Session, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{auth: auth, log: log}
}

// Check runs the decision procedure for one navigation:
//
//  1. Auth required, no session → ToLogin, without a user fetch.
//  2. Auth required, session present → fetch the user; any failure counts as
//     an expired session: drop it and → ToLogin.
//  3. Admin-only route, non-admin user → ToHome. User-only route, admin →
//     ToAdmin.
//  4. Otherwise → Allow.
func (g *Guard) Check(ctx context.Context, req Requirements) Decision {
	if !req.Auth {
		return Allow
	}
	if !g.auth.IsAuthenticated() {
		return ToLogin
	}

	user, err := g.auth.CurrentUser(ctx)
	if err != nil {
		g.log.Info("treating failed user fetch as expired session", zap.Error(err))
		g.auth.Logout()
		return ToLogin
	}

	if req.Admin && !user.IsAdmin {
		return ToHome
	}
	if req.User && user.IsAdmin {
		return ToAdmin
	}
	return Allow
}

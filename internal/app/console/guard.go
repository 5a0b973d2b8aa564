// internal/app/console/guard.go
package console

import (
	"context"

	"github.com/dalemusser/ccbportal/internal/app/portalclient"
	"go.uber.org/zap"
)

// AuthChecker asks the backend whether the session is signed in.
type AuthChecker interface {
	AuthCheck(ctx context.Context) (*portalclient.User, error)
}

// Guard decides whether a console may be shown. It fails closed: any error
// from the check counts as signed out.
type Guard struct {
	api    AuthChecker
	logger *zap.Logger
}

func NewGuard(api AuthChecker, logger *zap.Logger) *Guard {
	return &Guard{api: api, logger: logger}
}

// Check returns the confirmed user, or nil when not authenticated.
func (g *Guard) Check(ctx context.Context) *portalclient.User {
	u, err := g.api.AuthCheck(ctx)
	if err != nil {
		g.logger.Warn("auth check failed", zap.Error(err))
		return nil
	}
	return u
}

// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/ccbportal/internal/app/features/adminapi"
	"github.com/dalemusser/ccbportal/internal/app/features/adminconsole"
	errorsfeature "github.com/dalemusser/ccbportal/internal/app/features/errors"
	healthfeature "github.com/dalemusser/ccbportal/internal/app/features/health"
	loginfeature "github.com/dalemusser/ccbportal/internal/app/features/login"
	logoutfeature "github.com/dalemusser/ccbportal/internal/app/features/logout"
	"github.com/dalemusser/ccbportal/internal/app/features/publicapi"
	"github.com/dalemusser/ccbportal/internal/app/features/shared/consolesession"
	"github.com/dalemusser/ccbportal/internal/app/features/shared/views"
	adminuserstore "github.com/dalemusser/ccbportal/internal/app/store/adminusers"
	"github.com/dalemusser/ccbportal/internal/app/system/auth"
	"github.com/dalemusser/ccbportal/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
//
// The router carries three surfaces: the admin REST API under /api/admin,
// the public read-only feed under /api, and the server-rendered console
// under /admin, which reaches the admin API over HTTP like any other client.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	prod := coreCfg.Env == "prod"

	// Admin API session; fresh user data is fetched on each request so a
	// demoted or disabled account loses access immediately.
	apiSessions, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, prod, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	apiSessions.SetUserFetcher(adminuserstore.NewFetcher(deps.MongoDatabase))

	// Console session: holds only the console id and the cached user.
	consoleSessions, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.ConsoleSessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, prod, logger)
	if err != nil {
		logger.Error("console session manager init failed", zap.Error(err))
		return nil, err
	}
	if deps.Consoles == nil {
		return nil, errors.New("console registry not initialized")
	}
	resolver := consolesession.NewResolver(consoleSessions, deps.Consoles, logger)

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	view := views.Templates{}

	r := chi.NewRouter()

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Consoles, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Uploaded news images
	r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))

	// JSON APIs
	apiHandler := adminapi.NewHandler(deps.MongoDatabase, apiSessions, newLoginLimiter(appCfg), deps.Images, logger)
	publicHandler := publicapi.NewHandler(deps.MongoDatabase, deps.Images, logger)
	r.Route("/api", func(ar chi.Router) {
		ar.With(apiSessions.LoadSessionUser).Mount("/admin", adminapi.Routes(apiHandler, apiSessions))
		ar.Mount("/", publicapi.Routes(publicHandler))
	})

	// Console
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, loginfeature.ConsoleHome, http.StatusSeeOther)
	})
	r.Group(func(cr chi.Router) {
		if !prod {
			cr.Use(plaintextHTTP)
		}
		cr.Use(csrf.Protect([]byte(appCfg.CSRFKey),
			csrf.Secure(prod),
			csrf.Path("/"),
			csrf.ErrorHandler(csrfFailure(errLog)),
		))

		loginHandler := loginfeature.NewHandler(resolver, newLoginLimiter(appCfg), errLog, view, logger)
		cr.Mount("/admin/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(resolver, logger)
		cr.Mount("/admin/logout", logoutfeature.Routes(logoutHandler))

		consoleHandler := adminconsole.NewHandler(resolver, errLog, view, logger)
		cr.Mount("/admin", adminconsole.Routes(consoleHandler))
	})

	return r, nil
}

func newLoginLimiter(appCfg AppConfig) *ratelimit.LoginLimiter {
	return ratelimit.NewLoginLimiterWithConfig(appCfg.LoginRateIP, time.Minute, appCfg.LoginRateUser, 5*time.Minute)
}

// plaintextHTTP marks requests as plain HTTP so the CSRF origin checks
// accept http:// referers during local development.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func csrfFailure(errLog *errorsfeature.ErrorLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := "unknown"
		if err := csrf.FailureReason(r); err != nil {
			reason = err.Error()
		}
		errLog.LogForbidden(w, r, "csrf check failed: "+reason,
			"Your form has expired. Please reload the page and try again.", loginfeature.ConsoleHome)
	})
}

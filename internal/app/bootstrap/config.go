// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the portal.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, api_base_url, etc.
//   - Environment variables: CCBPORTAL_MONGO_URI, CCBPORTAL_API_BASE_URL, etc.
//   - Command-line flags: --mongo_uri, --api_base_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "ccb_portal", Desc: "MongoDB database name"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "ccb-admin", Desc: "Admin API session cookie name"},
	{Name: "console_session_name", Default: "ccb-console", Desc: "Console session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (e.g., 24h, 8h)"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-change-me-0123", Desc: "CSRF key for console forms (32 bytes)"},

	// Where the console calls the admin API
	{Name: "api_base_url", Default: "http://localhost:8080", Desc: "Base URL of the admin API used by the console"},

	// News images
	{Name: "storage_local_path", Default: "./uploads", Desc: "Directory for uploaded news images"},
	{Name: "storage_local_url", Default: "/media", Desc: "URL prefix for serving uploaded images"},

	// Console lifecycle
	{Name: "console_idle_timeout", Default: "2h", Desc: "Drop consoles idle longer than this"},
	{Name: "console_sweep_interval", Default: "5m", Desc: "How often to look for idle consoles"},
	{Name: "alert_duration", Default: "5s", Desc: "How long toasts stay on screen"},

	// Login rate limits
	{Name: "login_rate_ip", Default: 10, Desc: "Login attempts per minute per client IP"},
	{Name: "login_rate_user", Default: 5, Desc: "Login attempts per five minutes per username"},
}

// csrfKeyLen is what gorilla/csrf expects for its authentication key.
const csrfKeyLen = 32

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// CCBPORTAL_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CCBPORTAL", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:         appValues.String("session_key"),
		SessionName:        appValues.String("session_name"),
		ConsoleSessionName: appValues.String("console_session_name"),
		SessionDomain:      appValues.String("session_domain"),
		SessionMaxAge:      appValues.Duration("session_max_age", 24*time.Hour),
		CSRFKey:            appValues.String("csrf_key"),

		APIBaseURL: appValues.String("api_base_url"),

		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		ConsoleIdleTimeout:   appValues.Duration("console_idle_timeout", 2*time.Hour),
		ConsoleSweepInterval: appValues.Duration("console_sweep_interval", 5*time.Minute),
		AlertDuration:        appValues.Duration("alert_duration", 5*time.Second),

		LoginRateIP:   appValues.Int("login_rate_ip"),
		LoginRateUser: appValues.Int("login_rate_user"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI and the console's API base URL are checked before any
// connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if !urlutil.IsValidAbsHTTPURL(appCfg.APIBaseURL) {
		return fmt.Errorf("api_base_url must be an absolute http(s) URL, got %q", appCfg.APIBaseURL)
	}
	if len(appCfg.CSRFKey) != csrfKeyLen {
		return fmt.Errorf("csrf_key must be exactly %d bytes, got %d", csrfKeyLen, len(appCfg.CSRFKey))
	}
	if appCfg.ConsoleIdleTimeout <= 0 || appCfg.ConsoleSweepInterval <= 0 {
		return fmt.Errorf("console_idle_timeout and console_sweep_interval must be positive")
	}
	if appCfg.LoginRateIP <= 0 || appCfg.LoginRateUser <= 0 {
		return fmt.Errorf("login_rate_ip and login_rate_user must be positive")
	}
	if appCfg.StorageLocalPath == "" || !strings.HasPrefix(appCfg.StorageLocalURL, "/") {
		return fmt.Errorf("storage_local_path must be set and storage_local_url must start with /")
	}
	return nil
}

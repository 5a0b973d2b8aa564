// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, body limits); everything
// specific to the CCB admin portal lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session cookies. The admin API and the console each get their own
	// cookie, signed with the same key.
	SessionKey         string        // Secret key for signing session cookies (must be strong in production)
	SessionName        string        // Admin API session cookie name
	ConsoleSessionName string        // Console session cookie name
	SessionDomain      string        // Cookie domain (blank means current host)
	SessionMaxAge      time.Duration // Lifetime of both cookies

	// CSRF key for the console forms (32 bytes)
	CSRFKey string

	// APIBaseURL is where the console reaches the admin API. Normally this
	// same process (e.g., http://localhost:8080).
	APIBaseURL string

	// News image storage
	StorageLocalPath string // Directory for uploaded images (e.g., ./uploads)
	StorageLocalURL  string // URL prefix the images are served under (e.g., /media)

	// Console lifecycle
	ConsoleIdleTimeout   time.Duration // Idle consoles are dropped after this long
	ConsoleSweepInterval time.Duration // How often idle consoles are looked for
	AlertDuration        time.Duration // Default toast lifetime

	// Login attempts allowed per minute per client IP, and per five
	// minutes per username.
	LoginRateIP   int
	LoginRateUser int
}

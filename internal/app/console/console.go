// internal/app/console/console.go
//
// Package console holds the state of one browser's admin console: the
// signed-in user, the ten resource lists, the active tab, the form modal
// and the toast queue. Every read and write of content goes through the
// admin REST API.
package console

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/ccbportal/internal/app/catalog"
	"github.com/dalemusser/ccbportal/internal/app/portalclient"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"go.uber.org/zap"
)

var (
	ErrModalClosed    = errors.New("no form is open")
	ErrNoSuchRecord   = errors.New("record not found")
	ErrSessionExpired = errors.New("session expired")
	// ErrSuperseded is returned by a bulk load that a newer load replaced.
	ErrSuperseded = errors.New("bulk load superseded")
)

// API is the part of the REST client the console uses.
type API interface {
	Lister
	AuthChecker
	Login(ctx context.Context, username, password string) (*portalclient.User, error)
	Logout(ctx context.Context) error
	Submit(ctx context.Context, s portalclient.Submission) (models.Record, error)
	Delete(ctx context.Context, k models.Kind, id int64) error
}

type Console struct {
	ID string

	api    API
	guard  *Guard
	loader *Loader
	store  *Store
	alerts *Alerts
	logger *zap.Logger

	busy atomic.Int32

	mu            sync.Mutex
	user          *portalclient.User
	authenticated bool
	tab           Tab
	menuOpen      bool
	modal         Modal
	gen           uint64
	cancelLoad    context.CancelFunc
	lastSeen      time.Time
}

// New returns a signed-out console on the dashboard tab.
func New(id string, api API, alertDuration time.Duration, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		ID:       id,
		api:      api,
		guard:    NewGuard(api, logger),
		loader:   NewLoader(api),
		store:    NewStore(),
		alerts:   NewAlerts(alertDuration),
		logger:   logger.With(zap.String("console", id)),
		tab:      TabDashboard,
		lastSeen: time.Now(),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| accessors                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (c *Console) Store() *Store   { return c.store }
func (c *Console) Alerts() *Alerts { return c.alerts }

// Loading is true while a bulk load or a mutation is in flight.
func (c *Console) Loading() bool { return c.busy.Load() > 0 }

func (c *Console) User() *portalclient.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *Console) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

func (c *Console) Tab() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tab
}

func (c *Console) MenuOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.menuOpen
}

func (c *Console) Modal() Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal
}

func (c *Console) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *Console) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// Close cancels any in-flight load and stops the alert timers.
func (c *Console) Close() {
	c.mu.Lock()
	c.gen++
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	c.mu.Unlock()
	c.alerts.Clear()
}

/*─────────────────────────────────────────────────────────────────────────────*
| session                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// Enter runs the session guard. cached is the user remembered by the
// browser, shown until the check answers. It returns the confirmed user, or
// nil when the console must show the login form. The first successful
// check starts the bulk load.
func (c *Console) Enter(ctx context.Context, cached *portalclient.User) *portalclient.User {
	if cached != nil {
		c.mu.Lock()
		if c.user == nil {
			c.user = cached
		}
		c.mu.Unlock()
	}

	u := c.guard.Check(ctx)
	if u == nil {
		c.mu.Lock()
		c.signOutLocked()
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	c.user = u
	c.authenticated = true
	c.mu.Unlock()

	if !c.store.Loaded() {
		_ = c.Reload(ctx)
	}
	return c.User()
}

// Login signs in against the backend. On success the welcome toast is
// queued and the bulk load runs.
func (c *Console) Login(ctx context.Context, username, password string) (*portalclient.User, error) {
	u, err := c.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.user = u
	c.authenticated = true
	c.mu.Unlock()

	c.alerts.Show(AlertSuccess, "Welcome back!", "Welcome back, "+u.Username+"!")
	_ = c.Reload(ctx)
	return u, nil
}

// Logout ends the backend session. A failing logout call is only logged;
// the console is signed out either way.
func (c *Console) Logout(ctx context.Context) {
	if err := c.api.Logout(ctx); err != nil {
		c.logger.Warn("logout call failed", zap.Error(err))
	}
	c.mu.Lock()
	c.signOutLocked()
	c.mu.Unlock()
	c.alerts.Show(AlertInfo, "Logged out", "You have been successfully logged out.")
}

// signOutLocked forgets the user and the loaded data and invalidates any
// in-flight load. c.mu must be held.
func (c *Console) signOutLocked() {
	c.user = nil
	c.authenticated = false
	c.modal = Modal{}
	c.gen++
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	c.store.Reset()
}

/*─────────────────────────────────────────────────────────────────────────────*
| bulk load                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Reload fetches all ten lists and replaces the store. Starting a reload
// cancels the previous one; a load that is no longer the latest discards
// its results and returns ErrSuperseded. A 401 signs the console out.
func (c *Console) Reload(ctx context.Context) error {
	c.busy.Add(1)
	defer c.busy.Add(-1)

	c.mu.Lock()
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	c.gen++
	gen := c.gen
	lctx, cancel := context.WithCancel(ctx)
	c.cancelLoad = cancel
	c.mu.Unlock()
	defer cancel()

	lists, err := c.loader.LoadAll(lctx)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.cancelLoad = nil

	if err != nil {
		if portalclient.IsUnauthorized(err) {
			c.signOutLocked()
			c.mu.Unlock()
			c.alerts.Show(AlertWarning, "Session expired", "Please log in again.")
			return ErrSessionExpired
		}
		c.mu.Unlock()
		c.logger.Warn("bulk load failed", zap.Error(err))
		c.alerts.Show(AlertError, "Data Load Failed", "Failed to load data: "+err.Error())
		return wrapLoad(err)
	}

	c.store.ReplaceAll(lists)
	c.mu.Unlock()
	c.alerts.Show(AlertInfo, "Data Loaded", "All data has been loaded successfully.")
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| navigation                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// SetTab switches the visible tab. An open form is left alone. On compact
// viewports the menu closes.
func (c *Console) SetTab(t Tab, vp Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tab = t
	if vp.IsCompact() {
		c.menuOpen = false
	}
}

func (c *Console) ToggleMenu() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.menuOpen = !c.menuOpen
	return c.menuOpen
}

/*─────────────────────────────────────────────────────────────────────────────*
| form modal                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// OpenCreate opens the form for a new record of kind k with its defaults.
func (c *Console) OpenCreate(k models.Kind) {
	d := catalog.MustLookup(k)
	c.mu.Lock()
	c.modal = openCreate(k, d.CreateValues())
	c.mu.Unlock()
	c.alerts.Show(AlertInfo, "Create Mode", "Creating new "+k.Phrase())
}

// OpenEdit opens the form pre-filled with the stored record.
func (c *Console) OpenEdit(k models.Kind, id int64) error {
	rec, ok := c.store.Find(k, id)
	if !ok {
		return ErrNoSuchRecord
	}
	c.mu.Lock()
	c.modal = openEdit(k, rec)
	c.mu.Unlock()
	c.alerts.Show(AlertInfo, "Edit Mode", "Editing "+k.Phrase()+": "+catalog.ItemTitle(rec))
	return nil
}

// CancelModal closes the form without side effects.
func (c *Console) CancelModal() {
	c.mu.Lock()
	c.modal = Modal{}
	c.mu.Unlock()
}

// Submit shapes the submitted form for the open modal's kind and creates or
// updates the record. On success the returned record is merged into the
// list, everything is reloaded and the modal closes. On failure the modal
// stays open with the submitted values. file is used only by multipart
// kinds.
func (c *Console) Submit(ctx context.Context, form url.Values, file *portalclient.File) error {
	c.mu.Lock()
	m := c.modal
	c.mu.Unlock()
	if !m.Open() {
		return ErrModalClosed
	}

	c.busy.Add(1)
	defer c.busy.Add(-1)

	d := catalog.MustLookup(m.Kind)
	fail := func(err error) error {
		c.mu.Lock()
		if c.modal.Mode == m.Mode && c.modal.Kind == m.Kind {
			c.modal = m.withValues(d.Values(form))
		}
		c.mu.Unlock()
		c.alerts.Show(AlertError, "Save Failed", "Failed to save "+m.Kind.Phrase()+": "+err.Error())
		return err
	}

	payload, err := d.Shape(form)
	if err != nil {
		return fail(err)
	}
	sub := portalclient.Submission{
		Kind:      m.Kind,
		ID:        m.EditingID(),
		Payload:   payload,
		Multipart: d.Multipart,
	}
	if d.Multipart {
		sub.File = file
	}

	rec, err := c.api.Submit(ctx, sub)
	if err != nil {
		c.logger.Warn("submit failed", zap.String("kind", string(m.Kind)), zap.Error(err))
		return fail(err)
	}

	editing := m.Mode == ModalEditing
	if rec != nil {
		if editing {
			c.store.Patch(m.Kind, rec)
		} else {
			c.store.Append(m.Kind, rec)
		}
	}
	if editing {
		c.alerts.Show(AlertSuccess, "Updated Successfully", m.Kind.Phrase()+" has been updated successfully!")
	} else {
		c.alerts.Show(AlertSuccess, "Created Successfully", m.Kind.Phrase()+" has been created successfully!")
	}

	_ = c.Reload(ctx)

	c.mu.Lock()
	c.modal = Modal{}
	c.mu.Unlock()
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| delete                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// Delete removes the record on the backend, then from the local list. When
// the backend call fails the list is left as it was.
func (c *Console) Delete(ctx context.Context, k models.Kind, id int64) error {
	c.busy.Add(1)
	defer c.busy.Add(-1)

	if err := c.api.Delete(ctx, k, id); err != nil {
		c.logger.Warn("delete failed", zap.String("kind", string(k)), zap.Int64("id", id), zap.Error(err))
		c.alerts.Show(AlertError, "Delete Failed", "Failed to delete "+k.Phrase()+": "+err.Error())
		return err
	}
	c.store.Remove(k, id)
	if k == models.KindDepartments {
		// The backend deletes a department's personnel with it.
		c.store.RemoveWhere(models.KindPersonnel, func(r models.Record) bool {
			d, _ := r.Int("department_id")
			return d == id
		})
	}
	c.alerts.Show(AlertSuccess, "Deleted Successfully", k.Phrase()+" has been deleted successfully!")
	return nil
}

// internal/app/console/alerts.go
package console

import (
	"sync"
	"time"
)

// AlertKind is the visual style of a toast.
type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertInfo    AlertKind = "info"
	AlertWarning AlertKind = "warning"
	AlertError   AlertKind = "error"
)

// DefaultAlertDuration is how long a toast stays up unless dismissed.
const DefaultAlertDuration = 5 * time.Second

// Alert is one queued toast.
type Alert struct {
	ID        int64
	Kind      AlertKind
	Title     string
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// Alerts is an ordered toast queue. Each alert removes itself once its
// duration elapses. Identical alerts are not merged.
type Alerts struct {
	mu       sync.Mutex
	nextID   int64
	items    []Alert
	timers   map[int64]*time.Timer
	duration time.Duration
	now      func() time.Time
}

// NewAlerts returns an empty queue whose alerts last d (DefaultAlertDuration
// when d <= 0).
func NewAlerts(d time.Duration) *Alerts {
	if d <= 0 {
		d = DefaultAlertDuration
	}
	return &Alerts{
		timers:   make(map[int64]*time.Timer),
		duration: d,
		now:      time.Now,
	}
}

// Show queues an alert with the default duration and returns its id.
func (a *Alerts) Show(kind AlertKind, title, message string) int64 {
	return a.ShowFor(kind, title, message, a.duration)
}

// ShowFor queues an alert that lasts d.
func (a *Alerts) ShowFor(kind AlertKind, title, message string, d time.Duration) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextID++
	id := a.nextID
	a.items = append(a.items, Alert{
		ID:        id,
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: a.now(),
		Duration:  d,
	})
	a.timers[id] = time.AfterFunc(d, func() { a.Remove(id) })
	return id
}

// Remove dismisses one alert. It reports whether the alert was still queued.
func (a *Alerts) Remove(id int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if t, ok := a.timers[id]; ok {
		t.Stop()
		delete(a.timers, id)
	}
	for i, al := range a.items {
		if al.ID == id {
			a.items = append(a.items[:i], a.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the queue and stops every pending timer.
func (a *Alerts) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, t := range a.timers {
		t.Stop()
		delete(a.timers, id)
	}
	a.items = nil
}

// List returns the queued alerts, oldest first.
func (a *Alerts) List() []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Alert(nil), a.items...)
}

// internal/app/console/tabs.go
package console

import (
	"strings"

	"github.com/dalemusser/ccbportal/internal/domain/models"
)

// Tab is one entry of the console navigation: the dashboard or a kind.
type Tab string

const TabDashboard Tab = "dashboard"

// Tabs is the navigation order.
var Tabs = func() []Tab {
	out := []Tab{TabDashboard}
	for _, k := range models.Kinds {
		out = append(out, Tab(k))
	}
	return out
}()

// ParseTab accepts only the fixed tab keys.
func ParseTab(s string) (Tab, bool) {
	s = strings.TrimSpace(s)
	if Tab(s) == TabDashboard {
		return TabDashboard, true
	}
	if k, ok := models.ParseKind(s); ok {
		return Tab(k), true
	}
	return "", false
}

// Kind returns the resource kind the tab shows; ok is false for the dashboard.
func (t Tab) Kind() (models.Kind, bool) {
	if t == TabDashboard {
		return "", false
	}
	return models.ParseKind(string(t))
}

func (t Tab) Label() string {
	if k, ok := t.Kind(); ok {
		return k.Label()
	}
	return "Dashboard"
}

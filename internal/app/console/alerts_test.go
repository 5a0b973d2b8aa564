package console_test

import (
	"testing"
	"time"

	"github.com/dalemusser/ccbportal/internal/app/console"
)

func TestAlerts_IDsIncreaseAndDuplicatesStack(t *testing.T) {
	a := console.NewAlerts(time.Minute)
	defer a.Clear()

	id1 := a.Show(console.AlertInfo, "Same", "msg")
	id2 := a.Show(console.AlertInfo, "Same", "msg")
	if id2 <= id1 {
		t.Errorf("expected increasing ids, got %d then %d", id1, id2)
	}
	if got := len(a.List()); got != 2 {
		t.Errorf("expected 2 alerts, got %d", got)
	}
	if d := a.List()[0].Duration; d != time.Minute {
		t.Errorf("expected default duration, got %v", d)
	}
}

func TestAlerts_Remove(t *testing.T) {
	a := console.NewAlerts(time.Minute)
	defer a.Clear()

	id := a.Show(console.AlertError, "Delete Failed", "boom")
	keep := a.Show(console.AlertSuccess, "ok", "")

	if !a.Remove(id) {
		t.Error("expected Remove to report true")
	}
	if a.Remove(id) {
		t.Error("second Remove should report false")
	}
	list := a.List()
	if len(list) != 1 || list[0].ID != keep {
		t.Errorf("expected only alert %d, got %+v", keep, list)
	}
}

func TestAlerts_Clear(t *testing.T) {
	a := console.NewAlerts(time.Minute)
	a.Show(console.AlertInfo, "a", "")
	a.Show(console.AlertInfo, "b", "")
	a.Clear()
	if got := len(a.List()); got != 0 {
		t.Errorf("expected empty queue, got %d", got)
	}
	// ids keep increasing after a clear.
	if id := a.Show(console.AlertInfo, "c", ""); id != 3 {
		t.Errorf("expected id 3, got %d", id)
	}
	a.Clear()
}

func TestAlerts_ExpireAfterDuration(t *testing.T) {
	a := console.NewAlerts(time.Minute)
	a.ShowFor(console.AlertWarning, "short", "", 20*time.Millisecond)
	a.Show(console.AlertInfo, "long", "")
	defer a.Clear()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(a.List()) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	list := a.List()
	if len(list) != 1 || list[0].Title != "long" {
		t.Errorf("expected only the long alert left, got %+v", list)
	}
}

func TestNewAlerts_DefaultDuration(t *testing.T) {
	a := console.NewAlerts(0)
	defer a.Clear()
	a.Show(console.AlertInfo, "x", "")
	if d := a.List()[0].Duration; d != console.DefaultAlertDuration {
		t.Errorf("expected %v, got %v", console.DefaultAlertDuration, d)
	}
}

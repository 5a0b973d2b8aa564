package testutil

import (
	"io"
	"net/http"
	"sync"
)

// Rendered is one call captured by RecordingRenderer.
type Rendered struct {
	Name    string
	Snippet bool
	Data    any
}

// RecordingRenderer stands in for the template engine. It writes the view
// name to the response and remembers the data passed to it.
type RecordingRenderer struct {
	mu    sync.Mutex
	calls []Rendered
}

func (rr *RecordingRenderer) Page(w http.ResponseWriter, _ *http.Request, name string, data any) {
	rr.record(w, Rendered{Name: name, Data: data})
}

func (rr *RecordingRenderer) Snippet(w http.ResponseWriter, name string, data any) {
	rr.record(w, Rendered{Name: name, Snippet: true, Data: data})
}

func (rr *RecordingRenderer) record(w http.ResponseWriter, c Rendered) {
	rr.mu.Lock()
	rr.calls = append(rr.calls, c)
	rr.mu.Unlock()
	_, _ = io.WriteString(w, c.Name)
}

// Last returns the most recent render, or the zero value.
func (rr *RecordingRenderer) Last() Rendered {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	if len(rr.calls) == 0 {
		return Rendered{}
	}
	return rr.calls[len(rr.calls)-1]
}

// Count is the number of renders so far.
func (rr *RecordingRenderer) Count() int {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return len(rr.calls)
}

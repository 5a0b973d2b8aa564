// internal/app/features/adminconsole/records.go
package adminconsole

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dalemusser/ccbportal/internal/app/console"
	"github.com/dalemusser/ccbportal/internal/app/portalclient"
	"github.com/dalemusser/ccbportal/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// maxUpload bounds the multipart body of a news form.
const maxUpload = 8 << 20

/*─────────────────────────────────────────────────────────────────────────────*
| modal                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleNew handles POST /admin/{kind}/new.
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	c := consoleFrom(r)
	c.OpenCreate(k)
	h.respond(w, r, c)
}

// HandleEdit handles POST /admin/{kind}/{id}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	c := consoleFrom(r)
	if err := c.OpenEdit(k, id); err != nil {
		h.Log.Info("edit of missing record", zap.String("kind", string(k)), zap.Int64("id", id))
		c.Alerts().Show(console.AlertError, "Edit Failed", "That "+k.Phrase()+" no longer exists.")
	}
	h.respond(w, r, c)
}

// HandleCancel handles POST /admin/modal/cancel.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	c := consoleFrom(r)
	c.CancelModal()
	h.respond(w, r, c)
}

// HandleSubmit handles POST /admin/modal/submit. The outcome, good or bad,
// is reported through the toast queue; a failed save keeps the modal open
// with what the user typed.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	c := consoleFrom(r)

	file, closeFile, err := readForm(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", consoleHome)
		return
	}
	defer closeFile()

	// Create or update plus the full reload that follows.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := c.Submit(ctx, r.PostForm, file); errors.Is(err, console.ErrModalClosed) {
		h.Log.Info("submit without an open form", zap.String("console", c.ID))
	}
	h.respond(w, r, c)
}

// readForm parses a urlencoded or multipart body and returns the uploaded
// image, if any, with a func that releases it.
func readForm(r *http.Request) (*portalclient.File, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return nil, noop, r.ParseForm()
	}
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return nil, noop, err
	}

	f, hdr, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}
	if hdr.Size == 0 {
		_ = f.Close()
		return nil, noop, nil
	}
	return &portalclient.File{
		Field:       "image",
		Name:        hdr.Filename,
		ContentType: contentType(hdr),
		Data:        f,
	}, func() { _ = f.Close() }, nil
}

func contentType(hdr *multipart.FileHeader) string {
	if ct := hdr.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

/*─────────────────────────────────────────────────────────────────────────────*
| delete                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDelete handles POST /admin/{kind}/{id}/delete. The browser has
// already asked for confirmation.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	c := consoleFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_ = c.Delete(ctx, k, id)
	h.respond(w, r, c)
}

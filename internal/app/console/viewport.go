// internal/app/console/viewport.go
package console

import (
	"net/http"
	"strconv"
)

// ViewportCookie is written by the layout script with window.innerWidth.
const ViewportCookie = "vw"

// DefaultViewportWidth is assumed until the browser reports its width.
const DefaultViewportWidth = 1200

// ScrollThreshold is the row count above which the table scrolls.
const ScrollThreshold = 4

type Viewport struct {
	Width int
}

// ViewportFrom reads the width cookie, falling back to the default.
func ViewportFrom(r *http.Request) Viewport {
	if c, err := r.Cookie(ViewportCookie); err == nil {
		if w, err := strconv.Atoi(c.Value); err == nil && w > 0 {
			return Viewport{Width: w}
		}
	}
	return Viewport{Width: DefaultViewportWidth}
}

func (v Viewport) IsMobile() bool  { return v.Width <= 600 }
func (v Viewport) IsTablet() bool  { return v.Width > 600 && v.Width <= 1024 }
func (v Viewport) IsCompact() bool { return v.IsMobile() || v.IsTablet() }

// LayoutMode is how a resource list is drawn.
type LayoutMode string

const (
	LayoutCards       LayoutMode = "cards"
	LayoutTable       LayoutMode = "table"
	LayoutScrollTable LayoutMode = "scroll-table"
)

// Layout picks cards on compact viewports, otherwise a table that scrolls
// once it has more than ScrollThreshold rows.
func Layout(v Viewport, rows int) LayoutMode {
	switch {
	case v.IsCompact():
		return LayoutCards
	case rows > ScrollThreshold:
		return LayoutScrollTable
	default:
		return LayoutTable
	}
}

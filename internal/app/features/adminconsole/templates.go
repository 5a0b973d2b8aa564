// internal/app/features/adminconsole/templates.go
package adminconsole

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "adminconsole",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}

// internal/app/console/modal.go
package console

import "github.com/dalemusser/ccbportal/internal/domain/models"

// ModalMode is the form modal state.
type ModalMode int

const (
	ModalClosed ModalMode = iota
	ModalCreating
	ModalEditing
)

func (m ModalMode) String() string {
	switch m {
	case ModalCreating:
		return "creating"
	case ModalEditing:
		return "editing"
	}
	return "closed"
}

// Modal is the form modal. Values are what the form shows; Editing is the
// record being edited (nil when creating).
type Modal struct {
	Mode    ModalMode
	Kind    models.Kind
	Editing models.Record
	Values  models.Record
}

func (m Modal) Open() bool { return m.Mode != ModalClosed }

// EditingID is the id of the record being edited, 0 when creating.
func (m Modal) EditingID() int64 {
	if m.Mode != ModalEditing {
		return 0
	}
	return m.Editing.ID()
}

func openCreate(k models.Kind, defaults models.Record) Modal {
	return Modal{Mode: ModalCreating, Kind: k, Values: defaults}
}

func openEdit(k models.Kind, rec models.Record) Modal {
	vals := rec.Clone()
	if k == models.KindRequirements && !vals.Has("requirement_text") {
		vals["requirement_text"] = ""
	}
	return Modal{Mode: ModalEditing, Kind: k, Editing: rec, Values: vals}
}

// withValues keeps the mode and swaps in the values the user submitted.
func (m Modal) withValues(v models.Record) Modal {
	m.Values = v
	return m
}

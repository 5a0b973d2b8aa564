// internal/app/features/adminconsole/viewmodels.go
package adminconsole

import (
	"net/http"
	"strings"

	"github.com/dalemusser/ccbportal/internal/app/catalog"
	"github.com/dalemusser/ccbportal/internal/app/console"
	"github.com/dalemusser/ccbportal/internal/app/portalclient"
	"github.com/dalemusser/ccbportal/internal/app/system/viewdata"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"github.com/gorilla/csrf"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type pageData struct {
	viewdata.BaseVM
	Body bodyVM
}

// bodyVM is everything inside the console container; it is also the data
// of the console_body snippet.
type bodyVM struct {
	User      *portalclient.User
	Nav       []navItem
	Tab       string
	MenuOpen  bool
	Compact   bool
	Loading   bool
	Dashboard []statCard // dashboard tab only
	Table     *tableVM   // resource tabs only
	Modal     *modalVM   // nil when closed
	Alerts    []console.Alert
}

type navItem struct {
	Key    string
	Label  string
	Active bool
}

type statCard struct {
	Key   string
	Label string
	Count int
}

type tableVM struct {
	Kind    string
	Title   string
	Layout  console.LayoutMode
	Headers []string
	Rows    []rowVM
	Empty   string
	Confirm string
}

func (t *tableVM) Cards() bool      { return t.Layout == console.LayoutCards }
func (t *tableVM) Scrollable() bool { return t.Layout == console.LayoutScrollTable }

type rowVM struct {
	ID    int64
	Cells []cellVM
}

type cellVM struct {
	Label string
	Value string
}

type modalVM struct {
	Kind      string
	Heading   string
	Submit    string
	Editing   bool
	EditingID int64
	Multipart bool
	ImageURL  string
	CSRFToken string
	Fields    []fieldVM
}

type fieldVM struct {
	catalog.Field
	Value   string
	Checked bool
	Choices []choiceVM
}

type choiceVM struct {
	Value    string
	Label    string
	Selected bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| builders                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func buildBody(r *http.Request, c *console.Console) bodyVM {
	vp := console.ViewportFrom(r)
	tab := c.Tab()

	vm := bodyVM{
		User:     c.User(),
		Tab:      string(tab),
		MenuOpen: c.MenuOpen(),
		Compact:  vp.IsCompact(),
		Loading:  c.Loading(),
		Alerts:   c.Alerts().List(),
	}
	for _, t := range console.Tabs {
		vm.Nav = append(vm.Nav, navItem{Key: string(t), Label: t.Label(), Active: t == tab})
	}

	if k, ok := tab.Kind(); ok {
		vm.Table = buildTable(k, c.Store().List(k), vp)
	} else {
		counts := c.Store().Counts()
		for _, k := range models.Kinds {
			vm.Dashboard = append(vm.Dashboard, statCard{Key: string(k), Label: k.Label(), Count: counts[k]})
		}
	}

	if m := c.Modal(); m.Open() {
		vm.Modal = buildModal(m, c.Store().List(models.KindDepartments), csrf.Token(r))
	}
	return vm
}

func buildTable(k models.Kind, list []models.Record, vp console.Viewport) *tableVM {
	d := catalog.MustLookup(k)
	t := &tableVM{
		Kind:    string(k),
		Title:   titleCase(k.Phrase()),
		Layout:  console.Layout(vp, len(list)),
		Headers: d.Headers,
		Empty:   `No ` + k.Phrase() + ` found. Click "Add New" to create one.`,
		Confirm: "Are you sure you want to delete this " + string(k) + "?",
	}
	for _, rec := range list {
		values := d.Cells(rec)
		row := rowVM{ID: rec.ID(), Cells: make([]cellVM, len(values))}
		for i, v := range values {
			row.Cells[i] = cellVM{Label: d.Headers[i], Value: v}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func buildModal(m console.Modal, departments []models.Record, token string) *modalVM {
	d := catalog.MustLookup(m.Kind)
	editing := m.Mode == console.ModalEditing

	vm := &modalVM{
		Kind:      string(m.Kind),
		Heading:   "Create " + titleCase(m.Kind.Phrase()),
		Submit:    "Create",
		Editing:   editing,
		EditingID: m.EditingID(),
		Multipart: d.Multipart,
		CSRFToken: token,
	}
	if editing {
		vm.Heading = "Edit " + titleCase(m.Kind.Phrase())
		vm.Submit = "Update"
		vm.ImageURL = m.Editing.String("image")
	}

	values := m.Values
	if values == nil {
		values = models.Record{}
	}
	for _, f := range d.FormFields(departments, m.Editing) {
		fv := fieldVM{Field: f}
		switch f.Input {
		case catalog.InputCheckbox:
			fv.Checked = values.Bool(f.Name)
		case catalog.InputFile:
		default:
			fv.Value = values.String(f.Name)
		}
		for _, o := range f.Options {
			fv.Choices = append(fv.Choices, choiceVM{Value: o.Value, Label: o.Label, Selected: o.Value == fv.Value})
		}
		vm.Fields = append(vm.Fields, fv)
	}
	return vm
}

// titleCase upper-cases the first letter of each word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// internal/app/catalog/catalog.go
//
// Package catalog describes, per content kind, how the admin console shows
// and edits records: form fields, table headers and cells, create defaults
// and the shaping of submitted form values into an API payload.
package catalog

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/ccbportal/internal/domain/models"
)

// ErrNameRequired is returned when a department form is submitted without
// a name. No request is sent in that case.
var ErrNameRequired = errors.New("Name is required")

// InputKind is the HTML input rendered for a field.
type InputKind string

const (
	InputText     InputKind = "text"
	InputTextarea InputKind = "textarea"
	InputNumber   InputKind = "number"
	InputDate     InputKind = "date"
	InputTime     InputKind = "time"
	InputEmail    InputKind = "email"
	InputSelect   InputKind = "select"
	InputCheckbox InputKind = "checkbox"
	InputFile     InputKind = "file"
)

// Option is one entry of a select field.
type Option struct {
	Value string
	Label string
}

// Field describes one form control.
type Field struct {
	Name        string
	Label       string
	Input       InputKind
	Required    bool
	Options     []Option
	Rows        int    // textarea rows
	Min         string // number min attribute, "" for none
	Placeholder string
	Help        string
	Accept      string // file accept attribute

	// DepartmentOptions marks the personnel department select, whose
	// options come from the loaded department list.
	DepartmentOptions bool
	// WithImageOnly shows the field only when editing a record that has an image.
	WithImageOnly bool
}

// Descriptor is everything the console needs to know about one kind.
type Descriptor struct {
	Kind      models.Kind
	Fields    []Field // kind-specific fields; display_order and is_active are appended by FormFields
	Headers   []string
	Cells     func(models.Record) []string
	Defaults  models.Record // create-mode initial values, nil for none
	Shape     func(url.Values) (models.Record, error)
	Multipart bool
}

// Lookup returns the descriptor for k.
func Lookup(k models.Kind) (*Descriptor, bool) {
	d, ok := descriptors[k]
	return d, ok
}

// MustLookup is Lookup for kinds known to be valid.
func MustLookup(k models.Kind) *Descriptor {
	d, ok := descriptors[k]
	if !ok {
		panic("catalog: unknown kind " + string(k))
	}
	return d
}

var commonFields = []Field{
	{Name: "display_order", Label: "Display Order", Input: InputNumber, Min: "0"},
	{Name: "is_active", Label: "Active", Input: InputCheckbox},
}

// FormFields returns the full field list for a form: the kind's fields with
// department options resolved, then display_order and is_active. editing is
// the record being edited, or nil when creating.
func (d *Descriptor) FormFields(departments []models.Record, editing models.Record) []Field {
	out := make([]Field, 0, len(d.Fields)+len(commonFields))
	for _, f := range d.Fields {
		if f.WithImageOnly && (editing == nil || editing.String("image") == "") {
			continue
		}
		if f.DepartmentOptions {
			opts := []Option{{Value: "", Label: "Select Department"}}
			for _, dept := range departments {
				opts = append(opts, Option{Value: dept.String("id"), Label: dept.String("name")})
			}
			f.Options = opts
		}
		out = append(out, f)
	}
	return append(out, commonFields...)
}

// CreateValues returns a fresh copy of the create-mode defaults.
func (d *Descriptor) CreateValues() models.Record {
	if d.Defaults == nil {
		return models.Record{}
	}
	return d.Defaults.Clone()
}

// ItemTitle picks the name shown in "Editing ..." messages.
func ItemTitle(r models.Record) string {
	for _, key := range []string{"title", "name", "full_name", "requirement_text"} {
		if s := r.String(key); s != "" {
			return s
		}
	}
	return "Item"
}

// Status renders is_active.
func Status(r models.Record) string {
	if r.Bool("is_active") {
		return "Active"
	}
	return "Inactive"
}

// Values converts submitted form values to a record of strings, with
// checkboxes as booleans, for redisplay after a failed save.
func (d *Descriptor) Values(form url.Values) models.Record {
	out := models.Record{}
	for _, f := range append(append([]Field{}, d.Fields...), commonFields...) {
		switch f.Input {
		case InputCheckbox:
			out[f.Name] = checked(form, f.Name)
		case InputFile:
		default:
			out[f.Name] = form.Get(f.Name)
		}
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| value helpers                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func checked(form url.Values, name string) bool {
	return models.Record{"v": form.Get(name)}.Bool("v")
}

// parseNum reads a number the way a browser form field does: surrounding
// space is ignored and an unparseable value yields NaN.
func parseNum(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// numOr returns the parsed number, or def when it is NaN or zero.
func numOr(s string, def int64) int64 {
	f := parseNum(s)
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return def
	}
	return int64(f)
}

// numOrNil is numOr with no fallback: nil when NaN or zero.
func numOrNil(s string) any {
	f := parseNum(s)
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return nil
	}
	return int64(f)
}

// finiteOr returns the parsed number when finite, else def.
func finiteOr(s string, def int64) int64 {
	f := parseNum(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return int64(f)
}

func strOr(form url.Values, name, def string) string {
	if v := form.Get(name); v != "" {
		return v
	}
	return def
}

// common adds is_active and display_order to a payload.
func common(form url.Values, p models.Record) models.Record {
	p["is_active"] = checked(form, "is_active")
	p["display_order"] = numOr(form.Get("display_order"), 0)
	return p
}

// positionType is the personnel table label; anything that is not faculty
// or administrative is listed as support.
func positionType(s string) string {
	switch s {
	case "faculty":
		return "Faculty"
	case "administrative":
		return "Administrative"
	}
	return "Support"
}

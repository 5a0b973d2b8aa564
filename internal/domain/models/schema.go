// internal/domain/models/schema.go
package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// FieldType controls how an incoming value is coerced before storage.
type FieldType int

const (
	FieldString FieldType = iota // single-line text
	FieldText                    // multi-line free text
	FieldInt
	FieldBool
	FieldDate   // stored as YYYY-MM-DD
	FieldTime   // stored as HH:MM
	FieldEmail  // single-line text, validated when non-empty
	FieldChoice // one of Choices
	FieldRef    // integer id of another record, nil when unset
)

// FieldSpec describes one stored field of a content kind.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool // must be non-blank on create
	Default  any  // applied on create when the field is absent
	Choices  []Choice
	MaxLen   int // 0 means unlimited
}

// Schema is the backend description of a content kind.
type Schema struct {
	Kind       Kind
	Collection string
	Fields     []FieldSpec
	Sort       bson.D
}

// ValidationError reports a field that could not be accepted. Its message is
// returned to API clients verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func requiredErr(name string) error {
	return &ValidationError{Field: name, Message: fmt.Sprintf("Field %q is required", name)}
}

var common = []FieldSpec{
	{Name: "is_active", Type: FieldBool, Default: true},
	{Name: "display_order", Type: FieldInt, Default: int64(0)},
}

func str(name string, required bool) FieldSpec {
	return FieldSpec{Name: name, Type: FieldString, Required: required, MaxLen: 255}
}

func text(name string, required bool) FieldSpec {
	return FieldSpec{Name: name, Type: FieldText, Required: required}
}

func asc(keys ...string) bson.D {
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		dir := 1
		if strings.HasPrefix(k, "-") {
			dir = -1
			k = k[1:]
		}
		d = append(d, bson.E{Key: k, Value: dir})
	}
	return d
}

var schemas = map[Kind]*Schema{
	KindPrograms: {
		Collection: "academic_programs",
		Fields: []FieldSpec{
			str("title", true),
			{Name: "short_title", Type: FieldString, Required: true, MaxLen: 50},
			{Name: "program_type", Type: FieldChoice, Choices: ProgramTypes, Default: "BS"},
			text("description", true),
			{Name: "duration_years", Type: FieldInt, Default: int64(4)},
			{Name: "total_units", Type: FieldInt, Default: int64(120)},
			{Name: "with_enhancements", Type: FieldInt, Default: int64(0)},
			text("program_overview", false),
			text("core_courses", false),
			text("career_prospects", false),
		},
		Sort: asc("display_order", "title"),
	},
	KindEvents: {
		Collection: "events",
		Fields: []FieldSpec{
			str("title", true),
			text("description", true),
			text("details", false),
			{Name: "event_date", Type: FieldDate, Required: true},
			{Name: "start_time", Type: FieldTime, Required: true},
			{Name: "end_time", Type: FieldTime, Required: true},
			str("location", false),
			str("image", false),
		},
		Sort: asc("display_order", "event_date", "start_time", "title"),
	},
	KindAchievements: {
		Collection: "achievements",
		Fields: []FieldSpec{
			str("title", true),
			text("description", true),
			text("details", false),
			{Name: "achievement_date", Type: FieldDate, Required: true},
			{Name: "category", Type: FieldString, Default: "Achievement", MaxLen: 100},
			str("image", false),
		},
		Sort: asc("display_order", "-achievement_date", "title"),
	},
	KindAnnouncements: {
		Collection: "announcements",
		Fields: []FieldSpec{
			str("title", true),
			{Name: "date", Type: FieldDate, Required: true},
			text("body", true),
			text("details", false),
			str("image", false),
		},
		Sort: asc("display_order", "-date", "title"),
	},
	// News images are managed through uploads; "image" is not a writable field.
	KindNews: {
		Collection: "news",
		Fields: []FieldSpec{
			str("title", true),
			{Name: "date", Type: FieldDate, Required: true},
			text("body", true),
			text("details", false),
		},
		Sort: asc("display_order", "-date", "title"),
	},
	KindDepartments: {
		Collection: "departments",
		Fields: []FieldSpec{
			str("name", true),
			{Name: "department_type", Type: FieldChoice, Choices: DepartmentTypes, Default: "academic"},
			text("description", false),
			str("office_location", false),
			{Name: "phone", Type: FieldString, MaxLen: 50},
			{Name: "email", Type: FieldEmail, MaxLen: 254},
			str("head_name", false),
			str("head_title", false),
		},
		Sort: asc("department_type", "display_order", "name"),
	},
	KindPersonnel: {
		Collection: "personnel",
		Fields: []FieldSpec{
			{Name: "department_id", Type: FieldRef, Required: true},
			{Name: "first_name", Type: FieldString, Required: true, MaxLen: 100},
			{Name: "last_name", Type: FieldString, Required: true, MaxLen: 100},
			{Name: "middle_name", Type: FieldString, MaxLen: 100},
			{Name: "position_type", Type: FieldChoice, Choices: PositionTypes, Default: "faculty"},
			str("title", true),
			str("specialization", false),
			{Name: "email", Type: FieldEmail, MaxLen: 254},
			{Name: "phone", Type: FieldString, MaxLen: 50},
			str("office_location", false),
			text("bio", false),
			text("qualifications", false),
		},
		Sort: asc("department_id", "position_type", "display_order", "last_name", "first_name"),
	},
	KindRequirements: {
		Collection: "admission_requirements",
		Fields: []FieldSpec{
			{Name: "category", Type: FieldChoice, Choices: StudentCategories, Required: true},
			text("requirement_text", true),
		},
		Sort: asc("category", "display_order", "_id"),
	},
	KindSteps: {
		Collection: "enrollment_steps",
		Fields: []FieldSpec{
			{Name: "category", Type: FieldChoice, Choices: StudentCategories, Default: "new-scholar"},
			{Name: "step_number", Type: FieldInt, Default: int64(1)},
			str("title", true),
			text("description", true),
		},
		Sort: asc("category", "step_number", "display_order"),
	},
	KindNotes: {
		Collection: "admission_notes",
		Fields: []FieldSpec{
			str("title", true),
			text("note_text", true),
		},
		Sort: asc("display_order", "title"),
	},
}

func init() {
	for k, s := range schemas {
		s.Kind = k
		s.Fields = append(s.Fields, common...)
	}
}

// SchemaFor returns the schema for k, or nil when k is unknown.
func SchemaFor(k Kind) *Schema { return schemas[k] }

// Field looks up a field by name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// BuildCreate coerces in into a document for insertion. Absent fields take
// their defaults; required fields must end up non-blank. Unknown keys are
// ignored.
func (s *Schema) BuildCreate(in Record) (Record, error) {
	out := make(Record, len(s.Fields))
	for _, f := range s.Fields {
		raw, present := in[f.Name]
		var (
			v   any
			err error
		)
		if present {
			v, err = f.Coerce(raw)
			if err != nil {
				return nil, err
			}
		}
		if !present || (f.blank(v) && f.Default != nil) {
			v = f.zero()
		}
		if f.Required && f.blank(v) {
			return nil, requiredErr(f.Name)
		}
		out[f.Name] = v
	}
	return out, nil
}

// BuildUpdate coerces only the fields present in in. Required fields may
// not be cleared.
func (s *Schema) BuildUpdate(in Record) (Record, error) {
	out := Record{}
	for _, f := range s.Fields {
		raw, present := in[f.Name]
		if !present {
			continue
		}
		v, err := f.Coerce(raw)
		if err != nil {
			return nil, err
		}
		if f.blank(v) && f.Default != nil {
			v = f.zero()
		}
		if f.Required && f.blank(v) {
			return nil, requiredErr(f.Name)
		}
		out[f.Name] = v
	}
	return out, nil
}

// Coerce converts a decoded JSON or form value to the stored representation.
func (f FieldSpec) Coerce(v any) (any, error) {
	switch f.Type {
	case FieldString, FieldText, FieldEmail:
		s := strings.TrimSpace(asString(v))
		if f.MaxLen > 0 && len([]rune(s)) > f.MaxLen {
			return nil, &ValidationError{Field: f.Name,
				Message: fmt.Sprintf("Field %q must be at most %d characters", f.Name, f.MaxLen)}
		}
		return s, nil

	case FieldChoice:
		s := strings.TrimSpace(asString(v))
		if s == "" {
			return "", nil
		}
		if !hasChoice(f.Choices, s) {
			return nil, &ValidationError{Field: f.Name, Message: fmt.Sprintf("Invalid value for %q: %s", f.Name, s)}
		}
		return s, nil

	case FieldInt:
		if isEmpty(v) {
			return nil, nil
		}
		n, ok := toInt(v)
		if !ok {
			return nil, &ValidationError{Field: f.Name, Message: fmt.Sprintf("Field %q must be a number", f.Name)}
		}
		return n, nil

	case FieldRef:
		if isEmpty(v) {
			return nil, nil
		}
		n, ok := toInt(v)
		if !ok || n <= 0 {
			return nil, &ValidationError{Field: f.Name, Message: fmt.Sprintf("Field %q must be a valid id", f.Name)}
		}
		return n, nil

	case FieldBool:
		return Record{"v": v}.Bool("v"), nil

	case FieldDate:
		s := strings.TrimSpace(asString(v))
		if s == "" {
			return "", nil
		}
		d, err := ParseDate(s)
		if err != nil {
			return nil, &ValidationError{Field: f.Name, Message: fmt.Sprintf("Invalid date for %q: %s", f.Name, s)}
		}
		return d, nil

	case FieldTime:
		s := strings.TrimSpace(asString(v))
		if s == "" {
			return "", nil
		}
		t, err := ParseClock(s)
		if err != nil {
			return nil, &ValidationError{Field: f.Name, Message: fmt.Sprintf("Invalid time for %q: %s", f.Name, s)}
		}
		return t, nil
	}
	return v, nil
}

func (f FieldSpec) zero() any {
	if f.Default != nil {
		return f.Default
	}
	switch f.Type {
	case FieldInt:
		return int64(0)
	case FieldBool:
		return false
	case FieldRef:
		return nil
	}
	return ""
}

func (f FieldSpec) blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	return Record{"v": v}.String("v")
}

var dateLayouts = []string{"2006-01-02", "01/02/2006", "02/01/2006"}

// ParseDate accepts YYYY-MM-DD, MM/DD/YYYY or DD/MM/YYYY (tried in that
// order) and an RFC 3339 timestamp, returning YYYY-MM-DD.
func ParseDate(s string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02"), nil
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// ParseClock accepts HH:MM or HH:MM:SS and returns HH:MM.
func ParseClock(s string) (string, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("unrecognized time %q", s)
}

// Derive adds the read-only fields computed from stored ones. Derivations
// that need other collections (department_name) are done by the caller.
func Derive(k Kind, rec Record) {
	switch k {
	case KindPersonnel:
		first, middle, last := rec.String("first_name"), rec.String("middle_name"), rec.String("last_name")
		if middle != "" {
			rec["full_name"] = first + " " + middle + " " + last
		} else {
			rec["full_name"] = first + " " + last
		}
		title, spec := rec.String("title"), rec.String("specialization")
		if spec != "" {
			rec["display_title"] = title + " - " + spec
		} else {
			rec["display_title"] = title
		}
	case KindRequirements:
		rec["category_display"] = ChoiceLabel(StudentCategories, rec.String("category"))
	}
}

// internal/app/catalog/descriptors.go
package catalog

import (
	"net/url"
	"strings"

	"github.com/dalemusser/ccbportal/internal/domain/models"
)

func options(choices []models.Choice) []Option {
	out := make([]Option, len(choices))
	for i, c := range choices {
		out[i] = Option{Value: c.Value, Label: c.Label}
	}
	return out
}

// copyStrings copies the named form values into p verbatim.
func copyStrings(form url.Values, p models.Record, names ...string) models.Record {
	for _, n := range names {
		p[n] = form.Get(n)
	}
	return p
}

var descriptors = map[models.Kind]*Descriptor{
	models.KindPrograms: {
		Kind: models.KindPrograms,
		Fields: []Field{
			{Name: "title", Label: "Title", Input: InputText, Required: true},
			{Name: "short_title", Label: "Short Title", Input: InputText, Required: true},
			{Name: "program_type", Label: "Program Type", Input: InputSelect, Required: true, Options: options(models.ProgramTypes)},
			{Name: "description", Label: "Description", Input: InputTextarea, Required: true, Rows: 3},
			{Name: "duration_years", Label: "Duration (Years)", Input: InputNumber, Required: true, Min: "1"},
			{Name: "total_units", Label: "Total Units", Input: InputNumber, Required: true, Min: "1"},
			{Name: "with_enhancements", Label: "With Enhancements", Input: InputNumber, Min: "0"},
			{Name: "program_overview", Label: "Program Overview", Input: InputTextarea, Rows: 4},
			{Name: "core_courses", Label: "Core Courses", Input: InputTextarea, Rows: 6, Help: "Enter each course on a new line"},
			{Name: "career_prospects", Label: "Career Prospects", Input: InputTextarea, Rows: 4},
		},
		Headers: []string{"Title", "Short Title", "Duration", "Units", "Status"},
		Cells: func(r models.Record) []string {
			return []string{
				orNA(r.String("title")),
				orNA(r.String("short_title")),
				presentOrNA(r, "duration_years"),
				presentOrNA(r, "total_units"),
				Status(r),
			}
		},
		Shape: func(form url.Values) (models.Record, error) {
			p := copyStrings(form, models.Record{},
				"title", "short_title", "program_type", "description",
				"program_overview", "core_courses", "career_prospects")
			p["duration_years"] = numOr(form.Get("duration_years"), 4)
			p["total_units"] = numOr(form.Get("total_units"), 120)
			p["with_enhancements"] = numOr(form.Get("with_enhancements"), 0)
			return common(form, p), nil
		},
	},

	models.KindEvents: {
		Kind: models.KindEvents,
		Fields: []Field{
			{Name: "title", Label: "Title", Input: InputText, Required: true},
			{Name: "description", Label: "Description", Input: InputTextarea, Required: true, Rows: 3},
			{Name: "details", Label: "Details", Input: InputTextarea, Rows: 4},
			{Name: "event_date", Label: "Event Date", Input: InputDate, Required: true},
			{Name: "start_time", Label: "Start Time", Input: InputTime, Required: true},
			{Name: "end_time", Label: "End Time", Input: InputTime, Required: true},
			{Name: "location", Label: "Location", Input: InputText},
		},
		Headers: []string{"Title", "Date", "Time", "Location", "Status"},
		Cells: func(r models.Record) []string {
			loc := r.String("location")
			if strings.TrimSpace(loc) == "" {
				loc = "TBA"
			}
			return []string{
				orNA(r.String("title")),
				orNA(r.String("event_date")),
				orNA(r.String("start_time")) + " - " + orNA(r.String("end_time")),
				loc,
				Status(r),
			}
		},
		Shape: func(form url.Values) (models.Record, error) {
			p := copyStrings(form, models.Record{},
				"title", "description", "details", "event_date", "start_time", "end_time", "location")
			return common(form, p), nil
		},
	},

	models.KindAchievements: {
		Kind: models.KindAchievements,
		Fields: []Field{
			{Name: "title", Label: "Title", Input: InputText, Required: true},
			{Name: "description", Label: "Description", Input: InputTextarea, Required: true, Rows: 3},
			{Name: "details", Label: "Details", Input: InputTextarea, Rows: 4},
			{Name: "achievement_date", Label: "Achievement Date", Input: InputDate, Required: true},
			{Name: "category", Label: "Category", Input: InputText, Required: true},
		},
		Headers: []string{"Title", "Date", "Category", "Status"},
		Cells: func(r models.Record) []string {
			return []string{
				orNA(r.String("title")),
				orNA(r.String("achievement_date")),
				orNA(r.String("category")),
				Status(r),
			}
		},
		Shape: func(form url.Values) (models.Record, error) {
			p := copyStrings(form, models.Record{},
				"title", "description", "details", "achievement_date", "category")
			return common(form, p), nil
		},
	},

	models.KindAnnouncements: {
		Kind: models.KindAnnouncements,
		Fields: []Field{
			{Name: "title", Label: "Title", Input: InputText, Required: true},
			{Name: "date", Label: "Date", Input: InputDate, Required: true},
			{Name: "body", Label: "Body", Input: InputTextarea, Required: true, Rows: 4},
			{Name: "details", Label: "Details", Input: InputTextarea, Rows: 4},
		},
		Headers: []string{"Title", "Date", "Status"},
		Cells: func(r models.Record) []string {
			return []string{orNA(r.String("title")), orNA(r.String("date")), Status(r)}
		},
		Shape: func(form url.Values) (models.Record, error) {
			p := copyStrings(form, models.Record{}, "title", "date", "body", "details")
			return common(form, p), nil
		},
	},

	models.KindNews: {
		Kind:      models.KindNews,
		Multipart: true,
		Fields: []Field{
			{Name: "title", Label: "Title", Input: InputText, Required: true},
			{Name: "date", Label: "Date", Input: InputDate, Required: true},
			{Name: "body", Label: "Body", Input: InputTextarea, Required: true, Rows: 4},
			{Name: "details", Label: "Details", Input: InputTextarea, Rows: 4},
			{Name: "image", Label: "Image", Input: InputFile, Accept: "image/*"},
			{Name: "remove_image", Label: "Remove current image", Input: InputCheckbox, WithImageOnly: true},
		},
		Headers: []string{"Title", "Date", "Image", "Status"},
		Cells: func(r models.Record) []string {
			img := "No"
			if r.String("image") != "" {
				img = "Yes"
			}
			return []string{orNA(r.String("title")), orNA(r.String("date")), img, Status(r)}
		},
		Defaults: models.Record{"is_active": true, "display_order": int64(0)},
		// Multipart fields are strings; the image file is attached separately.
		Shape: func(form url.Values) (models.Record, error) {
			p := copyStrings(form, models.Record{}, "title", "date", "body", "details")
			if checked(form, "is_active") {
				p["is_active"] = "true"
			} else {
				p["is_active"] = "false"
			}
			p["display_order"] = form.Get("display_order")
			if checked(form, "remove_image") {
				p["remove_image"] = "true"
			}
			return p, nil
		},
	},

	models.KindDepartments: {
		Kind: models.KindDepartments,
		Fields: []Field{
			{Name: "name", Label: "Department Name", Input: InputText, Required: true},
			{Name: "department_type", Label: "Department Type", Input: InputSelect, Required: true, Options: options(models.DepartmentTypes)},
			{Name: "description", Label: "Description", Input: InputTextarea, Rows: 3},
			{Name: "office_location", Label: "Office Location", Input: InputText},
			{Name: "phone", Label: "Phone", Input: InputText},
			{Name: "email", Label: "Email", Input: InputEmail},
			{Name: "head_name", Label: "Head Name", Input: InputText},
			{Name: "head_title", Label: "Head Title", Input: InputText},
		},
		Headers: []string{"Name", "Type", "Head", "Office", "Status"},
		Cells: func(r models.Record) []string {
			typ := "Administrative"
			if r.String("department_type") == "academic" {
				typ = "Academic"
			}
			return []string{
				orNA(r.String("name")),
				typ,
				orNA(r.String("head_name")),
				orNA(r.String("office_location")),
				Status(r),
			}
		},
		Shape: func(form url.Values) (models.Record, error) {
			name := strings.TrimSpace(form.Get("name"))
			if name == "" {
				return nil, ErrNameRequired
			}
			p := copyStrings(form, models.Record{},
				"description", "office_location", "phone", "email", "head_name", "head_title")
			p["name"] = name
			p["department_type"] = strOr(form, "department_type", "academic")
			p["is_active"] = checked(form, "is_active")
			p["display_order"] = finiteOr(form.Get("display_order"), 0)
			return p, nil
		},
	},

	models.KindPersonnel: {
		Kind: models.KindPersonnel,
		Fields: []Field{
			{Name: "department_id", Label: "Department", Input: InputSelect, Required: true, DepartmentOptions: true},
			{Name: "first_name", Label: "First Name", Input: InputText, Required: true},
			{Name: "last_name", Label: "Last Name", Input: InputText, Required: true},
			{Name: "middle_name", Label: "Middle Name", Input: InputText},
			{Name: "position_type", Label: "Position Type", Input: InputSelect, Required: true, Options: options(models.PositionTypes)},
			{Name: "title", Label: "Title/Position", Input: InputText, Required: true},
			{Name: "specialization", Label: "Specialization", Input: InputText},
			{Name: "email", Label: "Email", Input: InputEmail},
			{Name: "phone", Label: "Phone", Input: InputText},
			{Name: "office_location", Label: "Office Location", Input: InputText},
			{Name: "bio", Label: "Bio", Input: InputTextarea, Rows: 3},
			{Name: "qualifications", Label: "Qualifications", Input: InputTextarea, Rows: 3},
		},
		Headers: []string{"Name", "Department", "Title", "Position Type", "Status"},
		Cells: func(r models.Record) []string {
			return []string{
				orNA(r.String("full_name")),
				orNA(r.String("department_name")),
				orNA(r.String("title")),
				positionType(r.String("position_type")),
				Status(r),
			}
		},
		Shape: func(form url.Values) (models.Record, error) {
			p := copyStrings(form, models.Record{},
				"first_name", "last_name", "middle_name", "position_type", "title",
				"specialization", "email", "phone", "office_location", "bio", "qualifications")
			p["department_id"] = numOrNil(form.Get("department_id"))
			return common(form, p), nil
		},
	},

	models.KindRequirements: {
		Kind: models.KindRequirements,
		Fields: []Field{
			{Name: "category", Label: "Category", Input: InputSelect, Required: true, Options: options(models.StudentCategories)},
			{Name: "requirement_text", Label: "Requirements List", Input: InputTextarea, Required: true, Rows: 8,
				Help: "Enter each requirement on a new line"},
		},
		Headers: []string{"Category", "Requirement", "Status"},
		Cells: func(r models.Record) []string {
			cat := r.String("category_display")
			if cat == "" {
				cat = r.String("category")
			}
			return []string{orNA(cat), orNA(r.String("requirement_text")), Status(r)}
		},
		Defaults: models.Record{"category": "new-scholar", "is_active": true, "display_order": int64(0)},
		Shape: func(form url.Values) (models.Record, error) {
			p := models.Record{
				"category":         strOr(form, "category", "new-scholar"),
				"requirement_text": form.Get("requirement_text"),
			}
			return common(form, p), nil
		},
	},

	models.KindSteps: {
		Kind: models.KindSteps,
		Fields: []Field{
			{Name: "step_number", Label: "Step Number", Input: InputNumber, Required: true, Min: "1"},
			{Name: "title", Label: "Title", Input: InputText, Required: true},
			{Name: "description", Label: "Description", Input: InputTextarea, Required: true, Rows: 4},
		},
		Headers: []string{"Step", "Title", "Status"},
		Cells: func(r models.Record) []string {
			step := "N/A"
			if n, ok := r.Int("step_number"); ok && n != 0 {
				step = r.String("step_number")
			}
			return []string{step, orNA(r.String("title")), Status(r)}
		},
		Defaults: models.Record{"step_number": int64(1), "is_active": true, "display_order": int64(0)},
		Shape: func(form url.Values) (models.Record, error) {
			p := copyStrings(form, models.Record{}, "title", "description")
			p["step_number"] = numOr(form.Get("step_number"), 1)
			return common(form, p), nil
		},
	},

	models.KindNotes: {
		Kind: models.KindNotes,
		Fields: []Field{
			{Name: "title", Label: "Title", Input: InputText, Required: true},
			{Name: "note_text", Label: "Note Text", Input: InputTextarea, Required: true, Rows: 4},
		},
		Headers: []string{"Title", "Status"},
		Cells: func(r models.Record) []string {
			return []string{orNA(r.String("title")), Status(r)}
		},
		Defaults: models.Record{"is_active": true, "display_order": int64(0)},
		Shape: func(form url.Values) (models.Record, error) {
			p := models.Record{
				"title":     form.Get("title"),
				"note_text": strOr(form, "note_text", form.Get("body")),
			}
			return common(form, p), nil
		},
	},
}

// presentOrNA renders a value that is N/A only when absent; zero is shown.
func presentOrNA(r models.Record, key string) string {
	if !r.Has(key) {
		return "N/A"
	}
	return orNA(r.String(key))
}

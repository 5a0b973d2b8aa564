package models_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/ccbportal/internal/domain/models"
)

func TestSchemaFor_AllKinds(t *testing.T) {
	for _, k := range models.Kinds {
		s := models.SchemaFor(k)
		if s == nil {
			t.Fatalf("no schema for %s", k)
		}
		if s.Kind != k {
			t.Errorf("%s: schema kind = %s", k, s.Kind)
		}
		if _, ok := s.Field("is_active"); !ok {
			t.Errorf("%s: missing is_active", k)
		}
		if _, ok := s.Field("display_order"); !ok {
			t.Errorf("%s: missing display_order", k)
		}
		if len(s.Sort) == 0 {
			t.Errorf("%s: empty sort", k)
		}
	}
}

func TestBuildCreate_Defaults(t *testing.T) {
	s := models.SchemaFor(models.KindPrograms)
	doc, err := s.BuildCreate(models.Record{
		"title":       "Computer Science",
		"short_title": "BSCS",
		"description": "Study of computation",
	})
	if err != nil {
		t.Fatalf("BuildCreate failed: %v", err)
	}

	if doc["program_type"] != "BS" {
		t.Errorf("program_type: got %v, want BS", doc["program_type"])
	}
	if doc["duration_years"] != int64(4) {
		t.Errorf("duration_years: got %v, want 4", doc["duration_years"])
	}
	if doc["total_units"] != int64(120) {
		t.Errorf("total_units: got %v, want 120", doc["total_units"])
	}
	if doc["is_active"] != true {
		t.Errorf("is_active: got %v, want true", doc["is_active"])
	}
	if doc["display_order"] != int64(0) {
		t.Errorf("display_order: got %v, want 0", doc["display_order"])
	}
}

func TestBuildCreate_RequiredField(t *testing.T) {
	s := models.SchemaFor(models.KindEvents)
	_, err := s.BuildCreate(models.Record{
		"title":       "Open House",
		"description": "Campus tour",
		"event_date":  "2024-03-01",
		"start_time":  "09:00",
	})
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Message != `Field "end_time" is required` {
		t.Errorf("message: got %q", ve.Message)
	}
}

func TestBuildCreate_BlankRequiredRejected(t *testing.T) {
	s := models.SchemaFor(models.KindNotes)
	_, err := s.BuildCreate(models.Record{"title": "   ", "note_text": "x"})
	if err == nil || err.Error() != `Field "title" is required` {
		t.Fatalf("expected title required, got %v", err)
	}
}

func TestBuildCreate_PersonnelRequiresDepartment(t *testing.T) {
	s := models.SchemaFor(models.KindPersonnel)
	_, err := s.BuildCreate(models.Record{
		"department_id": nil,
		"first_name":    "Ana",
		"last_name":     "Cruz",
		"title":         "Instructor",
	})
	if err == nil || err.Error() != `Field "department_id" is required` {
		t.Fatalf("expected department_id required, got %v", err)
	}
}

func TestBuildCreate_Coercion(t *testing.T) {
	s := models.SchemaFor(models.KindEvents)
	doc, err := s.BuildCreate(models.Record{
		"title":         "Fair",
		"description":   "Job fair",
		"event_date":    "03/15/2024",
		"start_time":    "08:30:00",
		"end_time":      "17:00",
		"is_active":     "false",
		"display_order": "3",
	})
	if err != nil {
		t.Fatalf("BuildCreate failed: %v", err)
	}
	if doc["event_date"] != "2024-03-15" {
		t.Errorf("event_date: got %v", doc["event_date"])
	}
	if doc["start_time"] != "08:30" {
		t.Errorf("start_time: got %v", doc["start_time"])
	}
	if doc["is_active"] != false {
		t.Errorf("is_active: got %v", doc["is_active"])
	}
	if doc["display_order"] != int64(3) {
		t.Errorf("display_order: got %v", doc["display_order"])
	}
}

func TestBuildCreate_InvalidChoice(t *testing.T) {
	s := models.SchemaFor(models.KindDepartments)
	_, err := s.BuildCreate(models.Record{"name": "Registrar", "department_type": "secret"})
	if err == nil {
		t.Fatal("expected error for invalid department_type")
	}
}

func TestBuildCreate_InvalidNumber(t *testing.T) {
	s := models.SchemaFor(models.KindSteps)
	_, err := s.BuildCreate(models.Record{"title": "Pay", "description": "Pay fees", "step_number": "abc"})
	if err == nil {
		t.Fatal("expected error for non-numeric step_number")
	}
}

func TestBuildUpdate_OnlyPresentFields(t *testing.T) {
	s := models.SchemaFor(models.KindAnnouncements)
	set, err := s.BuildUpdate(models.Record{"title": "New title", "unknown": 1})
	if err != nil {
		t.Fatalf("BuildUpdate failed: %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("expected 1 field, got %v", set)
	}
	if set["title"] != "New title" {
		t.Errorf("title: got %v", set["title"])
	}
}

func TestBuildUpdate_CannotClearRequired(t *testing.T) {
	s := models.SchemaFor(models.KindAnnouncements)
	if _, err := s.BuildUpdate(models.Record{"body": ""}); err == nil {
		t.Fatal("expected error clearing body")
	}
}

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2024-01-31":           "2024-01-31",
		"01/31/2024":           "2024-01-31",
		"31/01/2024":           "2024-01-31",
		"2024-01-31T10:00:00Z": "2024-01-31",
	}
	for in, want := range cases {
		got, err := models.ParseDate(in)
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseDate(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := models.ParseDate("tomorrow"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestParseClock(t *testing.T) {
	if got, _ := models.ParseClock("7:05"); got != "07:05" {
		t.Errorf("ParseClock(7:05) = %q", got)
	}
	if got, _ := models.ParseClock("13:45:10"); got != "13:45" {
		t.Errorf("ParseClock(13:45:10) = %q", got)
	}
	if _, err := models.ParseClock("25:00"); err == nil {
		t.Error("expected error for 25:00")
	}
}

func TestDerive_Personnel(t *testing.T) {
	rec := models.Record{"first_name": "Maria", "middle_name": "L", "last_name": "Santos", "title": "Dean", "specialization": "Physics"}
	models.Derive(models.KindPersonnel, rec)
	if rec["full_name"] != "Maria L Santos" {
		t.Errorf("full_name: got %v", rec["full_name"])
	}
	if rec["display_title"] != "Dean - Physics" {
		t.Errorf("display_title: got %v", rec["display_title"])
	}

	rec = models.Record{"first_name": "Jo", "last_name": "Reyes", "title": "Clerk"}
	models.Derive(models.KindPersonnel, rec)
	if rec["full_name"] != "Jo Reyes" {
		t.Errorf("full_name: got %v", rec["full_name"])
	}
	if rec["display_title"] != "Clerk" {
		t.Errorf("display_title: got %v", rec["display_title"])
	}
}

func TestDerive_Requirements(t *testing.T) {
	rec := models.Record{"category": "continuing-non-scholar"}
	models.Derive(models.KindRequirements, rec)
	if rec["category_display"] != "Continuing Student (Non-Scholar)" {
		t.Errorf("category_display: got %v", rec["category_display"])
	}
}

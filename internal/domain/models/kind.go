// internal/domain/models/kind.go
package models

import "strings"

// Kind identifies one of the ten content types managed by the admin console.
// The string value doubles as the console tab key and the REST path segment
// under /api/admin/.
type Kind string

const (
	KindPrograms      Kind = "academic-programs"
	KindEvents        Kind = "events"
	KindAchievements  Kind = "achievements"
	KindAnnouncements Kind = "announcements"
	KindNews          Kind = "news"
	KindDepartments   Kind = "departments"
	KindPersonnel     Kind = "personnel"
	KindRequirements  Kind = "admission-requirements"
	KindSteps         Kind = "enrollment-steps"
	KindNotes         Kind = "admission-notes"
)

// Kinds lists every content kind in console tab order.
var Kinds = []Kind{
	KindPrograms,
	KindEvents,
	KindAchievements,
	KindAnnouncements,
	KindNews,
	KindDepartments,
	KindPersonnel,
	KindRequirements,
	KindSteps,
	KindNotes,
}

type kindInfo struct {
	label   string // tab / dashboard label
	listKey string // key holding the list in list responses
	itemKey string // key holding the record in create/update responses
	noun    string // singular noun for messages ("Program not found")
}

var kindTable = map[Kind]kindInfo{
	KindPrograms:      {"Academic Programs", "programs", "program", "Program"},
	KindEvents:        {"Events", "events", "event", "Event"},
	KindAchievements:  {"Achievements", "achievements", "achievement", "Achievement"},
	KindAnnouncements: {"Announcements", "announcements", "announcement", "Announcement"},
	KindNews:          {"News", "news", "news", "News"},
	KindDepartments:   {"Departments", "departments", "department", "Department"},
	KindPersonnel:     {"Personnel", "personnel", "personnel", "Personnel"},
	KindRequirements:  {"Admission Requirements", "requirements", "requirement", "Requirement"},
	KindSteps:         {"Enrollment Steps", "steps", "step", "Enrollment step"},
	KindNotes:         {"Admission Notes", "notes", "note", "Admission note"},
}

// ParseKind returns the Kind for s and whether s names a known kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.TrimSpace(s))
	_, ok := kindTable[k]
	return k, ok
}

// Valid reports whether k is one of the ten known kinds.
func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// Label is the human-facing plural label ("Admission Requirements").
func (k Kind) Label() string { return kindTable[k].label }

// ListKey is the JSON key carrying the list in GET responses ("requirements").
func (k Kind) ListKey() string { return kindTable[k].listKey }

// ItemKey is the JSON key carrying a single record in mutation responses.
func (k Kind) ItemKey() string { return kindTable[k].itemKey }

// Noun is the singular noun used in backend messages.
func (k Kind) Noun() string { return kindTable[k].noun }

// Phrase is the kind as it reads inside console messages: the first hyphen
// becomes a space ("academic programs", "admission requirements").
func (k Kind) Phrase() string {
	return strings.Replace(string(k), "-", " ", 1)
}

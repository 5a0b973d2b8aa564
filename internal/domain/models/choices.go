// internal/domain/models/choices.go
package models

// Choice is one allowed value of an enumerated field plus its display label.
type Choice struct {
	Value string
	Label string
}

// ProgramTypes are the allowed academic program degree types.
var ProgramTypes = []Choice{
	{"BS", "Bachelor of Science"},
	{"BA", "Bachelor of Arts"},
	{"MA", "Master of Arts"},
	{"MS", "Master of Science"},
}

// DepartmentTypes distinguish academic departments from offices.
var DepartmentTypes = []Choice{
	{"academic", "Academic Department"},
	{"administrative", "Administrative Office"},
}

// PositionTypes classify personnel.
var PositionTypes = []Choice{
	{"faculty", "Faculty"},
	{"administrative", "Administrative Staff"},
	{"support", "Support Staff"},
}

// StudentCategories are shared by admission requirements and enrollment steps.
var StudentCategories = []Choice{
	{"new-scholar", "New Student (Scholar)"},
	{"new-non-scholar", "New Student (Non-Scholar)"},
	{"continuing-scholar", "Continuing Student (Scholar)"},
	{"continuing-non-scholar", "Continuing Student (Non-Scholar)"},
}

// ChoiceLabel returns the label for value, or value itself when unknown.
func ChoiceLabel(choices []Choice, value string) string {
	for _, c := range choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

func hasChoice(choices []Choice, value string) bool {
	for _, c := range choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

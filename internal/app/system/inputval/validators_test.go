package inputval

import "testing"

func TestValidate(t *testing.T) {
	type loginInput struct {
		Username string `validate:"required,max=150" label:"Username"`
		Password string `validate:"required" label:"Password"`
	}

	tests := []struct {
		name       string
		input      loginInput
		wantErrors bool
		wantFirst  string
	}{
		{
			name:  "valid input",
			input: loginInput{Username: "registrar", Password: "secret1"},
		},
		{
			name:       "missing username",
			input:      loginInput{Password: "secret1"},
			wantErrors: true,
			wantFirst:  "Username is required.",
		},
		{
			name:       "username too long",
			input:      loginInput{Username: string(make([]byte, 151)), Password: "x"},
			wantErrors: true,
			wantFirst:  "Username must be at most 150 characters.",
		},
		{
			name:       "missing both",
			input:      loginInput{},
			wantErrors: true,
			wantFirst:  "Username is required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v", result.HasErrors(), tt.wantErrors)
			}
			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type contactInput struct {
		Email string `validate:"omitempty,emailaddr" label:"Email"`
	}
	type tabInput struct {
		Kind string `validate:"required,kind" label:"Tab"`
	}

	if r := Validate(contactInput{}); r.HasErrors() {
		t.Errorf("empty optional email should pass: %v", r.Errors)
	}
	if r := Validate(contactInput{Email: "dean@ccb.edu"}); r.HasErrors() {
		t.Errorf("valid email should pass: %v", r.Errors)
	}
	if r := Validate(contactInput{Email: "dean@"}); r.First() != "A valid email address is required." {
		t.Errorf("invalid email: got %q", r.First())
	}
	if r := Validate(tabInput{Kind: "enrollment-steps"}); r.HasErrors() {
		t.Errorf("known kind should pass: %v", r.Errors)
	}
	if r := Validate(tabInput{Kind: "faculty"}); r.First() != "Tab is not a known content type." {
		t.Errorf("unknown kind: got %q", r.First())
	}
}

func TestResult_All(t *testing.T) {
	r := &Result{}
	if r.All() != "" {
		t.Errorf("All() = %q, want empty", r.All())
	}
	r.Errors = []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}
	if r.All() != "Error 1; Error 2" {
		t.Errorf("All() = %q", r.All())
	}
	if r.First() != "Error 1" {
		t.Errorf("First() = %q", r.First())
	}
}

package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/ccbportal/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	if got := htmlsanitize.Sanitize("Enrollment opens June 1"); got != "Enrollment opens June 1" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestSanitize_KeepsFormatting(t *testing.T) {
	input := "<p><strong>Bold</strong> and <em>italic</em></p><ul><li>One</li></ul>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected safe HTML preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	got := htmlsanitize.Sanitize("<p>Hello</p><script>alert('xss')</script>")
	if got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesEventHandlers(t *testing.T) {
	got := htmlsanitize.Sanitize(`<img src="/a.png" onerror="alert(1)">`)
	if strings.Contains(got, "onerror") {
		t.Errorf("expected onerror removed, got %q", got)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="javascript:alert('xss')">Click</a>`)
	if strings.Contains(got, "javascript:") {
		t.Errorf("expected javascript: href removed, got %q", got)
	}
}

func TestSanitize_AllowsTables(t *testing.T) {
	input := `<table><thead><tr><th>Subject</th></tr></thead><tbody><tr><td colspan="2">Math</td></tr></tbody></table>`
	got := htmlsanitize.Sanitize(input)
	if !strings.Contains(got, "<table>") || !strings.Contains(got, `colspan="2"`) {
		t.Errorf("expected table markup preserved, got %q", got)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Grades A & B; GPA < 2.0 not accepted \n", "Grades A & B; GPA < 2.0 not accepted"},
		{"Tom's \"quoted\" note", "Tom's \"quoted\" note"},
		{"<p>Hi</p><script>alert(1)</script>", "<p>Hi</p>"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := htmlsanitize.CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  registrar  ", "registrar"},
		{"<b>admin</b>", "admin"},
		{"R&D Office", "R&D Office"},
		{"<script>x</script>Dean", "Dean"},
	}
	for _, tt := range tests {
		if got := htmlsanitize.StripTags(tt.in); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPlainText(t *testing.T) {
	if !htmlsanitize.IsPlainText("3 < 4 and 5 > 2") {
		t.Error("comparison operators are not tags")
	}
	if htmlsanitize.IsPlainText("<p>x</p>") {
		t.Error("expected markup detected")
	}
}

func TestPrepareForDisplay(t *testing.T) {
	got := string(htmlsanitize.PrepareForDisplay("Line 1\nLine <2>"))
	if got != "Line 1<br>Line &lt;2&gt;" {
		t.Errorf("plain text: got %q", got)
	}

	got = string(htmlsanitize.PrepareForDisplay("<p>ok</p><iframe src=x></iframe>"))
	if strings.Contains(got, "iframe") {
		t.Errorf("expected iframe removed, got %q", got)
	}
}

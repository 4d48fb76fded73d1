package usecase

import "testing"

func TestRender_Substitution(t *testing.T) {
	vars := TemplateVars{
		SenderName:  "Jane Doe",
		SenderEmail: "jane@x.com",
		Subject:     "Invoice",
	}

	got := Render("Hi {{sender_name}}, re {{subject}} ({{sender_email}})", vars)
	want := "Hi Jane Doe, re Invoice (jane@x.com)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRender_NoPlaceholders(t *testing.T) {
	template := "Thanks, talk soon."
	got := Render(template, TemplateVars{SenderName: "Jane"})
	if got != template {
		t.Errorf("template without tokens must pass through unchanged, got %q", got)
	}
}

func TestRender_SinglePass(t *testing.T) {
	// A value containing another placeholder token is not expanded further.
	got := Render("{{subject}}", TemplateVars{
		SenderName: "Jane",
		Subject:    "{{sender_name}}",
	})
	if got != "{{sender_name}}" {
		t.Errorf("got %q, want literal {{sender_name}}", got)
	}
}

func TestRender_UnknownPlaceholderUntouched(t *testing.T) {
	got := Render("Hello {{company}}", TemplateVars{SenderName: "Jane"})
	if got != "Hello {{company}}" {
		t.Errorf("unknown placeholder must stay literal, got %q", got)
	}
}

func TestRender_RepeatedPlaceholder(t *testing.T) {
	got := Render("{{sender_name}} {{sender_name}}", TemplateVars{SenderName: "Jane"})
	if got != "Jane Jane" {
		t.Errorf("got %q", got)
	}
}

func TestParseSender(t *testing.T) {
	tests := []struct {
		name      string
		from      string
		wantName  string
		wantEmail string
	}{
		{"name and address", "Jane Doe <jane@x.com>", "Jane Doe", "jane@x.com"},
		{"bare address", "jane@x.com", "jane@x.com", "jane@x.com"},
		{"extra whitespace", "  Jane Doe   <jane@x.com>", "Jane Doe", "jane@x.com"},
		{"angle brackets only", "<jane@x.com>", "jane@x.com", "jane@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, email := ParseSender(tt.from)
			if name != tt.wantName {
				t.Errorf("name: got %q, want %q", name, tt.wantName)
			}
			if email != tt.wantEmail {
				t.Errorf("email: got %q, want %q", email, tt.wantEmail)
			}
		})
	}
}

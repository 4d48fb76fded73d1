package usecase

import "strings"

// TemplateVars are the placeholder values available to a reply template.
type TemplateVars struct {
	SenderName  string
	SenderEmail string
	Subject     string
}

// Render substitutes {{key}} placeholders with their values in a single
// pass. This is literal text insertion, not a templating language: no
// loops, no conditionals, no escaping. A value containing another
// placeholder token is not expanded further, and placeholders without a
// value are left untouched.
func Render(template string, vars TemplateVars) string {
	replacer := strings.NewReplacer(
		"{{sender_name}}", vars.SenderName,
		"{{sender_email}}", vars.SenderEmail,
		"{{subject}}", vars.Subject,
	)
	return replacer.Replace(template)
}

// ParseSender splits a From header into display name and address. With no
// angle brackets the whole header value serves as both.
func ParseSender(from string) (name, email string) {
	idx := strings.Index(from, "<")
	if idx < 0 {
		raw := strings.TrimSpace(from)
		return raw, raw
	}

	name = strings.TrimSpace(from[:idx])
	email = strings.TrimSpace(from[idx+1:])
	email = strings.TrimSuffix(email, ">")
	if name == "" {
		name = email
	}
	return name, email
}

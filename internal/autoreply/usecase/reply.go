package usecase

import (
	"bytes"
	"fmt"
	"strings"

	ruledomain "autoreply-backend/internal/rule/domain"
)

// ReplySubject prefixes a subject with "Re: " unless it already carries one,
// checked case-insensitively so "RE: Hello" is not double-prefixed.
func ReplySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(subject)), "re:") {
		return subject
	}
	return "Re: " + subject
}

// BuildReply constructs the raw RFC 2822 reply: To, Re:-prefixed Subject,
// Content-Type matching the rule's reply format, MIME-Version, blank line,
// rendered body. The gateway applies the provider's transport encoding when
// submitting.
func BuildReply(to, subject, body, format string) []byte {
	contentType := "text/plain; charset=utf-8"
	if format == ruledomain.FormatHTML {
		contentType = "text/html; charset=utf-8"
	}

	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", ReplySubject(subject)))
	msg.WriteString(fmt.Sprintf("Content-Type: %s\r\n", contentType))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return msg.Bytes()
}

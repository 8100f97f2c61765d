package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

var (
	emailRegex  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	digitsRegex = regexp.MustCompile(`\d(?:[ -]?\d){6,}`)
)

// RedactEmail masks an email address, keeping the first letter and the domain
func RedactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// RedactDigits masks a digit run, keeping the last two digits
func RedactDigits(s string) string {
	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) <= 2 {
		return "**"
	}
	return strings.Repeat("*", len(digits)-2) + string(digits[len(digits)-2:])
}

// Redact masks every email and long digit run in s
func Redact(s string) string {
	s = emailRegex.ReplaceAllStringFunc(s, RedactEmail)
	return digitsRegex.ReplaceAllStringFunc(s, RedactDigits)
}

func redactAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		a.Value = slog.StringValue(Redact(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			a.Value = slog.StringValue(Redact(err.Error()))
		}
	}
	return a
}

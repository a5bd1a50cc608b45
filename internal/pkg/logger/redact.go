package logger

import (
	"regexp"
	"strings"
)

// RedactSecret masks a credential for safe logging.
// "AIzaSyD-abcdef" → "AI***ef"
// Values of 6 characters or fewer are fully masked: "abc" → "***"
func RedactSecret(s string) string {
	if len(s) <= 6 {
		return "***"
	}
	return s[:2] + "***" + s[len(s)-2:]
}

var urlKeyParam = regexp.MustCompile(`([?&]key=)[^&\s"]+`)

// RedactURLKey masks the value of any key= query parameter embedded in s.
// The API key travels as a plain query parameter, so request URLs quoted
// in errors would otherwise leak it.
func RedactURLKey(s string) string {
	if !strings.Contains(s, "key=") {
		return s
	}
	return urlKeyParam.ReplaceAllString(s, "${1}***")
}

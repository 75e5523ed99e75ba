package utils

import "strings"

// DisplayNameFromEmail derives a human-readable name from the local part
// of an email address: "jane.d@example.com" -> "Jane.d".
func DisplayNameFromEmail(email string) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}
	if local == "" {
		return ""
	}
	return strings.ToUpper(local[:1]) + local[1:]
}

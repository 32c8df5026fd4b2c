package service

import "strings"

// maskEmailAddress keeps the first and last character of the local part so
// logs can correlate submissions without storing the address.
func maskEmailAddress(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "***"
	}
	local := []rune(email[:at])
	domain := email[at+1:]
	if len(local) <= 2 {
		return string(local[:1]) + "***@" + domain
	}
	return string(local[:1]) + "***" + string(local[len(local)-1:]) + "@" + domain
}

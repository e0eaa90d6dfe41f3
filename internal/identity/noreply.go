package identity

import (
	"regexp"
	"strings"
)

// <id>+<user>@users.noreply.<host> or <user>@users.noreply.<host>
var noreplyRe = regexp.MustCompile(`^(?:\d+\+)?([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)@users\.noreply\.([A-Za-z0-9.-]+)$`)

// ParseNoreply extracts the username and the platform host from a noreply email
func ParseNoreply(email string) (username, host string, ok bool) {
	m := noreplyRe.FindStringSubmatch(strings.TrimSpace(email))
	if m == nil {
		return "", "", false
	}
	return m[1], strings.ToLower(m[2]), true
}

// ConventionalAvatar is the avatar URL a platform serves for a username
func ConventionalAvatar(host, username string) string {
	return "https://" + host + "/" + username + ".png"
}

// ProfileURL returns the public profile of a username
func ProfileURL(host, username string) string {
	return "https://" + host + "/" + username
}

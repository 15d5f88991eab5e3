package anonbot

import (
	"net/url"
	"strings"
)

const startPrefix = "u_"

var DefaultLinkMarkers = []string{"http://", "https://", "t.me/"}

// HasLink reports whether text contains any marker, case-insensitively.
func HasLink(text string, markers []string) bool {
	if text == "" {
		return false
	}
	t := strings.ToLower(text)
	for _, m := range markers {
		if m != "" && strings.Contains(t, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// ParseStartArgument extracts the inbox code from a deep-link start argument.
func ParseStartArgument(arg string) (string, bool) {
	arg = strings.TrimSpace(arg)
	if !strings.HasPrefix(arg, startPrefix) {
		return "", false
	}
	code := strings.TrimPrefix(arg, startPrefix)
	if code == "" {
		return "", false
	}
	return code, true
}

func ComposeInboxLink(botUsername, code string) string {
	u := &url.URL{
		Scheme:   "https",
		Host:     "t.me",
		Path:     "/" + botUsername,
		RawQuery: "start=" + startPrefix + code,
	}
	return u.String()
}

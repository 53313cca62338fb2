package transport

import (
	"net/url"
	"strings"
)

const redacted = "REDACTED"

// panelPathPrefixes are the direct-play path roots that embed
// /<prefix>/<username>/<password>/ in the URL.
var panelPathPrefixes = map[string]bool{
	"live":   true,
	"movie":  true,
	"series": true,
}

// Redact returns rawURL with credentials removed from userinfo, the
// username/password query parameters and panel direct-play paths.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), redacted)
		}
	}
	q := u.Query()
	changed := false
	for _, k := range []string{"username", "password"} {
		if q.Has(k) {
			q.Set(k, redacted)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	segs := strings.Split(u.Path, "/")
	if len(segs) >= 5 && panelPathPrefixes[segs[1]] {
		segs[2], segs[3] = redacted, redacted
		u.Path = strings.Join(segs, "/")
		u.RawPath = ""
	}
	return u.String()
}

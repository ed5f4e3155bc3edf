package mail

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultComposeBase opens a full-screen compose window in Gmail.
const DefaultComposeBase = "https://mail.google.com/mail/?view=cm&fs=1"

// ComposeURL appends the message to a web-mail compose URL as the to, su
// and body query parameters. Spaces are encoded as %20 so that mail clients
// that do not treat '+' as a space still show the text unchanged.
func ComposeURL(base string, msg Message) (string, error) {
	if base == "" {
		base = DefaultComposeBase
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse compose base %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("compose base %q is not an absolute URL", base)
	}

	q := u.Query()
	if msg.To != "" {
		q.Set("to", msg.To)
	}
	q.Set("su", msg.Subject)
	q.Set("body", msg.Body)
	u.RawQuery = strings.ReplaceAll(q.Encode(), "+", "%20")

	return u.String(), nil
}

package dispatch

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// BlobPrefix is the key prefix under which remote documents are uploaded.
const BlobPrefix = "documents/"

// Filename returns "valuation-{recipient}-{epochMillis}.{ext}".
//
// The recipient is NFC-normalized and path separators are replaced with '_'
// so the name is always a single path segment. A blank recipient yields
// "valuation-{epochMillis}.{ext}".
func Filename(recipient string, at time.Time, ext string) string {
	r := norm.NFC.String(strings.TrimSpace(recipient))
	r = strings.NewReplacer("/", "_", `\`, "_").Replace(r)

	var b strings.Builder
	b.WriteString("valuation-")
	if r != "" {
		b.WriteString(r)
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(at.UnixMilli(), 10))
	if ext != "" {
		b.WriteByte('.')
		b.WriteString(ext)
	}
	return b.String()
}

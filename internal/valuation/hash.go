package valuation

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content fingerprints.
// The version suffix allows the layout of a fingerprinted value to change.
const (
	DomainDocument = "valuer/document/v1"
	DomainRequest  = "valuer/request/v1"
)

// Fingerprint computes SHA-256 over domain + 0x00 + data.
// The null separator prevents domain/data boundary ambiguity.
func Fingerprint(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalMap converts the request into the value tree accepted by
// MarshalCanonical.
func (r Request) CanonicalMap() map[string]any {
	items := make([]any, len(r.Items))
	for i, it := range r.Items {
		items[i] = map[string]any{
			"id":          it.ID,
			"name":        it.Name,
			"unit_price":  it.UnitPrice,
			"description": it.Description,
		}
	}
	m := map[string]any{
		"recipient_name": r.RecipientName,
		"items":          items,
	}
	if r.RecipientEmail != "" {
		m["recipient_email"] = r.RecipientEmail
	}
	return m
}

// RequestFingerprint identifies a draft by content. Equal drafts produce equal
// fingerprints regardless of Unicode normalization form.
func RequestFingerprint(r Request) (string, error) {
	data, err := MarshalCanonical(r.CanonicalMap())
	if err != nil {
		return "", err
	}
	return Fingerprint(DomainRequest, data), nil
}

package store

import (
	"path/filepath"
	"testing"
	"time"
)

// createTestStore creates a new store in a temp directory with a fixed clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	s.SetClock(func() time.Time { return time.UnixMilli(1700000000000) })
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestDelivery creates a delivery with minimal required fields.
func createTestDelivery(mode, name string, createdMs int64) Delivery {
	return Delivery{
		Mode:        mode,
		Recipient:   "Acme",
		Name:        name,
		Location:    "/tmp/" + name,
		Fingerprint: "test-fingerprint",
		Draft:       "test-draft",
		Netto:       "100.00",
		VAT:         "25.00",
		Total:       "125.00",
		CreatedAt:   time.UnixMilli(createdMs),
	}
}

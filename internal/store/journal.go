package store

import (
	"context"
	"fmt"
	"time"
)

// Delivery is one completed dispatch as recorded in the journal.
type Delivery struct {
	ID          int64     `json:"id"`
	Mode        string    `json:"mode"` // "local" or "remote"
	Recipient   string    `json:"recipient"`
	Name        string    `json:"name"`        // file name or blob key
	Location    string    `json:"location"`    // saved path or shareable URL
	Fingerprint string    `json:"fingerprint"` // document fingerprint
	Draft       string    `json:"draft"`       // fingerprint of the request the document was built from
	Netto       string    `json:"netto"`
	VAT         string    `json:"vat"`
	Total       string    `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

// WriteDelivery appends a delivery to the journal and returns its id.
func (s *Store) WriteDelivery(ctx context.Context, d Delivery) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO deliveries
		(mode, recipient, name, location, fingerprint, draft, netto, vat, total, created_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.Mode,
		d.Recipient,
		d.Name,
		d.Location,
		d.Fingerprint,
		d.Draft,
		d.Netto,
		d.VAT,
		d.Total,
		d.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("write delivery: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("write delivery: last insert id: %w", err)
	}
	return id, nil
}

// ReadDeliveries returns up to limit journal entries, newest first.
// A limit <= 0 returns every entry. Returns an empty slice (not nil) when
// the journal is empty.
func (s *Store) ReadDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	query := `
		SELECT id, mode, recipient, name, location, fingerprint, draft, netto, vat, total, created_at_ms
		FROM deliveries
		ORDER BY created_at_ms DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := []Delivery{}
	for rows.Next() {
		var d Delivery
		var createdMs int64
		if err := rows.Scan(&d.ID, &d.Mode, &d.Recipient, &d.Name, &d.Location,
			&d.Fingerprint, &d.Draft, &d.Netto, &d.VAT, &d.Total, &createdMs); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		d.CreatedAt = time.UnixMilli(createdMs).UTC()
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}

	return deliveries, nil
}

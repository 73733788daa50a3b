package storage

import (
	"context"
	"database/sql"
	"time"
)

// AgencyID returns the stored agency for a user, or 0 when the user is
// unknown or has no agency yet.
func (db *DB) AgencyID(ctx context.Context, userID string) (int64, error) {
	var agencyID int64
	err := db.QueryRowContext(ctx,
		`SELECT agency_id FROM users WHERE user_id = ?`, userID).Scan(&agencyID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return agencyID, err
}

// SetAgencyID stores the resolved agency for a user.
func (db *DB) SetAgencyID(ctx context.Context, userID string, agencyID int64) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (user_id, agency_id, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET agency_id = excluded.agency_id, updated_at = excluded.updated_at`,
		userID, agencyID, time.Now().UTC().Format(time.RFC3339))
	return err
}

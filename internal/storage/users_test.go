package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir()+"/test.db", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAgencyID_UnknownUser(t *testing.T) {
	db := testDB(t)

	got, err := db.AgencyID(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("AgencyID: %v", err)
	}
	if got != 0 {
		t.Errorf("agency = %d, want 0 for unknown user", got)
	}
}

func TestSetAgencyID_RoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.SetAgencyID(ctx, "user-1", 643); err != nil {
		t.Fatalf("SetAgencyID: %v", err)
	}
	got, err := db.AgencyID(ctx, "user-1")
	if err != nil {
		t.Fatalf("AgencyID: %v", err)
	}
	if got != 643 {
		t.Errorf("agency = %d, want 643", got)
	}
}

func TestSetAgencyID_Overwrites(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.SetAgencyID(ctx, "user-1", 643); err != nil {
		t.Fatalf("SetAgencyID: %v", err)
	}
	if err := db.SetAgencyID(ctx, "user-1", 99); err != nil {
		t.Fatalf("SetAgencyID: %v", err)
	}

	got, err := db.AgencyID(ctx, "user-1")
	if err != nil {
		t.Fatalf("AgencyID: %v", err)
	}
	if got != 99 {
		t.Errorf("agency = %d, want 99 after update", got)
	}
}

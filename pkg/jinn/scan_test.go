package jinn

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T, opts Options) *DB {
	t.Helper()

	if opts.Path == "" {
		opts.Path = filepath.Join(t.TempDir(), "test.jinn")
	}

	db, err := Open(opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestIterateDeliversEveryRecordExactlyOnce(t *testing.T) {
	t.Parallel()

	db := openTestDB(t, Options{MaxCacheSize: 1})

	var ids []string
	for i := 0; i < 8; i++ {
		id, err := db.Insert(Record{"n": float64(i)})
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}

		ids = append(ids, id)
	}

	seen := make(map[string]int)

	completed, err := db.Iterate(func(r Record) (ScanAction, error) {
		seen[r["_id"].(string)]++

		return ScanContinue, nil
	})
	if err != nil {
		t.Fatalf("Iterate: %v", err)
	}

	if !completed {
		t.Error("expected Iterate to report completed")
	}

	if len(seen) != len(ids) {
		t.Fatalf("expected %d distinct records, saw %d", len(ids), len(seen))
	}

	for _, id := range ids {
		if seen[id] != 1 {
			t.Errorf("record %s delivered %d times, want exactly 1", id, seen[id])
		}
	}
}

func TestIterateStopsEarlyOnScanStop(t *testing.T) {
	t.Parallel()

	db := openTestDB(t, Options{})

	for i := 0; i < 5; i++ {
		if _, err := db.Insert(Record{"n": float64(i)}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	count := 0

	completed, err := db.Iterate(func(r Record) (ScanAction, error) {
		count++

		return ScanStop, nil
	})
	if err != nil {
		t.Fatalf("Iterate: %v", err)
	}

	if completed {
		t.Error("expected Iterate to report completed=false after ScanStop")
	}

	if count != 1 {
		t.Errorf("expected exactly one record to be delivered before stopping, got %d", count)
	}
}

func TestIterateOutOfCoreFallbackCoversAllRecords(t *testing.T) {
	t.Parallel()

	// A one-byte cache budget leaves room for no block at all, so every
	// record is served by the out-of-core scan path.
	db := openTestDB(t, Options{MaxCacheSize: 1})

	for i := 0; i < 8; i++ {
		if _, err := db.Insert(Record{"n": float64(i)}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	found, err := db.Find(Query{}, FindOptions{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if len(found) != 8 {
		t.Fatalf("expected 8 records via out-of-core fallback, got %d", len(found))
	}
}

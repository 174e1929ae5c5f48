package storage

import (
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestMigrationsOrdered(t *testing.T) {
	s := openTestStore(t)

	versions, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(versions) == 0 {
		t.Fatal("expected at least one applied migration")
	}
	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Errorf("migrations not in ascending order: %v", versions)
			break
		}
	}
}

func TestIndexesExist(t *testing.T) {
	s := openTestStore(t)

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", "idx_selections_saved_at").Scan(&count)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	if count != 1 {
		t.Error("index idx_selections_saved_at not found in sqlite_master")
	}
}

func TestGetSelection_Missing(t *testing.T) {
	s := openTestStore(t)

	v, ok, err := s.GetSelection("default")
	if err != nil {
		t.Fatalf("GetSelection: %v", err)
	}
	if ok || v != nil {
		t.Errorf("GetSelection = (%q, %v), want (nil, false)", v, ok)
	}

	if _, err := s.GetSavedSelection("default"); err != ErrNotFound {
		t.Errorf("GetSavedSelection err = %v, want ErrNotFound", err)
	}
}

func TestPutSelection_Overwrites(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.PutSelection("default", []byte(`{"brand":["A"]}`)); err != nil {
		t.Fatalf("PutSelection: %v", err)
	}
	now = now.Add(time.Minute)
	if err := s.PutSelection("default", []byte(`{"brand":["B"]}`)); err != nil {
		t.Fatalf("PutSelection: %v", err)
	}

	got, err := s.GetSavedSelection("default")
	if err != nil {
		t.Fatalf("GetSavedSelection: %v", err)
	}
	if got.Payload != `{"brand":["B"]}` {
		t.Errorf("Payload = %q, want the second write", got.Payload)
	}
	if !got.SavedAt.Equal(now) {
		t.Errorf("SavedAt = %v, want %v", got.SavedAt, now)
	}
}

func TestListSelections_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for _, key := range []string{"old", "new"} {
		if err := s.PutSelection(key, []byte(`{}`)); err != nil {
			t.Fatalf("PutSelection(%s): %v", key, err)
		}
		now = now.Add(time.Hour)
	}

	list, err := s.ListSelections()
	if err != nil {
		t.Fatalf("ListSelections: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Key != "new" || list[1].Key != "old" {
		t.Errorf("order = [%s %s], want [new old]", list[0].Key, list[1].Key)
	}
}

package riddle

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	schema := `
	CREATE TABLE riddles (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  type TEXT NOT NULL,
	  question TEXT NOT NULL,
	  answer TEXT NOT NULL,
	  explanation TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE riddle_overrides (
	  day_key TEXT PRIMARY KEY, riddle_id INTEGER,
	  question TEXT, type TEXT, answer TEXT, explanation TEXT
	);
	CREATE TABLE riddle_schedule (
	  day_key TEXT PRIMARY KEY, riddle_id INTEGER,
	  question TEXT, type TEXT, answer TEXT, explanation TEXT
	);
	CREATE TABLE day_state (day_key TEXT PRIMARY KEY, version INTEGER NOT NULL DEFAULT 0);
	CREATE TABLE attempts (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  user_id TEXT NOT NULL, day_key TEXT NOT NULL, riddle_id INTEGER NOT NULL,
	  guess TEXT NOT NULL, result TEXT NOT NULL, created_at TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestSeedPopulatesEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDB(t))

	if err := store.Seed(ctx); err != nil {
		t.Fatal(err)
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("catalog should not be empty after seeding")
	}
	// Seeding again is a no-op.
	if err := store.Seed(ctx); err != nil {
		t.Fatal(err)
	}
	if again, _ := store.Count(ctx); again != n {
		t.Fatalf("second seed grew the catalog: %d -> %d", n, again)
	}
}

func TestResolvePrecedence(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	store := NewStore(db)
	if err := store.Seed(ctx); err != nil {
		t.Fatal(err)
	}
	resolver := NewResolver(store)
	const day = "2025-10-13"

	base, err := resolver.Resolve(ctx, day)
	if err != nil {
		t.Fatal(err)
	}
	if base.Source != SourceDefault {
		t.Fatalf("source = %q, want default", base.Source)
	}

	// Resolution is stable while nothing changes.
	again, err := resolver.Resolve(ctx, day)
	if err != nil {
		t.Fatal(err)
	}
	if again.Riddle.ID != base.Riddle.ID {
		t.Fatalf("default pick changed: %d -> %d", base.Riddle.ID, again.Riddle.ID)
	}

	// A schedule entry beats the default.
	id := base.Riddle.ID
	if err := store.SetSchedule(ctx, Entry{DayKey: day, RiddleID: &id}); err != nil {
		t.Fatal(err)
	}
	res, err := resolver.Resolve(ctx, day)
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceSchedule {
		t.Fatalf("source = %q, want schedule", res.Source)
	}

	// An override beats the schedule.
	if err := store.SetOverride(ctx, Entry{
		DayKey: day, Question: "Custom?", Type: TypeWord, Answer: "echo",
	}); err != nil {
		t.Fatal(err)
	}
	res, err = resolver.Resolve(ctx, day)
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceOverride || res.Riddle.ID != CustomID || res.Riddle.Answer != "echo" {
		t.Fatalf("override not applied: %+v", res)
	}

	// Clearing the override falls back to the schedule.
	if err := store.ClearOverride(ctx, day); err != nil {
		t.Fatal(err)
	}
	res, err = resolver.Resolve(ctx, day)
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceSchedule {
		t.Fatalf("source after clear = %q, want schedule", res.Source)
	}
}

func TestResolveBrokenEntryFallsThrough(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDB(t))
	if err := store.Seed(ctx); err != nil {
		t.Fatal(err)
	}
	resolver := NewResolver(store)
	const day = "2025-10-13"

	// An override referencing a missing catalog id must not break the day.
	missing := int64(99999)
	if err := store.SetOverride(ctx, Entry{DayKey: day, RiddleID: &missing}); err != nil {
		t.Fatal(err)
	}
	res, err := resolver.Resolve(ctx, day)
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceDefault {
		t.Fatalf("source = %q, want default fallthrough", res.Source)
	}
}

func TestResolveEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	resolver := NewResolver(NewStore(testDB(t)))
	if _, err := resolver.Resolve(ctx, "2025-10-13"); err != ErrUnavailable {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

func TestVersionBumping(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testDB(t))
	const day = "2025-10-13"

	v, err := store.Version(ctx, day)
	if err != nil || v != 0 {
		t.Fatalf("fresh day version = %d, %v", v, err)
	}
	if v, err = store.BumpVersion(ctx, day); err != nil || v != 1 {
		t.Fatalf("first bump = %d, %v", v, err)
	}
	if v, err = store.BumpVersion(ctx, day); err != nil || v != 2 {
		t.Fatalf("second bump = %d, %v", v, err)
	}
}

func TestArchiveResolvesPastDays(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	store := NewStore(db)
	if err := store.Seed(ctx); err != nil {
		t.Fatal(err)
	}
	resolver := NewResolver(store)

	for _, day := range []string{"2025-10-10", "2025-10-11", "2025-10-12"} {
		if _, err := db.Exec(`INSERT INTO attempts (user_id, day_key, riddle_id, guess, result, created_at)
			VALUES ('u1', ?, 1, 'x', 'wrong', '2025-10-10T00:00:00Z')`, day); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := resolver.Archive(ctx, "2025-10-12", 30, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("archive should exclude today, got %d rows", len(rows))
	}
	if rows[0].DayKey != "2025-10-11" || rows[1].DayKey != "2025-10-10" {
		t.Fatalf("archive should be newest first, got %+v", rows)
	}
	for _, r := range rows {
		if r.Answer == "" || r.Question == "" {
			t.Fatalf("archive rows reveal the full riddle, got %+v", r)
		}
	}
}

package results

import (
	"database/sql"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"
)

func openTempDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := openDB(filepath.Join(t.TempDir(), "nested", "journal.db"))
	if err != nil {
		t.Fatalf("openDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func appliedMigrations(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM _migrations ORDER BY rowid`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			t.Fatal(err)
		}
		names = append(names, n)
	}
	return names
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n == 1
}

func TestMigrateAppliesInNameOrderOnce(t *testing.T) {
	db := openTempDB(t)
	fsys := fstest.MapFS{
		"002_b.sql": {Data: []byte(`CREATE TABLE b (id INTEGER PRIMARY KEY, a_id INTEGER REFERENCES a(id));`)},
		"001_a.sql": {Data: []byte(`CREATE TABLE a (id INTEGER PRIMARY KEY);`)},
		"README.md": {Data: []byte(`not a migration`)},
	}
	if err := migrate(db, fsys); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	want := []string{"001_a.sql", "002_b.sql"}
	if got := appliedMigrations(t, db); !slices.Equal(got, want) {
		t.Errorf("applied = %v, want %v", got, want)
	}

	// The scripts are not re-runnable; a second pass must skip them.
	if err := migrate(db, fsys); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if got := appliedMigrations(t, db); !slices.Equal(got, want) {
		t.Errorf("applied after rerun = %v", got)
	}
}

func TestMigrateRollsBackFailedFile(t *testing.T) {
	db := openTempDB(t)
	fsys := fstest.MapFS{
		"001_ok.sql":  {Data: []byte(`CREATE TABLE ok (id INTEGER);`)},
		"002_bad.sql": {Data: []byte(`CREATE TABLE half (id INTEGER); CREATE TABLE broken (`)},
	}
	if err := migrate(db, fsys); err == nil {
		t.Fatal("migrate succeeded on a broken file")
	}
	if got := appliedMigrations(t, db); !slices.Equal(got, []string{"001_ok.sql"}) {
		t.Errorf("applied = %v", got)
	}
	if tableExists(t, db, "half") {
		t.Error("statement from failed file was kept")
	}

	fsys["002_bad.sql"] = &fstest.MapFile{Data: []byte(`CREATE TABLE half (id INTEGER);`)}
	if err := migrate(db, fsys); err != nil {
		t.Fatalf("migrate after fix: %v", err)
	}
	if !tableExists(t, db, "half") {
		t.Error("fixed file not applied")
	}
}

func TestMigrateRejectsEmptyFile(t *testing.T) {
	db := openTempDB(t)
	fsys := fstest.MapFS{"001_empty.sql": {Data: []byte("  \n")}}
	if err := migrate(db, fsys); err == nil {
		t.Fatal("empty migration accepted")
	}
	if got := appliedMigrations(t, db); len(got) != 0 {
		t.Errorf("applied = %v", got)
	}
}

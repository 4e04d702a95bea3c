package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"careerflow/errors"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func touch(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mtime := now.Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return path
}

func newTestSweeper() *Sweeper {
	s := NewSweeper(nil)
	s.Now = func() time.Time { return now }
	return s
}

const day = 24 * time.Hour

func TestSweepDeletesOnlyExpired(t *testing.T) {
	root := t.TempDir()
	results := filepath.Join(root, "results")
	charts := filepath.Join(root, "charts")
	old := touch(t, results, "old.csv", 10*day)
	fresh := touch(t, results, "fresh.csv", 3*day)

	rep, err := newTestSweeper().Sweep(DefaultTargets(results, charts), 7*day)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if rep.Deleted["csv"] != 1 || rep.Total() != 1 {
		t.Fatalf("deleted = %v", rep.Deleted)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("old file still exists")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file removed: %v", err)
	}

	again, err := newTestSweeper().Sweep(DefaultTargets(results, charts), 7*day)
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if again.Total() != 0 {
		t.Fatalf("second run deleted %d files", again.Total())
	}
}

func TestSweepCategories(t *testing.T) {
	root := t.TempDir()
	results := filepath.Join(root, "results")
	charts := filepath.Join(root, "charts")
	touch(t, results, "a.csv", 30*day)
	touch(t, results, "a.xlsx", 30*day)
	touch(t, results, "notes.txt", 30*day)
	touch(t, charts, "a.png", 30*day)
	touch(t, charts, "b.png", 8*day)

	rep, err := newTestSweeper().Sweep(DefaultTargets(results, charts), 7*day)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	want := map[string]int{"csv": 1, "xlsx": 1, "png": 2}
	for k, v := range want {
		if rep.Deleted[k] != v {
			t.Fatalf("deleted[%s] = %d, want %d", k, rep.Deleted[k], v)
		}
	}
	if _, err := os.Stat(filepath.Join(results, "notes.txt")); err != nil {
		t.Fatalf("unmatched file removed")
	}
}

func TestSweepMissingDirectory(t *testing.T) {
	root := t.TempDir()
	rep, err := newTestSweeper().Sweep(DefaultTargets(filepath.Join(root, "nope"), filepath.Join(root, "nada")), day)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(rep.Outcomes) != 0 || rep.Total() != 0 {
		t.Fatalf("outcomes = %v", rep.Outcomes)
	}
}

func TestSweepFailuresBestEffortAndStrict(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.csv", 10*day)
	touch(t, root, "b.csv", 10*day)
	targets := []Target{{Category: "csv", Dir: root, Pattern: "*.csv"}}

	s := newTestSweeper()
	s.Remove = func(path string) error {
		if filepath.Base(path) == "a.csv" {
			return fmt.Errorf("permission denied")
		}
		return os.Remove(path)
	}
	rep, err := s.Sweep(targets, 7*day)
	if err != nil {
		t.Fatalf("best-effort Sweep returned %v", err)
	}
	if len(rep.Failures()) != 1 || rep.Deleted["csv"] != 1 {
		t.Fatalf("failures = %v deleted = %v", rep.Failures(), rep.Deleted)
	}
	if errors.KindOf(rep.Failures()[0].Err) != errors.KindBackend {
		t.Fatalf("failure kind = %s", errors.KindOf(rep.Failures()[0].Err))
	}

	touch(t, root, "c.csv", 10*day)
	s.Strict = true
	rep, err = s.Sweep(targets, 7*day)
	if err == nil {
		t.Fatalf("strict Sweep returned nil error")
	}
	if rep.Deleted["csv"] != 0 {
		t.Fatalf("strict mode continued after failure: %v", rep.Deleted)
	}
}

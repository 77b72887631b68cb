package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sdrasco/freedact/internal/logger"
)

// TestMemoryLedgerBasicOperations verifies the in-memory ledger satisfies
// the Ledger contract.
func TestMemoryLedgerBasicOperations(t *testing.T) {
	l := NewMemory()
	defer l.Close() //nolint:errcheck // test cleanup

	// Miss on empty ledger.
	if _, ok := l.Get("missing"); ok {
		t.Error("expected miss on empty ledger")
	}

	// Set and hit.
	l.Set("person/john doe", "Avery Walker")
	v, ok := l.Get("person/john doe")
	if !ok {
		t.Error("expected hit after Set")
	}
	if v != "Avery Walker" {
		t.Errorf("unexpected value: %q", v)
	}

	// Overwrite.
	l.Set("person/john doe", "Casey Monroe")
	v, ok = l.Get("person/john doe")
	if !ok || v != "Casey Monroe" {
		t.Errorf("expected overwritten value, got %q ok=%v", v, ok)
	}

	// Delete.
	l.Delete("person/john doe")
	if _, ok := l.Get("person/john doe"); ok {
		t.Error("expected miss after Delete")
	}
}

// TestBoltLedgerSurvivesRestart verifies that entries written to the bbolt
// ledger are available after the database is closed and reopened, so
// pseudonyms stay stable across runs.
func TestBoltLedgerSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")
	log := logger.Nop()

	l1, err := newBoltLedger(path, log)
	if err != nil {
		t.Fatalf("open first instance: %v", err)
	}
	l1.Set("person/john doe", "Avery Walker")
	l1.Set("email/alice@corp.io", "mxkqt@example.org")
	if err := l1.Close(); err != nil {
		t.Fatalf("close first instance: %v", err)
	}

	// Verify the file was actually written.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("ledger file missing after close: %v", err)
	}

	l2, err := newBoltLedger(path, log)
	if err != nil {
		t.Fatalf("open second instance: %v", err)
	}
	defer l2.Close() //nolint:errcheck // test cleanup

	v, ok := l2.Get("person/john doe")
	if !ok || v != "Avery Walker" {
		t.Errorf("person entry did not survive restart: ok=%v value=%q", ok, v)
	}
	v, ok = l2.Get("email/alice@corp.io")
	if !ok || v != "mxkqt@example.org" {
		t.Errorf("email entry did not survive restart: ok=%v value=%q", ok, v)
	}
}

// TestOpenFallsBackToMemory verifies an unwritable path yields a working
// in-memory ledger instead of failing the run.
func TestOpenFallsBackToMemory(t *testing.T) {
	l := Open("/nonexistent/path/ledger.db", 16, logger.Nop())
	defer l.Close() //nolint:errcheck // test cleanup

	l.Set("k", "v")
	if v, ok := l.Get("k"); !ok || v != "v" {
		t.Errorf("fallback ledger not functional: ok=%v value=%q", ok, v)
	}
}

// TestOpenEmptyPathIsMemory verifies the unconfigured case.
func TestOpenEmptyPathIsMemory(t *testing.T) {
	l := Open("", 0, logger.Nop())
	defer l.Close() //nolint:errcheck // test cleanup
	if _, ok := l.(*memoryLedger); !ok {
		t.Errorf("Open(\"\") = %T, want *memoryLedger", l)
	}
}

package executor

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Ledger tracks cumulative USD committed per calendar date, persisted as
// a JSON file so the daily cap survives restarts. Dry-run spends count
// against the cap the same as live spends.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// NewLedger creates a ledger backed by the given file path.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// SpentOn returns the total USD recorded for the date ("YYYY-MM-DD").
func (l *Ledger) SpentOn(date string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()[date]
}

// Record adds usd to the date's running total and persists immediately.
func (l *Ledger) Record(date string, usd float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.load()
	entries[date] += usd
	return l.save(entries)
}

// load reads the ledger file. A missing or corrupt file yields an empty
// ledger rather than an error: blocking all trading on a bad file is
// worse than restarting the daily count.
func (l *Ledger) load() map[string]float64 {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WARN] ledger read failed, starting empty: %v", err)
		}
		return map[string]float64{}
	}
	var entries map[string]float64
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("[WARN] ledger file corrupt, starting empty: %v", err)
		return map[string]float64{}
	}
	if entries == nil {
		entries = map[string]float64{}
	}
	return entries
}

func (l *Ledger) save(entries map[string]float64) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

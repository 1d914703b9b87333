package schedule

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"DCAPilot/internal/model"
)

const dateLayout = "2006-01-02"

// Store persists the scheduled-buy calendar as a JSON file and owns all
// state transitions. Entries are keyed by calendar date in the store's
// time zone; at most one entry exists per date.
type Store struct {
	path        string
	tz          *time.Location
	plannedHour int
	startDate   time.Time

	mu sync.Mutex
}

// NewStore creates a schedule store. startDate ("YYYY-MM-DD") bounds the
// calendar: pay dates before it are never tracked.
func NewStore(path string, tz *time.Location, plannedHour int, startDate string) (*Store, error) {
	if tz == nil {
		tz = time.UTC
	}
	start, err := time.ParseInLocation(dateLayout, startDate, tz)
	if err != nil {
		return nil, fmt.Errorf("parse schedule start date: %w", err)
	}
	return &Store{path: path, tz: tz, plannedHour: plannedHour, startDate: start}, nil
}

// Entries returns the calendar sorted by date.
func (s *Store) Entries() []model.ScheduledBuy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Generate adds a pending entry for every due pay date that has no entry
// yet: dates between the start date and now that are in the past, or
// today once the planned time has been reached. It is idempotent.
func (s *Store) Generate(now time.Time, plannedAmountUSD float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now = now.In(s.tz)
	entries := s.load()
	existing := make(map[string]bool, len(entries))
	for _, e := range entries {
		existing[e.Date] = true
	}

	today := midnight(now)
	added := 0
	for _, d := range PayDates(s.startDate, today) {
		if d.Equal(today) && now.Hour() < s.plannedHour {
			continue
		}
		key := d.Format(dateLayout)
		if existing[key] {
			continue
		}
		entries = append(entries, model.ScheduledBuy{
			Date:             key,
			PlannedTime:      s.plannedTimeLabel(),
			Status:           model.BuyPending,
			PlannedAmountUSD: plannedAmountUSD,
		})
		added++
	}
	if added == 0 {
		return nil
	}
	log.Printf("[INFO] schedule: generated %d pending entries", added)
	return s.save(entries)
}

// EnsureEntry guarantees a pending entry exists for the given date if it
// is a pay date within the calendar, returning the entry's status.
func (s *Store) EnsureEntry(date time.Time, plannedAmountUSD float64) (model.BuyStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date = midnight(date.In(s.tz))
	if !IsPayDate(date) || date.Before(s.startDate) {
		return "", fmt.Errorf("%s is not a tracked pay date", date.Format(dateLayout))
	}
	entries := s.load()
	key := date.Format(dateLayout)
	for _, e := range entries {
		if e.Date == key {
			return e.Status, nil
		}
	}
	entries = append(entries, model.ScheduledBuy{
		Date:             key,
		PlannedTime:      s.plannedTimeLabel(),
		Status:           model.BuyPending,
		PlannedAmountUSD: plannedAmountUSD,
	})
	if err := s.save(entries); err != nil {
		return "", err
	}
	return model.BuyPending, nil
}

// MarkMissed flips every pending entry dated before today to missed.
func (s *Store) MarkMissed(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	today := midnight(now.In(s.tz)).Format(dateLayout)
	changed := 0
	for i := range entries {
		if entries[i].Status == model.BuyPending && entries[i].Date < today {
			entries[i].Status = model.BuyMissed
			changed++
			log.Printf("[WARN] schedule: buy on %s was missed", entries[i].Date)
		}
	}
	if changed == 0 {
		return nil
	}
	return s.save(entries)
}

// Confirm records an execution against the entry for the given date,
// transitioning it to confirmed. If no entry exists yet (e.g. a manual
// run before the hourly sweep), a confirmed entry is synthesised.
func (s *Store) Confirm(date time.Time, decision model.Decision, result model.OrderResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	key := midnight(date.In(s.tz)).Format(dateLayout)
	idx := -1
	for i := range entries {
		if entries[i].Date == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		entries = append(entries, model.ScheduledBuy{
			Date:             key,
			PlannedTime:      s.plannedTimeLabel(),
			PlannedAmountUSD: result.AmountUSD,
		})
		idx = len(entries) - 1
	}

	e := &entries[idx]
	e.Status = model.BuyConfirmed
	e.ExecutedAt = time.Now().UTC().Format(time.RFC3339)
	e.ActualAmountUSD = result.AmountUSD
	e.ActualAmountBTC = result.AmountBTC
	e.Price = result.Price
	e.Action = string(decision.Action)
	e.Multiplier = decision.Multiplier
	e.Simulated = result.Simulated
	e.TradeReason = result.Reason
	return s.save(entries)
}

// NextPending returns the earliest pending entry, or false when none.
func (s *Store) NextPending() (model.ScheduledBuy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.load() {
		if e.Status == model.BuyPending {
			return e, true
		}
	}
	return model.ScheduledBuy{}, false
}

func (s *Store) plannedTimeLabel() string {
	return fmt.Sprintf("%02d:00 %s", s.plannedHour, s.tz.String())
}

// load reads and sorts the calendar, dropping entries before the start
// date. A missing or corrupt file yields an empty calendar rather than an
// error: stalling every state transition on a bad file is worse than
// regenerating the pending entries.
func (s *Store) load() []model.ScheduledBuy {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WARN] schedule read failed, starting empty: %v", err)
		}
		return nil
	}
	var entries []model.ScheduledBuy
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("[WARN] schedule file corrupt, starting empty: %v", err)
		return nil
	}

	start := s.startDate.Format(dateLayout)
	kept := entries[:0]
	for _, e := range entries {
		if e.Date >= start {
			kept = append(kept, e)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Date < kept[j].Date })
	return kept
}

func (s *Store) save(entries []model.ScheduledBuy) error {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create schedule dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write schedule: %w", err)
	}
	return nil
}

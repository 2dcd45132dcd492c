// Package stats keeps lightweight in-process usage statistics.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hrygo/studysheet/store"
)

// DefaultInterval is how often the collector refreshes store-derived values.
const DefaultInterval = time.Hour

// Stats is a snapshot of usage statistics.
//
// CharactersLastWeek and LastCharacterAddedAt come from per-row creation times.
// The flat file driver records none, so with it they stay 0 and zero.
type Stats struct {
	// Store-derived
	TotalCharacters      int64     `json:"total_characters"`
	CharactersLastWeek   int64     `json:"characters_last_week"`
	LastCharacterAddedAt time.Time `json:"last_character_added_at"`

	// Recorded by handlers and commands
	CharacterSheets   int64     `json:"character_sheets"`
	SheetsToday       int64     `json:"sheets_today"`
	MathSheets        int64     `json:"math_sheets"`
	ProblemsGenerated int64     `json:"problems_generated"`
	CharactersAdded   int64     `json:"characters_added"`
	LastSheetTime     time.Time `json:"last_sheet_time"`

	LastUpdated time.Time `json:"last_updated"`
}

// Collector collects and manages usage statistics.
type Collector struct {
	store    *store.Store
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	stats    *Stats
	today    string
	stopOnce sync.Once
	tickStop chan struct{}
}

// NewCollector creates a collector refreshing from st every DefaultInterval.
func NewCollector(st *store.Store) *Collector {
	return &Collector{
		store:    st,
		interval: DefaultInterval,
		now:      time.Now,
		stats:    &Stats{LastUpdated: time.Now()},
		tickStop: make(chan struct{}),
	}
}

// Start collects once, then periodically until ctx is done or Stop is called.
func (c *Collector) Start(ctx context.Context) {
	c.collect(ctx)

	ticker := time.NewTicker(c.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.collect(ctx)
			case <-ctx.Done():
				return
			case <-c.tickStop:
				return
			}
		}
	}()
}

// Stop stops the periodic collection.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.tickStop) })
}

// GetStats returns a copy of current statistics.
func (c *Collector) GetStats() *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollDay(c.now())
	snapshot := *c.stats
	return &snapshot
}

// collect refreshes the store-derived values.
func (c *Collector) collect(ctx context.Context) {
	seq, err := c.store.ListCharacters(ctx)
	if err != nil {
		slog.Warn("Failed to collect character stats", slog.String("error", err.Error()))
		return
	}
	list, err := c.store.GetDriver().ListCharacters(ctx, &store.FindCharacter{})
	if err != nil {
		slog.Warn("Failed to list characters for stats", slog.String("error", err.Error()))
		return
	}

	now := c.now()
	weekAgo := now.AddDate(0, 0, -7)
	var lastWeek int64
	var lastAdded time.Time
	for _, ch := range list {
		if ch.CreatedTs == 0 {
			continue
		}
		created := time.Unix(ch.CreatedTs, 0)
		if !created.Before(weekAgo) {
			lastWeek++
		}
		if created.After(lastAdded) {
			lastAdded = created
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.TotalCharacters = int64(seq.Len())
	c.stats.CharactersLastWeek = lastWeek
	c.stats.LastCharacterAddedAt = lastAdded
	c.stats.LastUpdated = now
}

// rollDay resets daily counters when the date changes. Callers hold c.mu.
func (c *Collector) rollDay(now time.Time) {
	day := now.Format("2006-01-02")
	if day != c.today {
		c.today = day
		c.stats.SheetsToday = 0
	}
}

// RecordCharacterSheet records one rendered character sheet.
func (c *Collector) RecordCharacterSheet() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.rollDay(now)
	c.stats.CharacterSheets++
	c.stats.SheetsToday++
	c.stats.LastSheetTime = now
}

// RecordMathSheet records one rendered worksheet with problems problems.
func (c *Collector) RecordMathSheet(problems int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.rollDay(now)
	c.stats.MathSheets++
	c.stats.SheetsToday++
	c.stats.ProblemsGenerated += int64(problems)
	c.stats.LastSheetTime = now
}

// RecordCharacterAdded records a successful append.
func (c *Collector) RecordCharacterAdded() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.CharactersAdded++
	c.stats.TotalCharacters++
}

// GetSummary returns a human-readable summary.
func (s *Stats) GetSummary() string {
	return fmt.Sprintf(
		`Usage (updated %s)

Characters
  Total: %d
  Added last week: %d
  Last added: %s

Sheets
  Character sheets: %d
  Math worksheets: %d (%d problems)
  Today: %d
  Last sheet: %s`,
		s.LastUpdated.Format("2006-01-02 15:04"),
		s.TotalCharacters,
		s.CharactersLastWeek,
		formatLastActivity(s.LastCharacterAddedAt),
		s.CharacterSheets,
		s.MathSheets,
		s.ProblemsGenerated,
		s.SheetsToday,
		formatLastActivity(s.LastSheetTime),
	)
}

func formatLastActivity(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	duration := time.Since(t)
	if duration < time.Hour {
		return "just now"
	}
	if duration < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	}
	if duration < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	}
	return t.Format("2006-01-02")
}

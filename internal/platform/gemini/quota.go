package gemini

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Free-tier request limits. Gemini does not expose actual usage, so
// calls are counted locally.
const (
	DailyLimit   = 60
	MonthlyLimit = 1500
)

const timestampFormat = "2006-01-02 15:04:05"

// Quota reports remaining free-tier requests based on the local count.
type Quota struct {
	DailyRemaining   int `json:"daily_remaining"`
	MonthlyRemaining int `json:"monthly_remaining"`
	DailyLimit       int `json:"daily_limit"`
	MonthlyLimit     int `json:"monthly_limit"`
	TodayCount       int `json:"today_count"`
	MonthCount       int `json:"month_count"`
}

type usageData struct {
	Today     []string `json:"today"`
	ThisMonth []string `json:"this_month"`
}

// UsageTracker counts API calls in a JSON file so quota survives
// restarts.
type UsageTracker struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewUsageTracker creates a tracker persisting to the given file.
func NewUsageTracker(path string) *UsageTracker {
	return &UsageTracker{path: path, now: time.Now}
}

// Record notes one API call and prunes entries from past days and
// months.
func (t *UsageTracker) Record() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data := t.load()
	now := t.now()
	timestamp := now.Format(timestampFormat)

	data.Today = append(data.Today, timestamp)
	data.ThisMonth = append(data.ThisMonth, timestamp)
	data.Today = filterPrefix(data.Today, now.Format("2006-01-02"))
	data.ThisMonth = filterPrefix(data.ThisMonth, now.Format("2006-01"))

	return t.save(data)
}

// Remaining reports the remaining daily and monthly request budget.
func (t *UsageTracker) Remaining() Quota {
	t.mu.Lock()
	defer t.mu.Unlock()

	data := t.load()
	now := t.now()
	todayCount := len(filterPrefix(data.Today, now.Format("2006-01-02")))
	monthCount := len(filterPrefix(data.ThisMonth, now.Format("2006-01")))

	return Quota{
		DailyRemaining:   max(0, DailyLimit-todayCount),
		MonthlyRemaining: max(0, MonthlyLimit-monthCount),
		DailyLimit:       DailyLimit,
		MonthlyLimit:     MonthlyLimit,
		TodayCount:       todayCount,
		MonthCount:       monthCount,
	}
}

// load returns the stored usage data, or empty data when the file is
// absent or unreadable.
func (t *UsageTracker) load() usageData {
	var data usageData
	raw, err := os.ReadFile(t.path)
	if err != nil {
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return usageData{}
	}
	return data
}

func (t *UsageTracker) save(data usageData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage data: %w", err)
	}
	if err := os.WriteFile(t.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write usage file: %w", err)
	}
	return nil
}

func filterPrefix(timestamps []string, prefix string) []string {
	kept := timestamps[:0]
	for _, ts := range timestamps {
		if strings.HasPrefix(ts, prefix) {
			kept = append(kept, ts)
		}
	}
	return kept
}

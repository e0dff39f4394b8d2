package admission

import (
	"sync"
	"time"

	"github.com/kioskbooth/portraits/pkg/models"
)

const dailyWindow = 24 * time.Hour

// DailyCounter bounds total accepted generations per rolling 24-hour window.
// The counter lives in process memory only: a restart resets the quota.
type DailyCounter struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time

	max int
	now func() time.Time
}

// NewDailyCounter creates a counter capped at max generations per window.
func NewDailyCounter(max int) *DailyCounter {
	c := &DailyCounter{max: max, now: time.Now}
	c.resetAt = c.now().Add(dailyWindow)
	return c
}

// Take consumes one slot, failing with DAILY_CAP when the window is full.
// A full window is never incremented.
func (c *DailyCounter) Take() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.After(c.resetAt) {
		c.count = 0
		c.resetAt = now.Add(dailyWindow)
	}

	if c.count >= c.max {
		return models.NewDomainError(models.CodeDailyCap, "Daily generation limit reached")
	}
	c.count++
	return nil
}

// Count returns the slots consumed in the current window.
func (c *DailyCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

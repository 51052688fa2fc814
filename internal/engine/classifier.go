package engine

import (
	"sync"
	"time"
)

// Classifier decides whether an update qualifies as an alert and owns
// the per-symbol cooldown table. Cooldown entries live independently of
// the snapshot store: a symbol may alert again after its snapshot
// expired, subject only to the cooldown window.
type Classifier struct {
	mu        sync.Mutex
	lastAlert map[string]int64 // symbol -> epoch ms of last recorded alert
}

func NewClassifier() *Classifier {
	return &Classifier{lastAlert: make(map[string]int64)}
}

// ShouldAlert applies the threshold, the minimum-volume gate, and the
// per-symbol cooldown. The volume change percent uses the multiplier
// encoding, so percent/100 is compared against thresholdTimes. It does
// not mark the cooldown; the caller marks only after recording.
func (c *Classifier) ShouldAlert(symbol string, volumeChangePercent, currentVolume float64, now time.Time, thresholdTimes, minVolume float64, cooldown time.Duration) bool {
	if volumeChangePercent/100 < thresholdTimes {
		return false
	}
	if currentVolume < minVolume {
		return false
	}
	c.mu.Lock()
	last := c.lastAlert[symbol]
	c.mu.Unlock()
	return now.UnixMilli()-last >= cooldown.Milliseconds()
}

// Mark records that an alert was emitted for symbol at now.
func (c *Classifier) Mark(symbol string, now time.Time) {
	c.mu.Lock()
	c.lastAlert[symbol] = now.UnixMilli()
	c.mu.Unlock()
}

// Reset drops the whole cooldown table, making every symbol immediately
// eligible again.
func (c *Classifier) Reset() {
	c.mu.Lock()
	c.lastAlert = make(map[string]int64)
	c.mu.Unlock()
}

// Retain keeps only the given symbols in the cooldown table.
func (c *Classifier) Retain(symbols map[string]struct{}) {
	c.mu.Lock()
	for sym := range c.lastAlert {
		if _, ok := symbols[sym]; !ok {
			delete(c.lastAlert, sym)
		}
	}
	c.mu.Unlock()
}

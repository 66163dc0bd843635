package summarize

import (
	"sync"
	"time"
)

// requestPacer spaces calls to the summarizer endpoint so the client stays
// under the configured requests-per-second allowance. Callers block in wait
// until their scheduled slot arrives; slots are handed out in call order.
type requestPacer struct {
	mu       sync.Mutex
	nextSlot time.Time
	gap      time.Duration
}

func newRequestPacer(requestsPerSecond int) *requestPacer {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &requestPacer{gap: time.Second / time.Duration(requestsPerSecond)}
}

func (p *requestPacer) wait() {
	p.mu.Lock()
	slot := time.Now()
	if p.nextSlot.After(slot) {
		slot = p.nextSlot
	}
	p.nextSlot = slot.Add(p.gap)
	p.mu.Unlock()

	if sleep := time.Until(slot); sleep > 0 {
		time.Sleep(sleep)
	}
}

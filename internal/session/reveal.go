package session

import (
	"sync"
	"time"
)

// Scheduler reveals text one character at a time on a fixed cadence, the
// way a chat interface types out an assistant reply. A reveal of N
// characters takes N times the configured delay.
type Scheduler struct {
	delay time.Duration
}

func NewScheduler(delay time.Duration) *Scheduler {
	return &Scheduler{delay: delay}
}

// Reveal is a running character reveal. Stop cancels it; once stopped or
// finished it is inert.
type Reveal struct {
	stop     chan struct{}
	stopOnce sync.Once
}

func (r *Reveal) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Start begins revealing text. onProgress is called after each character
// with the revealed prefix so far; onComplete is called exactly once, and
// only when the full text has been revealed. Both callbacks run on the
// reveal goroutine. Character boundaries are rune boundaries, so
// multi-byte text reveals cleanly.
func (s *Scheduler) Start(text string, onProgress func(revealed string), onComplete func()) *Reveal {
	r := &Reveal{stop: make(chan struct{})}

	go func() {
		runes := []rune(text)
		if len(runes) == 0 {
			onComplete()
			return
		}

		ticker := time.NewTicker(s.delay)
		defer ticker.Stop()

		for i := 1; i <= len(runes); i++ {
			select {
			case <-ticker.C:
				onProgress(string(runes[:i]))
			case <-r.stop:
				return
			}
		}
		onComplete()
	}()

	return r
}

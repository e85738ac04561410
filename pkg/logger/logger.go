// Package logger adds repeat suppression on top of the standard log package.
// Cache hits and fallback substitutions fire once per mall per request burst,
// which floods the log during frontend polling; identical consecutive
// messages are collapsed into one line with a count.
package logger

import (
	"fmt"
	"log"
	"sync"
	"time"
)

const flushAfter = 2 * time.Second

type suppressor struct {
	mu      sync.Mutex
	pending string
	repeats int
	timer   *time.Timer
}

var shared = &suppressor{}

// Dedup logs like log.Printf, but consecutive identical messages within the
// flush window are emitted once, suffixed with their repeat count.
func Dedup(format string, args ...any) {
	shared.log(fmt.Sprintf(format, args...))
}

func (s *suppressor) log(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg == s.pending {
		s.repeats++
		s.rearm()
		return
	}

	s.emit()
	s.pending = msg
	s.repeats = 1
	s.rearm()
}

func (s *suppressor) rearm() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(flushAfter, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.emit()
	})
}

// emit flushes the pending line. Callers hold s.mu.
func (s *suppressor) emit() {
	switch {
	case s.repeats == 1:
		log.Print(s.pending)
	case s.repeats > 1:
		log.Printf("%s (x%d)", s.pending, s.repeats)
	}
	s.pending = ""
	s.repeats = 0
}

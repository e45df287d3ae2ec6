package library

import (
	"github.com/sasha-s/go-deadlock"
)

// ValidateSaneExecutionTime arms a deadlock-detecting watchdog; call the
// returned func when the guarded section completes. Used around relay I/O so a
// hung websocket shows up as a report instead of a silent stall.
func ValidateSaneExecutionTime() func() {
	mu := deadlock.Mutex{}
	mu.Lock()
	go func() {
		mu.Lock()
		mu.Unlock()
	}()
	return func() {
		mu.Unlock()
	}
}

package testutil

import (
	apexlog "github.com/eluv-io/apexlog-go"
	"github.com/eluv-io/apexlog-go/handlers/memory"
	"github.com/eluv-io/log-go"
)

// NewMemoryLog creates a logger at the given level that keeps all entries in
// memory. The returned handler gives access to the recorded entries.
func NewMemoryLog(level string) (*log.Log, *memory.Handler) {
	lg := log.New(&log.Config{
		Level:   level,
		Handler: "memory",
	})
	return lg, lg.Handler().(*memory.Handler)
}

// Messages returns the messages of the given log entries in order.
func Messages(entries []*apexlog.Entry) []string {
	res := make([]string, len(entries))
	for i, e := range entries {
		res[i] = e.Message
	}
	return res
}

// FindEntry returns the first entry with the given message or nil.
func FindEntry(entries []*apexlog.Entry, msg string) *apexlog.Entry {
	for _, e := range entries {
		if e.Message == msg {
			return e
		}
	}
	return nil
}

package sink

import (
	"strings"
	"sync"

	"anspacker/internal/packer"
)

type multi []packer.Sink

// Multi fans every line out to each sink in order.
func Multi(sinks ...packer.Sink) packer.Sink {
	return multi(sinks)
}

func (m multi) Log(message string, level packer.Level) {
	for _, s := range m {
		s.Log(message, level)
	}
}

type Entry struct {
	Message string
	Level   packer.Level
}

// Recorder keeps every line in memory. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Log(message string, level packer.Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Message: message, Level: level})
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Text joins all messages with newlines, the form used by log export.
func (r *Recorder) Text() string {
	entries := r.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Message
	}
	return strings.Join(lines, "\n")
}

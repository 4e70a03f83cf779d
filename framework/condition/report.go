package condition

import (
	"slices"
	"sync"
)

// Entry is the recorded evaluation of one module or registration.
type Entry struct {
	Source   string   `yaml:"source" json:"source"`
	Match    bool     `yaml:"match" json:"match"`
	Messages []string `yaml:"messages" json:"messages"`
}

// Report collects condition outcomes in evaluation order.
type Report struct {
	mu      sync.Mutex
	entries []Entry
}

// NewReport returns an empty report.
func NewReport() *Report { return &Report{} }

// Record adds an entry for source. The entry matches only if every
// outcome matched.
func (r *Report) Record(source string, outcomes ...Outcome) {
	e := Entry{Source: source, Match: true, Messages: make([]string, 0, len(outcomes))}
	for _, o := range outcomes {
		e.Match = e.Match && o.Match
		e.Messages = append(e.Messages, o.Message)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a copy of every entry.
func (r *Report) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

// Entry returns the last entry recorded for source.
func (r *Report) Entry(source string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Source == source {
			return r.entries[i], true
		}
	}
	return Entry{}, false
}

// Matched returns the entries whose conditions all matched.
func (r *Report) Matched() []Entry { return r.filter(true) }

// Unmatched returns the entries with at least one failed condition.
func (r *Report) Unmatched() []Entry { return r.filter(false) }

func (r *Report) filter(match bool) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Match == match {
			out = append(out, e)
		}
	}
	return out
}

// Package history keeps the terminal transcript and the recall buffer used
// for previous/next navigation.
package history

// Welcome is the system banner shown when a session starts
const Welcome = "Welcome to Docker Command Terminal! Type 'help' to see available commands."

// Entry is one transcript line. Success is nil for system messages.
type Entry struct {
	Command string `json:"command"`
	Output  string `json:"output"`
	Success *bool  `json:"success,omitempty"`
}

// Actionable reports whether the entry came from an executed command
func (e Entry) Actionable() bool {
	return e.Success != nil
}

// Log is an append-only transcript
type Log struct {
	entries []Entry
}

// NewLog creates a transcript, optionally seeded with a system banner
func NewLog(banner string) *Log {
	l := &Log{}
	if banner != "" {
		l.entries = append(l.entries, Entry{Output: banner})
	}
	return l
}

// Append adds an entry at the end
func (l *Log) Append(e Entry) {
	l.entries = append(l.entries, e.clone())
}

// Record appends an executed command with a defined outcome
func (l *Log) Record(command, output string, success bool) {
	l.Append(Entry{Command: command, Output: output, Success: &success})
}

// Clear drops every entry
func (l *Log) Clear() {
	l.entries = nil
}

// Len returns the number of entries
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the transcript
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.clone()
	}
	return out
}

// clone copies e, including the outcome it points to
func (e Entry) clone() Entry {
	if e.Success != nil {
		ok := *e.Success
		e.Success = &ok
	}
	return e
}

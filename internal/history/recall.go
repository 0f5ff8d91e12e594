package history

// Recall is a most-recent-first buffer of raw inputs. The cursor starts on
// the empty draft (-1) and clamps at both ends.
type Recall struct {
	buffer []string
	index  int
}

// NewRecall creates an empty recall buffer
func NewRecall() *Recall {
	return &Recall{index: -1}
}

// Push records a submitted input and resets the cursor to the draft
func (r *Recall) Push(input string) {
	r.buffer = append([]string{input}, r.buffer...)
	r.index = -1
}

// Previous moves towards older inputs. At the oldest entry it stays put.
// With an empty buffer it returns the empty draft.
func (r *Recall) Previous() string {
	if len(r.buffer) == 0 {
		return ""
	}
	if r.index < len(r.buffer)-1 {
		r.index++
	}
	return r.buffer[r.index]
}

// Next moves towards newer inputs; stepping past the newest returns the
// empty draft.
func (r *Recall) Next() string {
	if r.index > 0 {
		r.index--
		return r.buffer[r.index]
	}
	r.index = -1
	return ""
}

// Reset puts the cursor back on the draft
func (r *Recall) Reset() {
	r.index = -1
}

// Index returns the cursor position, -1 meaning the draft
func (r *Recall) Index() int {
	return r.index
}

// Items returns the buffer, most recent first
func (r *Recall) Items() []string {
	out := make([]string, len(r.buffer))
	copy(out, r.buffer)
	return out
}

package core

import "sort"

// Timeline is the rendered sequence: messages ordered by creation time
// ascending, each distinct id present exactly once. The keyed map makes the
// dedup invariant mechanical rather than an accident of render order.
//
// Not safe for concurrent use; all mutation happens on the pipeline loop.
type Timeline struct {
	present map[int64]struct{}
	msgs    []Message
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{present: make(map[int64]struct{})}
}

// Insert merges one message. Returns false if a message with the same id is
// already present. Append is the fast path since inserts are near-monotonic,
// but out-of-order arrival is handled with an ordered insert.
func (t *Timeline) Insert(msg Message) bool {
	if _, exists := t.present[msg.ID]; exists {
		return false
	}
	t.present[msg.ID] = struct{}{}

	n := len(t.msgs)
	if n == 0 || !msg.CreatedAt.Before(t.msgs[n-1].CreatedAt) {
		t.msgs = append(t.msgs, msg)
		return true
	}

	i := sort.Search(n, func(i int) bool {
		return t.msgs[i].CreatedAt.After(msg.CreatedAt)
	})
	t.msgs = append(t.msgs, Message{})
	copy(t.msgs[i+1:], t.msgs[i:n])
	t.msgs[i] = msg
	return true
}

// Merge applies a historical fetch result without disturbing live inserts
// already merged. Returns how many messages were new.
func (t *Timeline) Merge(history []Message) int {
	added := 0
	for _, msg := range history {
		if t.Insert(msg) {
			added++
		}
	}
	return added
}

// Messages returns a copy of the ordered sequence.
func (t *Timeline) Messages() []Message {
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Len returns the number of distinct messages.
func (t *Timeline) Len() int {
	return len(t.msgs)
}

package journal

import (
	"sync"
	"time"
)

// DefaultCapacity is the History size used when none is given.
const DefaultCapacity = 1024

// Entry is one retained host call.
type Entry struct {
	Seq  uint64
	Call []byte // encoded protocol.HostCall
	At   time.Time
}

// History is a ring buffer of encoded host calls keyed by sequence
// number. When full, the oldest entry is overwritten.
type History struct {
	mu       sync.RWMutex
	entries  []Entry
	head     int // next write position
	count    int
	capacity int
	minSeq   uint64
	maxSeq   uint64
}

// NewHistory returns a History holding up to capacity entries.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

// Add stores call under seq. Sequence numbers must increase. The call
// bytes are copied.
func (h *History) Add(seq uint64, call []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.head] = Entry{Seq: seq, Call: append([]byte(nil), call...), At: time.Now()}
	h.head = (h.head + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	}

	h.maxSeq = seq
	h.minSeq = h.entries[h.oldest()].Seq
}

func (h *History) oldest() int {
	return (h.head - h.count + h.capacity) % h.capacity
}

// Since returns the entries after seq in order. ok is false when some of
// them have already been overwritten, or when seq is ahead of the newest
// entry.
func (h *History) Since(seq uint64) (entries []Entry, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.canRecover(seq) {
		return nil, false
	}
	start := h.oldest()
	for i := 0; i < h.count; i++ {
		e := h.entries[(start+i)%h.capacity]
		if e.Seq > seq {
			entries = append(entries, e)
		}
	}
	return entries, true
}

// CanRecover reports whether every entry after lastSeq is still held.
func (h *History) CanRecover(lastSeq uint64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.canRecover(lastSeq)
}

func (h *History) canRecover(lastSeq uint64) bool {
	if lastSeq == h.maxSeq {
		return true
	}
	if h.count == 0 || lastSeq > h.maxSeq {
		return false
	}
	return lastSeq+1 >= h.minSeq
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// MinSeq returns the oldest retained sequence number.
func (h *History) MinSeq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.minSeq
}

// MaxSeq returns the newest retained sequence number.
func (h *History) MaxSeq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.maxSeq
}

// Entries returns every retained entry, oldest first.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Entry, 0, h.count)
	start := h.oldest()
	for i := 0; i < h.count; i++ {
		out = append(out, h.entries[(start+i)%h.capacity])
	}
	return out
}

// Clear drops every entry.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.entries)
	h.head, h.count = 0, 0
	h.minSeq, h.maxSeq = 0, 0
}

package loop

// Manual is a Scheduler that runs deferred tasks only when stepped.
type Manual struct {
	queue []func()
}

// NewManual returns an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// Defer queues fn.
func (m *Manual) Defer(fn func()) {
	if fn != nil {
		m.queue = append(m.queue, fn)
	}
}

// Len returns the number of queued tasks.
func (m *Manual) Len() int {
	return len(m.queue)
}

// Step runs the oldest task. It reports false when nothing was queued.
func (m *Manual) Step() bool {
	if len(m.queue) == 0 {
		return false
	}
	fn := m.queue[0]
	m.queue[0] = nil
	m.queue = m.queue[1:]
	fn()
	return true
}

// RunUntilIdle steps until the queue is empty or max tasks have run
// (max <= 0 means no limit). It returns the number of tasks run.
func (m *Manual) RunUntilIdle(max int) int {
	n := 0
	for max <= 0 || n < max {
		if !m.Step() {
			break
		}
		n++
	}
	return n
}

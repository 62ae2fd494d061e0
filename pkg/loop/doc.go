// Package loop provides the task scheduling used by hostdom sessions.
//
// A Scheduler is a FIFO task queue with an implicit yield point between
// tasks: every function passed to Defer runs later, on the scheduler's own
// goroutine, after everything deferred before it. The bridge relies on this
// to drain one host command per tick so event handlers and other deferred
// work can interleave with rendering.
//
// Loop is the production scheduler; it is driven by Run on a single
// goroutine and accepts work from any goroutine. Manual is a deterministic
// scheduler for tests that runs nothing until stepped.
package loop

// Scheduler runs deferred tasks in FIFO order.
type Scheduler interface {
	// Defer queues fn to run after all previously deferred tasks.
	Defer(fn func())
}

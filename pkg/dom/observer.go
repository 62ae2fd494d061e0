package dom

import "time"

// Observer receives bridge activity. Implementations must be cheap; they
// run inline on the session goroutine.
type Observer interface {
	// CommandEnqueued is called after a command is queued, with the new
	// queue length.
	CommandEnqueued(m Method, depth int)

	// CommandExecuted is called after a command ran. err is the host error,
	// if any, which the bridge otherwise ignores.
	CommandExecuted(m Method, d time.Duration, err error)

	// EventRouted is called for every DOM event synthesized from a host
	// event. delivered is false when the target no longer exists.
	EventRouted(eventType string, delivered bool)
}

type nopObserver struct{}

func (nopObserver) CommandEnqueued(Method, int) {}
func (nopObserver) CommandExecuted(Method, time.Duration, error) {}
func (nopObserver) EventRouted(string, bool) {}

// Package queue holds the backlog of image URLs shown one at a time.
//
// The queue owns the lifecycle of its advance timer but not the clock: Append
// reports when a timer must be armed and Tick(tag) consumes ticks. Every
// arming bumps the tag, so ticks from an earlier arming are ignored and at
// most one timer is live. The timer is disarmed as soon as the queue empties.
package queue

// Queue is a FIFO of image URLs. The zero value is an empty, disarmed queue.
type Queue struct {
	urls  []string
	tag   int
	armed bool
}

// Append adds urls to the tail. It returns true when the queue went from empty
// to non-empty, in which case a new timer tagged Tag() must be started.
func (q *Queue) Append(urls ...string) bool {
	if len(urls) == 0 {
		return false
	}
	wasEmpty := len(q.urls) == 0
	q.urls = append(q.urls, urls...)
	if !wasEmpty {
		return false
	}
	q.tag++
	q.armed = true
	return true
}

// Advance removes the head. It is a no-op on an empty queue.
func (q *Queue) Advance() {
	if len(q.urls) == 0 {
		return
	}
	q.urls[0] = ""
	q.urls = q.urls[1:]
	if len(q.urls) == 0 {
		q.Stop()
	}
}

// DismissCurrent is the user-triggered Advance.
func (q *Queue) DismissCurrent() {
	q.Advance()
}

// Current returns the head URL.
func (q *Queue) Current() (string, bool) {
	if len(q.urls) == 0 {
		return "", false
	}
	return q.urls[0], true
}

func (q *Queue) Len() int { return len(q.urls) }

// Tag identifies the currently armed timer.
func (q *Queue) Tag() int { return q.tag }

func (q *Queue) Armed() bool { return q.armed }

// Tick handles one timer period for the timer tagged tag. Stale tags are
// ignored. It returns true when the timer should keep running.
func (q *Queue) Tick(tag int) bool {
	if !q.armed || tag != q.tag {
		return false
	}
	q.Advance()
	return q.armed
}

// Stop disarms the timer; pending ticks become stale.
func (q *Queue) Stop() {
	q.armed = false
	q.tag++
}

// Reset drops every URL and disarms the timer.
func (q *Queue) Reset() {
	q.urls = nil
	q.Stop()
}

// URLs returns a copy of the backlog in display order.
func (q *Queue) URLs() []string {
	out := make([]string, len(q.urls))
	copy(out, q.urls)
	return out
}

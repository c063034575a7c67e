package looper

// ProcessingTracker serializes stretch jobs of one layer. A request made
// while a job runs is remembered in Pending and replayed when it ends.
type ProcessingTracker struct {
	Running bool
	Pending bool
}

// begin reports whether a job may start now. Otherwise the request is
// coalesced into Pending.
func (t *ProcessingTracker) begin() bool {
	if t.Running {
		t.Pending = true
		return false
	}

	t.Running = true

	return true
}

// finish ends the running job and reports whether a coalesced request
// has to run next.
func (t *ProcessingTracker) finish() bool {
	rerun := t.Pending
	t.Running = false
	t.Pending = false

	return rerun
}

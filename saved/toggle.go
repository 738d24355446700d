package saved

import "github.com/jrsteele09/go-events-client/events"

// toggle is the Pending state of one event id. An id without a toggle is
// Settled at its current membership.
//
//	Settled(s) -> Pending(target=!s) -> Settled(target)  on success
//	                                 -> Settled(s)       on failure
type toggle struct {
	event    events.Event
	wasSaved bool
	target   bool
	index    int    // position the event held before an optimistic removal
	epoch    uint64 // collection epoch the toggle started in
}

// beginLocked marks the id pending and applies the optimistic change.
func (s *Synchronizer) beginLocked(e events.Event) *toggle {
	t := &toggle{event: e, epoch: s.epoch}
	if removed, i, ok := s.removeLocked(e.ID); ok {
		t.wasSaved = true
		t.event = removed
		t.index = i
	} else {
		s.insertLocked(e, 0)
	}
	t.target = !t.wasSaved
	s.toggles[e.ID] = t
	return t
}

// finishLocked settles the toggle. On failure membership reverts to
// wasSaved, unless the collection was reset while the call was in flight.
func (s *Synchronizer) finishLocked(t *toggle, err error) {
	delete(s.toggles, t.event.ID)
	if err == nil || t.epoch != s.epoch {
		return
	}
	if t.wasSaved {
		s.insertLocked(t.event, t.index)
	} else {
		s.removeLocked(t.event.ID)
	}
}

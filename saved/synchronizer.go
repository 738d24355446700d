// Package saved keeps the signed-in user's saved events in sync with the API.
// Toggles are applied optimistically and rolled back on failure; full
// reloads are sequence-guarded so the last one started wins.
package saved

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/jrsteele09/go-events-client/events"
	"github.com/jrsteele09/go-events-client/gateway"
	"github.com/jrsteele09/go-events-client/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const savedPath = "/api/saved"

// Session reports whether requests can be made on behalf of a user.
type Session interface {
	IsAuthenticated() bool
}

// Notifier publishes session changes. *auth.Manager implements it.
type Notifier interface {
	Subscribe(l sessions.Listener) (unsubscribe func())
}

// Snapshot is a copy of the synchronizer's observable state.
type Snapshot struct {
	Events  []events.Event
	Loading bool
	Err     error // last committed refresh failure
}

type savedEnvelope struct {
	Events []events.Event `json:"events"`
}

type checkEnvelope struct {
	Saved bool `json:"saved"`
}

type saveRequest struct {
	EventID string `json:"event_id"`
}

// Synchronizer owns the saved collection. All mutation goes through its methods.
type Synchronizer struct {
	gw      gateway.Requester
	session Session
	log     zerolog.Logger

	mu        sync.Mutex
	saved     []events.Event
	toggles   map[string]*toggle
	seq       uint64 // bumped by every refresh start and by Reset
	epoch     uint64 // bumped by Reset; stale toggles skip their rollback
	loading   bool
	err       error
	listeners map[int]func(Snapshot)
	nextID    int
	closed    bool

	ctx         context.Context
	cancel      context.CancelFunc
	background  sync.WaitGroup
	unsubscribe func()
}

// SynchronizerOption defines a function type to modify the Synchronizer instance.
type SynchronizerOption func(*Synchronizer)

func WithLogger(l zerolog.Logger) SynchronizerOption {
	return func(s *Synchronizer) {
		s.log = l.With().Str("component", "saved").Logger()
	}
}

func NewSynchronizer(gw gateway.Requester, session Session, options ...SynchronizerOption) (*Synchronizer, error) {
	if gw == nil {
		return nil, errors.New("[saved.NewSynchronizer] gateway is required")
	}
	if session == nil {
		return nil, errors.New("[saved.NewSynchronizer] session is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Synchronizer{
		gw:        gw,
		session:   session,
		log:       zerolog.Nop(),
		toggles:   make(map[string]*toggle),
		listeners: make(map[int]func(Snapshot)),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Follow reloads the collection whenever the session becomes authenticated
// and resets it when the session ends. Only one notifier is followed at a time.
func (s *Synchronizer) Follow(n Notifier) {
	unsubscribe := n.Subscribe(func(state sessions.State) {
		switch state.Status {
		case sessions.StatusAuthenticated:
			s.goRefresh()
		case sessions.StatusUnauthenticated:
			s.Reset()
		}
	})

	s.mu.Lock()
	previous := s.unsubscribe
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	if previous != nil {
		previous()
	}
}

func (s *Synchronizer) goRefresh() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.background.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.background.Done()
		if err := s.Refresh(s.ctx); err != nil {
			s.log.Info().Err(err).Msg("background refresh failed")
		}
	}()
}

// Close stops following the session, cancels background reloads and drops listeners.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.listeners = make(map[int]func(Snapshot))
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.cancel()
	s.background.Wait()
}

// Subscribe registers fn for collection changes and returns a function that removes it.
func (s *Synchronizer) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// changedLocked snapshots state for listeners. The caller must hold mu and
// call the returned function after unlocking.
func (s *Synchronizer) changedLocked() func() {
	if len(s.listeners) == 0 {
		return func() {}
	}
	snap := s.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	return func() {
		for _, l := range listeners {
			l(snap)
		}
	}
}

func (s *Synchronizer) snapshotLocked() Snapshot {
	return Snapshot{
		Events:  append([]events.Event(nil), s.saved...),
		Loading: s.loading,
		Err:     s.err,
	}
}

// Snapshot returns a copy of the current state.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Saved returns a copy of the saved collection, most recently saved first.
func (s *Synchronizer) Saved() []events.Event {
	return s.Snapshot().Events
}

// IsSaved reports local membership, including optimistic changes.
func (s *Synchronizer) IsSaved(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

// IsPending reports whether a toggle for id is in flight.
func (s *Synchronizer) IsPending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.toggles[id]
	return ok
}

func (s *Synchronizer) indexLocked(id string) int {
	for i := range s.saved {
		if s.saved[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Synchronizer) insertLocked(e events.Event, at int) {
	if s.indexLocked(e.ID) >= 0 {
		return
	}
	at = max(0, min(at, len(s.saved)))
	s.saved = append(s.saved, events.Event{})
	copy(s.saved[at+1:], s.saved[at:])
	s.saved[at] = e
}

func (s *Synchronizer) removeLocked(id string) (events.Event, int, bool) {
	i := s.indexLocked(id)
	if i < 0 {
		return events.Event{}, -1, false
	}
	e := s.saved[i]
	s.saved = append(s.saved[:i], s.saved[i+1:]...)
	return e, i, true
}

// Reset empties the collection and discards any refresh still in flight.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	s.seq++
	s.epoch++
	s.saved = nil
	s.loading = false
	s.err = nil
	notify := s.changedLocked()
	s.mu.Unlock()

	s.log.Debug().Msg("saved collection reset")
	notify()
}

// Refresh replaces the collection with the server's list. If another refresh
// or a Reset starts before this one completes, its result and error are
// discarded and Refresh returns nil.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	if !s.session.IsAuthenticated() {
		s.Reset()
		return nil
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.loading = true
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()

	env, err := gateway.Request[savedEnvelope](ctx, s.gw, savedPath, gateway.Options{})

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.log.Debug().Uint64("seq", seq).Msg("discarding superseded refresh")
		return nil
	}
	s.loading = false
	if err != nil {
		s.err = err
	} else {
		s.err = nil
		s.saved = s.overlayPendingLocked(env.Events)
	}
	notify = s.changedLocked()
	s.mu.Unlock()
	notify()

	if err != nil {
		return errors.Wrap(err, "[saved.Refresh]")
	}
	s.log.Debug().Uint64("seq", seq).Int("count", len(env.Events)).Msg("saved collection refreshed")
	return nil
}

// overlayPendingLocked applies in-flight toggles on top of a server list that
// may predate them.
func (s *Synchronizer) overlayPendingLocked(list []events.Event) []events.Event {
	out := make([]events.Event, 0, len(list)+len(s.toggles))
	for _, e := range list {
		if t, ok := s.toggles[e.ID]; ok && !t.target {
			continue
		}
		out = append(out, e)
	}
	for id, t := range s.toggles {
		if !t.target {
			continue
		}
		found := false
		for i := range out {
			if out[i].ID == id {
				found = true
				break
			}
		}
		if !found {
			out = append([]events.Event{t.event}, out...)
		}
	}
	return out
}

// ToggleSave flips the saved state of e and returns the new state.
//
// The change is visible locally before the server answers. On failure the
// collection is restored to its previous membership and the error returned.
// A toggle for an id that is already in flight is dropped: the current
// membership is returned and no call is made.
func (s *Synchronizer) ToggleSave(ctx context.Context, e events.Event) (bool, error) {
	if !s.session.IsAuthenticated() {
		return false, ErrNotAuthenticated
	}
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return false, events.ErrEventIDRequired
	}
	e.ID = id

	s.mu.Lock()
	if _, pending := s.toggles[id]; pending {
		saved := s.indexLocked(id) >= 0
		s.mu.Unlock()
		s.log.Debug().Str("event_id", id).Msg("toggle already in flight, ignoring")
		return saved, nil
	}
	t := s.beginLocked(e)
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()

	var err error
	if t.target {
		err = s.gw.Do(ctx, savedPath, gateway.JSON(http.MethodPost, saveRequest{EventID: id}), nil)
	} else {
		err = s.gw.Do(ctx, savedPath+"/"+url.PathEscape(id), gateway.Options{Method: http.MethodDelete}, nil)
	}

	s.mu.Lock()
	s.finishLocked(t, err)
	notify = s.changedLocked()
	s.mu.Unlock()
	notify()

	if err != nil {
		s.log.Info().Err(err).Str("event_id", id).Bool("saved", t.wasSaved).Msg("toggle failed, rolled back")
		return t.wasSaved, errors.Wrapf(err, "[saved.ToggleSave] %s", id)
	}
	return t.target, nil
}

// CheckSaved asks the server whether e is saved and reconciles local
// membership, unless a toggle or refresh for it started in the meantime.
func (s *Synchronizer) CheckSaved(ctx context.Context, e events.Event) (bool, error) {
	if !s.session.IsAuthenticated() {
		return false, ErrNotAuthenticated
	}
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return false, events.ErrEventIDRequired
	}
	e.ID = id

	s.mu.Lock()
	seq := s.seq
	s.mu.Unlock()

	env, err := gateway.Request[checkEnvelope](ctx, s.gw, savedPath+"/"+url.PathEscape(id), gateway.Options{})
	if err != nil {
		return false, errors.Wrapf(err, "[saved.CheckSaved] %s", id)
	}

	s.mu.Lock()
	if _, pending := s.toggles[id]; pending || seq != s.seq {
		saved := s.indexLocked(id) >= 0
		s.mu.Unlock()
		return saved, nil
	}
	if env.Saved {
		s.insertLocked(e, 0)
	} else {
		s.removeLocked(id)
	}
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()

	return env.Saved, nil
}

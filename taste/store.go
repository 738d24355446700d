package taste

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jrsteele09/go-events-client/securestore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProfileKey is the storage key of the serialized profile.
const ProfileKey = "taste_profile"

// Store keeps the profile in memory and writes it through to storage after every interaction.
type Store struct {
	kv  securestore.KV
	log zerolog.Logger
	now func() time.Time

	mu      sync.Mutex
	loaded  bool
	profile Profile
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = l.With().Str("component", "taste").Logger()
	}
}

// WithClock sets the time source used to stamp interactions.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(kv securestore.KV, options ...StoreOption) (*Store, error) {
	if kv == nil {
		return nil, errors.New("[taste.NewStore] key/value store is required")
	}
	s := &Store{kv: kv, log: zerolog.Nop(), now: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Profile returns the current profile, loading it on first use.
func (s *Store) Profile(ctx context.Context) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return NewProfile(), err
	}
	return s.profile.clone(), nil
}

// loadLocked reads the stored profile. A missing or unreadable value yields an empty profile.
func (s *Store) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	raw, ok, err := s.kv.Get(ctx, ProfileKey)
	if err != nil {
		return errors.Wrap(err, "[taste.Store] load profile")
	}

	p := NewProfile()
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.log.Warn().Err(err).Msg("stored taste profile is corrupt, starting empty")
			p = NewProfile()
		}
	}
	s.profile = p.sanitized()
	s.loaded = true
	return nil
}

// Record applies in to the profile and persists the result. If persisting
// fails the in-memory profile still holds the update and the error is returned.
func (s *Store) Record(ctx context.Context, in Interaction) (Profile, error) {
	if in.At.IsZero() {
		in.At = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return NewProfile(), err
	}
	s.profile = UpdateFromInteraction(s.profile, in)
	if err := s.saveLocked(ctx); err != nil {
		return s.profile.clone(), err
	}
	return s.profile.clone(), nil
}

// Clear forgets the profile, in memory and in storage.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = NewProfile()
	s.loaded = true
	return errors.Wrap(s.kv.Delete(ctx, ProfileKey), "[taste.Store] clear profile")
}

func (s *Store) saveLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.profile)
	if err != nil {
		return errors.Wrap(err, "[taste.Store] encode profile")
	}
	if err := s.kv.Set(ctx, ProfileKey, string(raw)); err != nil {
		return errors.Wrap(err, "[taste.Store] save profile")
	}
	return nil
}

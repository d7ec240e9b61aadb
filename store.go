package tile

import (
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// OpenEvent describes a container that was just loaded into a Store.
type OpenEvent struct {
	Authority string
	Manifest  Manifest
}

// Listener receives open events. Listeners run synchronously on the
// opening goroutine, after the store entry is visible.
type Listener func(OpenEvent)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for open failures and diagnostics.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithListener registers a listener for open events.
func WithListener(l Listener) StoreOption {
	return func(s *Store) {
		s.listeners = append(s.listeners, l)
	}
}

// Store holds parsed containers keyed by authority.
//
// Entries are inserted or overwritten on open and retained for the
// Store's lifetime; there is no eviction. Tiles are immutable once
// inserted, so the mutex only guards the map itself — it is never held
// across block-read file I/O.
type Store struct {
	mu        sync.Mutex
	tiles     map[string]*Tile
	group     singleflight.Group
	listeners []Listener
	logger    *slog.Logger
}

// NewStore creates an empty Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		tiles: make(map[string]*Tile),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// log returns the logger, falling back to a discard logger if nil.
func (s *Store) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// Open parses the container at path and inserts it under its derived
// authority, overwriting any previous entry for that authority.
//
// Parsing runs outside the store lock; concurrent Open calls for the
// same path share one parse. Registered listeners are notified after
// the entry is visible. Failures are logged and returned.
func (s *Store) Open(path string) (string, Manifest, error) {
	v, err, _ := s.group.Do(path, func() (any, error) {
		return ParseFile(path)
	})
	if err != nil {
		s.log().Error("open container failed", "path", path, "error", err)
		return "", Manifest{}, err
	}
	t := v.(*Tile) //nolint:errcheck // type assertion always succeeds when err is nil

	authority := AuthorityFromPath(path)

	s.mu.Lock()
	s.tiles[authority] = t
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	s.log().Info("container opened",
		"path", path, "authority", authority, "blocks", t.Len())

	event := OpenEvent{Authority: authority, Manifest: t.Manifest()}
	for _, l := range listeners {
		l(event)
	}
	return authority, t.Manifest(), nil
}

// Get returns the container loaded under authority.
func (s *Store) Get(authority string) (*Tile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tiles[authority]
	return t, ok
}

// Resolve resolves a request path within the container loaded under
// authority. The store lock is released before any block I/O happens.
func (s *Store) Resolve(authority, path string) (Resource, []byte, error) {
	t, ok := s.Get(authority)
	if !ok {
		return nil, nil, ErrNotLoaded
	}
	return t.Resolve(path)
}

// Authorities returns the loaded authorities in sorted order.
func (s *Store) Authorities() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tiles))
	for a := range s.tiles {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of loaded containers.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tiles)
}

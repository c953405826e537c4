// Package prefs implements a durable key-value preference store backed by a
// single JSON document on disk, with serialized atomic writes and a multicast
// snapshot stream for watchers.
package prefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/knadh/koanf"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"

	"github.com/colorkeep/colorkeep/pkg/logger"
)

// Store is a durable key-value preference store. Construct one instance per
// process at startup and inject it wherever settings are needed; it must not
// be shared across processes.
type Store struct {
	path string

	mu     sync.RWMutex
	values map[string]interface{}

	subMu       sync.Mutex
	subscribers map[chan Snapshot]struct{}
}

// NewStore loads the preference document at path. A missing file yields an
// empty store. An unreadable or malformed file is logged and likewise
// degrades to an empty store rather than failing startup; the next committed
// edit replaces the broken document.
func NewStore(path string) *Store {
	s := &Store{
		path:        path,
		values:      make(map[string]interface{}),
		subscribers: make(map[chan Snapshot]struct{}),
	}

	if _, err := os.Stat(path); err == nil {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
			logger.Warnf("prefs: unable to read %s, starting with empty preferences: %v", path, err)
		} else {
			s.values = k.Raw()
		}
	}

	return s
}

// ReadOnce returns the current state as an immutable snapshot.
func (s *Store) ReadOnce() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newSnapshot(s.values)
}

// Editor mutates a pending copy of the store's key set within Edit. Changes
// become visible only when the edit commits.
type Editor struct {
	values map[string]interface{}
}

func (e *Editor) Set(key string, value interface{}) {
	e.values[key] = value
}

func (e *Editor) Delete(key string) {
	delete(e.values, key)
}

func (e *Editor) Get(key string) (interface{}, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Snapshot returns a typed view of the pending state, including any changes
// made so far in this edit.
func (e *Editor) Snapshot() Snapshot {
	return newSnapshot(e.values)
}

// Edit applies fn to a copy of the current key set and commits the result
// atomically: the document is written to a temporary file and renamed over
// the previous one, then the in-memory state is swapped and broadcast to
// watchers. Edits are serialized, so a read-modify-write expressed inside fn
// cannot lose updates to a concurrent edit. An error from fn or from the
// write aborts the edit and leaves the store unchanged.
func (s *Store) Edit(fn func(e *Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := copyValues(s.values)
	if err := fn(&Editor{values: pending}); err != nil {
		return err
	}

	if err := s.write(pending); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}

	s.values = pending
	s.broadcast(newSnapshot(pending))
	return nil
}

func (s *Store) write(values map[string]interface{}) error {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return err
	}

	data, err := k.Marshal(kjson.Parser())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Watch returns a channel that carries the current snapshot immediately and
// the latest snapshot after every committed edit. There is one underlying
// state fanned out to all watchers; each watcher has its own conflating
// buffer, so intermediate snapshots may be skipped by a slow receiver but the
// newest one is always pending. The channel is closed when ctx is cancelled.
func (s *Store) Watch(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	s.mu.RLock()
	current := newSnapshot(s.values)
	s.mu.RUnlock()

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	offer(ch, current)
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		delete(s.subscribers, ch)
		close(ch)
		s.subMu.Unlock()
	}()

	return ch
}

// broadcast delivers snap to every subscriber without blocking the writer.
func (s *Store) broadcast(snap Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for ch := range s.subscribers {
		offer(ch, snap)
	}
}

// offer places snap into a capacity-1 channel, replacing a pending unread
// snapshot with the newer one.
func offer(ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

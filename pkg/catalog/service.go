// Package catalog wraps the sqlite color store with transactions and a
// reactive list view.
package catalog

import (
	"context"
	"sync"

	"github.com/colorkeep/colorkeep/pkg/logger"
	"github.com/colorkeep/colorkeep/pkg/models"
	"github.com/colorkeep/colorkeep/pkg/sqlite"
)

// Service is the application-facing color catalog. Every committed mutation
// re-queries the catalog and fans the fresh list out to all watchers.
type Service struct {
	db    *sqlite.Database
	store *sqlite.ColorStore

	subMu       sync.Mutex
	subscribers map[chan []models.ColorRecord]struct{}
}

func NewService(db *sqlite.Database, store *sqlite.ColorStore) *Service {
	return &Service{
		db:          db,
		store:       store,
		subscribers: make(map[chan []models.ColorRecord]struct{}),
	}
}

// ListAllOnce returns the catalog ordered by id ascending.
func (s *Service) ListAllOnce(ctx context.Context) ([]models.ColorRecord, error) {
	var ret []models.ColorRecord
	err := s.db.WithReadTxn(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.store.All(ctx)
		return err
	})
	return ret, err
}

// ListAll emits the current catalog immediately and a fresh list after every
// committed mutation, until ctx is cancelled. Each watcher has a conflating
// buffer: a slow receiver may skip intermediate lists but always finds the
// latest one pending.
func (s *Service) ListAll(ctx context.Context) <-chan []models.ColorRecord {
	ch := make(chan []models.ColorRecord, 1)

	current, err := s.ListAllOnce(ctx)
	if err != nil {
		logger.Errorf("catalog: initial list query failed: %v", err)
	}

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	if err == nil {
		offer(ch, current)
	}
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

// GetByID returns the record with the given id, or nil when absent.
func (s *Service) GetByID(ctx context.Context, id int) (*models.ColorRecord, error) {
	var ret *models.ColorRecord
	err := s.db.WithReadTxn(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.store.Find(ctx, id)
		return err
	})
	return ret, err
}

// GetByHueRange returns records with min <= hue < max, ordered by hue.
func (s *Service) GetByHueRange(ctx context.Context, min, max float64) ([]models.ColorRecord, error) {
	var ret []models.ColorRecord
	err := s.db.WithReadTxn(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.store.FindByHueRange(ctx, min, max)
		return err
	})
	return ret, err
}

// Insert stores record and assigns its id.
func (s *Service) Insert(ctx context.Context, record *models.ColorRecord) error {
	if err := s.db.WithTxn(ctx, func(ctx context.Context) error {
		return s.store.Create(ctx, record)
	}); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// InsertAll stores all records in one transaction, preserving order.
func (s *Service) InsertAll(ctx context.Context, records []models.ColorRecord) ([]models.ColorRecord, error) {
	var created []models.ColorRecord
	if err := s.db.WithTxn(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.store.CreateMany(ctx, records)
		return err
	}); err != nil {
		return nil, err
	}
	s.notify(ctx)
	return created, nil
}

// Delete removes record from the catalog.
func (s *Service) Delete(ctx context.Context, record models.ColorRecord) error {
	return s.DeleteByID(ctx, record.ID)
}

// DeleteByID removes the record with the given id.
func (s *Service) DeleteByID(ctx context.Context, id int) error {
	if err := s.db.WithTxn(ctx, func(ctx context.Context) error {
		return s.store.Destroy(ctx, id)
	}); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// UpdateFavorite toggles the favorite flag on the record with the given id.
func (s *Service) UpdateFavorite(ctx context.Context, id int, favorite bool) error {
	if err := s.db.WithTxn(ctx, func(ctx context.Context) error {
		return s.store.UpdateFavorite(ctx, id, favorite)
	}); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// UpdateHue overwrites the stored hue for the record with the given id.
func (s *Service) UpdateHue(ctx context.Context, id int, hue float64) error {
	if err := s.db.WithTxn(ctx, func(ctx context.Context) error {
		return s.store.UpdateHue(ctx, id, hue)
	}); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

func (s *Service) notify(ctx context.Context) {
	list, err := s.ListAllOnce(ctx)
	if err != nil {
		logger.Errorf("catalog: list query after mutation failed: %v", err)
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		offer(ch, list)
	}
}

// offer places list into a capacity-1 channel, replacing a pending unread
// list with the newer one.
func offer(ch chan []models.ColorRecord, list []models.ColorRecord) {
	select {
	case ch <- list:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- list:
		default:
		}
	}
}

package mock

import (
	"sync"
	"time"

	"github.com/catalogfi/barter/pkg/store"
	"github.com/catalogfi/barter/pkg/swap"
)

// Store keeps swaps in memory with the same sequential-id and guarded-close
// behaviour as the gorm store.
type Store struct {
	mu     sync.Mutex
	nextID uint64
	swaps  map[uint64]swap.Swap
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{nextID: 1, swaps: map[uint64]swap.Swap{}}
}

func (s *Store) CreateSwap(sw *swap.Swap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw.ID = s.nextID
	s.nextID++
	s.swaps[sw.ID] = clone(*sw)
	return nil
}

func (s *Store) Swap(id uint64) (swap.Swap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, ok := s.swaps[id]
	if !ok {
		return swap.Swap{}, swap.ErrSwapNotFound
	}
	return clone(sw), nil
}

func (s *Store) Swaps(filter store.Filter) ([]swap.Swap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var swaps []swap.Swap
	for id := uint64(1); id < s.nextID; id++ {
		sw, ok := s.swaps[id]
		if !ok {
			continue
		}
		if filter.Party != nil && sw.Initiator != *filter.Party && sw.Counterparty != *filter.Party {
			continue
		}
		if filter.Status != swap.Unknown && sw.Status != filter.Status {
			continue
		}
		swaps = append(swaps, clone(sw))
	}
	return swaps, nil
}

func (s *Store) CloseSwap(id uint64, status swap.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, ok := s.swaps[id]
	if !ok {
		return swap.ErrSwapNotFound
	}
	if sw.Status != swap.Active {
		return swap.ErrSwapClosed
	}
	sw.Status = status
	sw.ClosedAt = &at
	s.swaps[id] = sw
	return nil
}

func clone(sw swap.Swap) swap.Swap {
	legs := make([]swap.Leg, len(sw.Legs))
	copy(legs, sw.Legs)
	sw.Legs = legs
	return sw
}

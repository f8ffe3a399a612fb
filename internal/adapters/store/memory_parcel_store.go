package store

import (
	"parcel-dispatch-service/internal/domain"
	"slices"
	"sync"
)

// MemoryParcelStore is the in-run parcel table keyed by parcel ID.
// Writes are serialized; readers get the shared *domain.Parcel records.
type MemoryParcelStore struct {
	mu      sync.RWMutex
	parcels map[int]*domain.Parcel
}

func NewMemoryParcelStore(parcels []*domain.Parcel) *MemoryParcelStore {
	s := &MemoryParcelStore{parcels: make(map[int]*domain.Parcel, len(parcels))}
	for _, p := range parcels {
		s.parcels[p.ParcelID] = p
	}
	return s
}

func (s *MemoryParcelStore) Get(id int) (*domain.Parcel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parcels[id]
	return p, ok
}

// Put inserts or replaces the record for p.ParcelID.
func (s *MemoryParcelStore) Put(p *domain.Parcel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.parcels[p.ParcelID] = p
}

func (s *MemoryParcelStore) All() []*domain.Parcel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Parcel, 0, len(s.parcels))
	for _, p := range s.parcels {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *domain.Parcel) int { return a.ParcelID - b.ParcelID })
	return out
}

func (s *MemoryParcelStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.parcels)
}

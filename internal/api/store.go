package api

import (
	"sort"
	"sync"

	"github.com/metageek-llc/ManagedWifi/internal/schema"
)

// Store holds the most recent scan result of each BSS.
type Store struct {
	lock sync.RWMutex
	bss  map[string]schema.BSS
}

func NewStore() *Store {
	return &Store{bss: make(map[string]schema.BSS)}
}

// Replace swaps the stored scan results for bss and returns the BSSIDs that
// are no longer present.
func (s *Store) Replace(bss []schema.BSS) []string {
	next := make(map[string]schema.BSS, len(bss))
	for _, b := range bss {
		next[b.BSSID] = b
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	var gone []string
	for id := range s.bss {
		if _, ok := next[id]; !ok {
			gone = append(gone, id)
		}
	}
	sort.Strings(gone)

	s.bss = next
	return gone
}

func (s *Store) Get(bssid string) (schema.BSS, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	b, ok := s.bss[bssid]
	return b, ok
}

// List returns the stored results ordered by BSSID.
func (s *Store) List() []schema.BSS {
	s.lock.RLock()
	defer s.lock.RUnlock()

	bss := make([]schema.BSS, 0, len(s.bss))
	for _, b := range s.bss {
		bss = append(bss, b)
	}
	sort.Slice(bss, func(i, j int) bool { return bss[i].BSSID < bss[j].BSSID })
	return bss
}

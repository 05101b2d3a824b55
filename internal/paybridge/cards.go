package paybridge

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SavedCard is what the bridge keeps about a card. The full number and
// CVV are never stored.
type SavedCard struct {
	ID             string    `json:"id"`
	LastFourDigits string    `json:"lastFourDigits"`
	ExpiryDate     string    `json:"expiryDate"`
	CardholderName string    `json:"cardholderName"`
	savedAt        time.Time
}

// CardStore is an in-memory card vault. Contents vanish with the process.
type CardStore struct {
	mu    sync.RWMutex
	cards map[string]SavedCard
}

func NewCardStore() *CardStore {
	return &CardStore{cards: make(map[string]SavedCard)}
}

func (s *CardStore) Save(last4, expiry, holder string) SavedCard {
	c := SavedCard{
		ID:             uuid.NewString(),
		LastFourDigits: last4,
		ExpiryDate:     expiry,
		CardholderName: holder,
		savedAt:        time.Now(),
	}
	s.mu.Lock()
	s.cards[c.ID] = c
	s.mu.Unlock()
	return c
}

func (s *CardStore) Get(id string) (SavedCard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[id]
	return c, ok
}

// All returns the saved cards, oldest first.
func (s *CardStore) All() []SavedCard {
	s.mu.RLock()
	out := make([]SavedCard, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].savedAt.Equal(out[j].savedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].savedAt.Before(out[j].savedAt)
	})
	return out
}

// Delete removes a card; deleting an unknown id is not an error.
func (s *CardStore) Delete(id string) {
	s.mu.Lock()
	delete(s.cards, id)
	s.mu.Unlock()
}

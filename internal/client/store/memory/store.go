// Package memory provides the in-memory ClientStore used in tests and in
// deployments without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"clientele/internal/client/models"
	id "clientele/pkg/domain"
	dErrors "clientele/pkg/domain-errors"
)

// Store keeps client records in a mutex-guarded map. Each call is atomic:
// Persist swaps the whole record under the lock, so readers never observe
// a partially-written client.
type Store struct {
	mu      sync.RWMutex
	clients map[id.ClientID]models.Client
}

// New creates an empty store.
func New() *Store {
	return &Store{clients: make(map[id.ClientID]models.Client)}
}

// List returns every record, ordered by surname then given name.
func (s *Store) List(ctx context.Context) ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Surname != out[j].Surname {
			return out[i].Surname < out[j].Surname
		}
		return out[i].GivenName < out[j].GivenName
	})
	return out, nil
}

// Find returns the record for the id, or a not-found error.
func (s *Store) Find(ctx context.Context, clientID id.ClientID) (models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[clientID]
	if !ok {
		return models.Client{}, dErrors.New(dErrors.CodeNotFound, "client not found")
	}
	return c, nil
}

// Persist stores the record, replacing any prior version wholesale.
func (s *Store) Persist(ctx context.Context, c models.Client) (models.Client, error) {
	if c.ID.IsNil() {
		return models.Client{}, dErrors.New(dErrors.CodeInvalidInput, "client id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
	return c, nil
}

// Delete removes the record. Deleting an absent id is a no-op.
func (s *Store) Delete(ctx context.Context, clientID id.ClientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, clientID)
	return nil
}

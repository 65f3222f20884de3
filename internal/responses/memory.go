package responses

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps responses in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	responses map[uuid.UUID]Response
	tallies   map[string]map[string]*Tally
	now       func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		responses: make(map[uuid.UUID]Response),
		tallies:   make(map[string]map[string]*Tally),
		now:       time.Now,
	}
}

func (s *MemoryStore) Record(_ context.Context, response Response) (Response, error) {
	response = prepare(response, s.now)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.responses[response.ID]; exists {
		return Response{}, fmt.Errorf("responses: duplicate id %s", response.ID)
	}
	s.responses[response.ID] = response

	byQuestion := s.tallies[response.Form]
	if byQuestion == nil {
		byQuestion = make(map[string]*Tally)
		s.tallies[response.Form] = byQuestion
	}
	for question, answer := range response.Answers {
		value, ok := answer.(bool)
		if !ok {
			continue
		}
		tally := byQuestion[question]
		if tally == nil {
			tally = &Tally{Question: question}
			byQuestion[question] = tally
		}
		if value {
			tally.Yes++
		} else {
			tally.No++
		}
	}
	return response, nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	response, ok := s.responses[id]
	if !ok {
		return Response{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	response.Answers = maps.Clone(response.Answers)
	return response, nil
}

func (s *MemoryStore) Tallies(_ context.Context, form string) ([]Tally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortTallies(s.tallies[form]), nil
}

func (s *MemoryStore) Close() error { return nil }

// Package responses records validated survey answers and aggregates yes/no
// tallies per question.
package responses

import (
	"context"
	"errors"
	"maps"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a response id is unknown.
var ErrNotFound = errors.New("responses: not found")

// Response is one accepted submission.
type Response struct {
	ID        uuid.UUID      `json:"id"`
	Form      string         `json:"form"`
	Answers   map[string]any `json:"answers"`
	CreatedAt time.Time      `json:"created_at"`
}

// Tally counts the yes and no answers given to one question.
type Tally struct {
	Question string `json:"question"`
	Yes      int    `json:"yes"`
	No       int    `json:"no"`
}

// Total is Yes plus No.
func (t Tally) Total() int { return t.Yes + t.No }

// Store persists responses.
type Store interface {
	// Record assigns an id and timestamp when missing and stores the response.
	Record(ctx context.Context, response Response) (Response, error)
	Get(ctx context.Context, id uuid.UUID) (Response, error)
	// Tallies returns one entry per boolean question of form, sorted by name.
	Tallies(ctx context.Context, form string) ([]Tally, error)
	Close() error
}

func prepare(response Response, now func() time.Time) Response {
	if response.ID == uuid.Nil {
		response.ID = uuid.New()
	}
	if response.CreatedAt.IsZero() {
		response.CreatedAt = now().UTC()
	}
	response.Answers = maps.Clone(response.Answers)
	return response
}

func sortTallies(byQuestion map[string]*Tally) []Tally {
	out := make([]Tally, 0, len(byQuestion))
	for _, tally := range byQuestion {
		out = append(out, *tally)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Question < out[j].Question })
	return out
}

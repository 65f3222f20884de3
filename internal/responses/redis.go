package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "formsite:"

var errDuplicateID = errors.New("duplicate id")

// RedisStore keeps responses as JSON strings and tallies as hashes.
type RedisStore struct {
	client *backend.Client
	prefix string
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore connects to addr.
func NewRedisStore(addr string, opts ...RedisOption) *RedisStore {
	return NewRedisStoreFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	store := &RedisStore{
		client: client,
		prefix: defaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *RedisStore) responseKey(id uuid.UUID) string {
	return s.prefix + "response:" + id.String()
}

func (s *RedisStore) tallyKey(form, answer string) string {
	return s.prefix + "tally:" + form + ":" + answer
}

func (s *RedisStore) indexKey(form string) string {
	return s.prefix + "responses:" + form
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("responses: redis ping: %w", err)
	}
	return nil
}

// Record writes the response, its index entry and its tallies in one
// MULTI/EXEC under WATCH of the response key. Redis does not roll back a
// partially failed EXEC, so the response key is removed again on failure.
func (s *RedisStore) Record(ctx context.Context, response Response) (Response, error) {
	response = prepare(response, s.now)
	data, err := json.Marshal(response)
	if err != nil {
		return Response{}, fmt.Errorf("responses: marshal: %w", err)
	}

	key := s.responseKey(response.ID)
	var execErr error
	err = s.client.Watch(ctx, func(tx *backend.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return errDuplicateID
		}
		_, execErr = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			s.queueTallies(ctx, pipe, response)
			return nil
		})
		return execErr
	}, key)

	switch {
	case err == nil:
		return response, nil
	case errors.Is(err, errDuplicateID), errors.Is(err, backend.TxFailedErr):
		return Response{}, fmt.Errorf("responses: duplicate id %s", response.ID)
	case execErr != nil:
		return Response{}, fmt.Errorf("responses: save to redis: %w", errors.Join(err, s.client.Del(ctx, key).Err()))
	default:
		return Response{}, fmt.Errorf("responses: save to redis: %w", err)
	}
}

func (s *RedisStore) queueTallies(ctx context.Context, pipe backend.Pipeliner, response Response) {
	pipe.ZAdd(ctx, s.indexKey(response.Form), backend.Z{
		Score:  float64(response.CreatedAt.Unix()),
		Member: response.ID.String(),
	})
	for question, answer := range response.Answers {
		value, ok := answer.(bool)
		if !ok {
			continue
		}
		key := s.tallyKey(response.Form, "no")
		if value {
			key = s.tallyKey(response.Form, "yes")
		}
		pipe.HIncrBy(ctx, key, question, 1)
		// Keep both hashes aware of the question so a zero count still shows.
		pipe.HSetNX(ctx, s.tallyKey(response.Form, "yes"), question, 0)
		pipe.HSetNX(ctx, s.tallyKey(response.Form, "no"), question, 0)
	}
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (Response, error) {
	data, err := s.client.Get(ctx, s.responseKey(id)).Bytes()
	if errors.Is(err, backend.Nil) {
		return Response{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Response{}, fmt.Errorf("responses: load from redis: %w", err)
	}
	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, fmt.Errorf("responses: unmarshal: %w", err)
	}
	return response, nil
}

func (s *RedisStore) Tallies(ctx context.Context, form string) ([]Tally, error) {
	yes, err := s.client.HGetAll(ctx, s.tallyKey(form, "yes")).Result()
	if err != nil {
		return nil, fmt.Errorf("responses: load tallies: %w", err)
	}
	no, err := s.client.HGetAll(ctx, s.tallyKey(form, "no")).Result()
	if err != nil {
		return nil, fmt.Errorf("responses: load tallies: %w", err)
	}

	byQuestion := make(map[string]*Tally, len(yes))
	add := func(counts map[string]string, apply func(*Tally, int)) error {
		for question, raw := range counts {
			count, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("responses: tally %q: %w", question, err)
			}
			tally := byQuestion[question]
			if tally == nil {
				tally = &Tally{Question: question}
				byQuestion[question] = tally
			}
			apply(tally, count)
		}
		return nil
	}
	if err := add(yes, func(t *Tally, n int) { t.Yes = n }); err != nil {
		return nil, err
	}
	if err := add(no, func(t *Tally, n int) { t.No = n }); err != nil {
		return nil, err
	}
	return sortTallies(byQuestion), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/medisetu/medisetu_backend/wizard"
)

var ErrDraftNotFound = errors.New("draft not found")

// Draft lifetime. The TTL slides on every save, standing in for the browser
// session: an untouched draft disappears after a day.
const draftTTL = 24 * time.Hour

// DraftStore keeps one signup draft per (session, role). Expired drafts read
// as not found and the wizard starts fresh.
type DraftStore interface {
	Get(ctx context.Context, session string, role wizard.Role) (*wizard.Draft, error)
	Save(ctx context.Context, draft *wizard.Draft) error
	Delete(ctx context.Context, session string, role wizard.Role) error
}

func draftKey(session string, role wizard.Role) string {
	return fmt.Sprintf("signup_draft:%s:%s", session, role)
}

// RedisDraftStore is the production store.
type RedisDraftStore struct {
	client *redis.Client
}

func NewRedisDraftStore(client *redis.Client) *RedisDraftStore {
	return &RedisDraftStore{client: client}
}

func (s *RedisDraftStore) Get(ctx context.Context, session string, role wizard.Role) (*wizard.Draft, error) {
	raw, err := s.client.Get(ctx, draftKey(session, role)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var draft wizard.Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("corrupt draft record: %w", err)
	}
	return &draft, nil
}

func (s *RedisDraftStore) Save(ctx context.Context, draft *wizard.Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(draft.Session, draft.Role), raw, draftTTL).Err()
}

func (s *RedisDraftStore) Delete(ctx context.Context, session string, role wizard.Role) error {
	return s.client.Del(ctx, draftKey(session, role)).Err()
}

// MemoryDraftStore backs local development without Redis and the handler
// tests.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[string]*wizard.Draft
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]*wizard.Draft)}
}

func (s *MemoryDraftStore) Get(ctx context.Context, session string, role wizard.Role) (*wizard.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[draftKey(session, role)]
	if !ok {
		return nil, ErrDraftNotFound
	}
	// Round-trip through JSON so callers never share state with the store.
	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	var copy wizard.Draft
	if err := json.Unmarshal(raw, &copy); err != nil {
		return nil, err
	}
	return &copy, nil
}

func (s *MemoryDraftStore) Save(ctx context.Context, draft *wizard.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draftKey(draft.Session, draft.Role)] = draft
	return nil
}

func (s *MemoryDraftStore) Delete(ctx context.Context, session string, role wizard.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftKey(session, role))
	return nil
}

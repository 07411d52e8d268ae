package repo

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/officeflow-core-poc/server/internal/agent/model"
	errx "github.com/officeflow-core-poc/server/internal/core/error"
)

// MemorySessionStore is an in-process SessionStore for tests and local runs
// without Redis. States round-trip through JSON so it surfaces the same
// serialization behavior as the Redis store.
type MemorySessionStore struct {
	mu       sync.Mutex
	states   map[string][]byte
	messages map[string][]*schema.Message
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		states:   make(map[string][]byte),
		messages: make(map[string][]*schema.Message),
	}
}

var _ model.SessionStore = (*MemorySessionStore)(nil)

func (m *MemorySessionStore) SaveState(ctx context.Context, state *model.ConversationState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.states[state.ThreadID] = b
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) LoadState(ctx context.Context, threadID string) (*model.ConversationState, error) {
	m.mu.Lock()
	b, ok := m.states[threadID]
	m.mu.Unlock()
	if !ok {
		return nil, errx.ErrThreadNotFound
	}
	var state model.ConversationState
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *MemorySessionStore) AppendMessage(ctx context.Context, threadID string, message *schema.Message) error {
	m.mu.Lock()
	m.messages[threadID] = append(m.messages[threadID], message)
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) LoadMessages(ctx context.Context, threadID string) ([]*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := make([]*schema.Message, len(m.messages[threadID]))
	copy(msgs, m.messages[threadID])
	return msgs, nil
}

func (m *MemorySessionStore) DeleteThread(ctx context.Context, threadID string) error {
	m.mu.Lock()
	delete(m.states, threadID)
	delete(m.messages, threadID)
	m.mu.Unlock()
	return nil
}

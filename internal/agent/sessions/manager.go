// Package sessions owns thread identity and the multi-turn slot-filling
// session discipline: which thread a user+channel is currently on, which
// threads have a live suspend, and the scenario lock that keeps a partially
// filled scenario pinned across turns.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/officeflow-core-poc/server/internal/agent/model"
	errx "github.com/officeflow-core-poc/server/internal/core/error"
	logx "github.com/officeflow-core-poc/server/pkg/logger"
)

type Manager struct {
	store   model.SessionStore
	timeout time.Duration

	mu          sync.Mutex
	userThreads map[string]string // user+channel key -> current thread ID
	suspended   map[string]bool   // thread ID -> live suspend
	threadLocks map[string]*sync.Mutex
}

func NewManager(store model.SessionStore, sessionTimeout time.Duration) *Manager {
	return &Manager{
		store:       store,
		timeout:     sessionTimeout,
		userThreads: make(map[string]string),
		suspended:   make(map[string]bool),
		threadLocks: make(map[string]*sync.Mutex),
	}
}

// Timeout returns the configured scenario-lock expiry window.
func (m *Manager) Timeout() time.Duration { return m.timeout }

// Acquire serializes all engine calls for one thread. Callers are expected to
// drive a thread from a single goroutine; this mutex is defense, not a license
// for concurrent drivers.
func (m *Manager) Acquire(threadID string) func() {
	m.mu.Lock()
	lock, ok := m.threadLocks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		m.threadLocks[threadID] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// MarkSuspended records that a thread has a live suspend point.
func (m *Manager) MarkSuspended(threadID string) {
	m.mu.Lock()
	m.suspended[threadID] = true
	m.mu.Unlock()
}

// ClearSuspended removes the live-suspend mark for a thread.
func (m *Manager) ClearSuspended(threadID string) {
	m.mu.Lock()
	delete(m.suspended, threadID)
	m.mu.Unlock()
}

// HasLiveSuspend reports whether a thread is waiting on an out-of-band decision.
func (m *Manager) HasLiveSuspend(threadID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suspended[threadID]
}

// Forget drops all bookkeeping for a thread (used by Reset).
func (m *Manager) Forget(threadID string) {
	m.mu.Lock()
	delete(m.suspended, threadID)
	delete(m.threadLocks, threadID)
	for key, id := range m.userThreads {
		if id == threadID {
			delete(m.userThreads, key)
		}
	}
	m.mu.Unlock()
}

// ThreadFor resolves the thread a user+channel key should converse on.
// It reuses the current thread while it is suspended or holds an unexpired
// scenario lock, and mints a fresh thread once the previous one completed or
// timed out. Threads are never deleted here, only superseded.
func (m *Manager) ThreadFor(ctx context.Context, userChannelKey string) (string, error) {
	m.mu.Lock()
	current, ok := m.userThreads[userChannelKey]
	m.mu.Unlock()

	if !ok {
		return m.mint(userChannelKey), nil
	}

	if m.HasLiveSuspend(current) {
		// A pending approval keeps the thread current; the engine will
		// reject plain Invoke calls on it with ErrApprovalPending.
		return current, nil
	}

	state, err := m.store.LoadState(ctx, current)
	if err != nil {
		if errors.Is(err, errx.ErrThreadNotFound) {
			return m.mint(userChannelKey), nil
		}
		return "", err
	}

	now := time.Now()
	switch {
	case state.Suspended():
		return current, nil
	case state.ActiveScenario != "" && !state.LockExpired(now, m.timeout):
		logx.Debug().
			Str("thread_id", current).
			Str("active_scenario", string(state.ActiveScenario)).
			Msg("reusing active multi-turn session")
		return current, nil
	case state.ActiveScenario != "":
		logx.Debug().
			Str("thread_id", current).
			Dur("age", now.Sub(state.ActiveScenarioAt)).
			Msg("session lock expired, superseding thread")
		return m.mint(userChannelKey), nil
	default:
		// Previous conversation completed.
		return m.mint(userChannelKey), nil
	}
}

func (m *Manager) mint(userChannelKey string) string {
	threadID := fmt.Sprintf("%s_%s", userChannelKey, uuid.NewString())
	m.mu.Lock()
	m.userThreads[userChannelKey] = threadID
	m.mu.Unlock()
	logx.Debug().Str("thread_id", threadID).Msg("new session thread created")
	return threadID
}

// ResolveScenario implements the lock-aware classification step. A live,
// unexpired lock bypasses the classifier entirely and pins the scenario at
// full confidence; an expired lock is cleared (including any partial record)
// before fresh classification runs.
func (m *Manager) ResolveScenario(
	ctx context.Context,
	state *model.ConversationState,
	classifier model.Classifier,
	now time.Time,
) (model.Classification, error) {
	if state.ActiveScenario != "" {
		if !state.LockExpired(now, m.timeout) {
			logx.Debug().
				Str("thread_id", state.ThreadID).
				Str("scenario", string(state.ActiveScenario)).
				Msg("scenario lock active, bypassing classifier")
			return model.Classification{Scenario: state.ActiveScenario, Confidence: 1.0}, nil
		}
		logx.Debug().
			Str("thread_id", state.ThreadID).
			Str("scenario", string(state.ActiveScenario)).
			Dur("age", now.Sub(state.ActiveScenarioAt)).
			Msg("scenario lock expired, reclassifying")
		state.Unlock()
		state.DiscardPartial()
	}

	cls, err := classifier.Classify(ctx, state.RawInput)
	if err != nil {
		return model.Classification{}, err
	}
	logx.Debug().
		Str("thread_id", state.ThreadID).
		Str("scenario", string(cls.Scenario)).
		Float64("confidence", cls.Confidence).
		Msg("intent classified")
	return cls, nil
}

// CombinedUserInput concatenates every user-authored message in history order.
// Slot values may arrive in any turn; re-extracting over the accumulated
// transcript each turn is simpler and more robust than incremental patching.
func CombinedUserInput(messages []*schema.Message) string {
	var parts []string
	for _, msg := range messages {
		if msg == nil || msg.Role != schema.User {
			continue
		}
		content := strings.TrimSpace(msg.Content)
		if content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, " ")
}

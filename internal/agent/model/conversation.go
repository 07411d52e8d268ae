package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// SessionStore is the only shared mutable resource in the engine. It is
// addressed exclusively by thread ID; the single-writer-per-thread rule is the
// entirety of its concurrency discipline.
type SessionStore interface {
	// SaveState checkpoints the full conversation state for a thread. It is
	// called before control returns to the driver whenever the workflow is
	// suspended, so Resume can re-enter without re-deriving anything.
	SaveState(ctx context.Context, state *ConversationState) error

	// LoadState retrieves the checkpointed state, or errx.ErrThreadNotFound.
	LoadState(ctx context.Context, threadID string) (*ConversationState, error)

	// AppendMessage appends to the thread's ordered message history.
	AppendMessage(ctx context.Context, threadID string, message *schema.Message) error

	// LoadMessages returns the full history in append order.
	LoadMessages(ctx context.Context, threadID string) ([]*schema.Message, error)

	// DeleteThread removes state and history for a thread.
	DeleteThread(ctx context.Context, threadID string) error
}

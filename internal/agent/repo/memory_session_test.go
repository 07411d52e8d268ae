package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/officeflow-core-poc/server/internal/agent/model"
	errx "github.com/officeflow-core-poc/server/internal/core/error"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if _, err := store.LoadState(ctx, "missing"); !errors.Is(err, errx.ErrThreadNotFound) {
		t.Fatalf("expected ErrThreadNotFound, got %v", err)
	}

	state := model.NewConversationState("t1")
	state.Scenario = model.ScenarioDelivery
	state.SuspendedAt = model.SuspendApproval
	state.AwaitingApproval = true
	state.Delivery = &model.DeliveryInfo{UnloadingSite: "삼성전자", PaymentType: model.PaymentCollect}
	if err := store.SaveState(ctx, state); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	got, err := store.LoadState(ctx, "t1")
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if got.SuspendedAt != model.SuspendApproval || !got.AwaitingApproval {
		t.Fatalf("suspend fields lost in round trip: %+v", got)
	}
	if got.Delivery == nil || got.Delivery.UnloadingSite != "삼성전자" {
		t.Fatalf("record lost in round trip: %+v", got.Delivery)
	}

	// Messages are stored separately from the state blob.
	if err := store.AppendMessage(ctx, "t1", schema.UserMessage("hello")); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	msgs, err := store.LoadMessages(ctx, "t1")
	if err != nil {
		t.Fatalf("LoadMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "hello" {
		t.Fatalf("messages = %+v", msgs)
	}

	if err := store.DeleteThread(ctx, "t1"); err != nil {
		t.Fatalf("DeleteThread: %v", err)
	}
	if _, err := store.LoadState(ctx, "t1"); !errors.Is(err, errx.ErrThreadNotFound) {
		t.Fatalf("expected ErrThreadNotFound after delete, got %v", err)
	}
	if msgs, _ := store.LoadMessages(ctx, "t1"); len(msgs) != 0 {
		t.Fatalf("messages should be gone after delete, got %d", len(msgs))
	}
}

package sessions

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/officeflow-core-poc/server/internal/agent/model"
	"github.com/officeflow-core-poc/server/internal/agent/repo"
)

type fakeClassifier struct {
	result model.Classification
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (model.Classification, error) {
	f.calls++
	return f.result, nil
}

func TestCombinedUserInput(t *testing.T) {
	msgs := []*schema.Message{
		schema.UserMessage("호깅텍 경기도 김포시 양촌읍 선불"),
		schema.AssistantMessage("연락처가 누락되었습니다", nil),
		schema.UserMessage("01071152853"),
	}
	got := CombinedUserInput(msgs)
	want := "호깅텍 경기도 김포시 양촌읍 선불 01071152853"
	if got != want {
		t.Fatalf("CombinedUserInput = %q, want %q", got, want)
	}
}

func TestCombinedUserInputSkipsEmptyAndNil(t *testing.T) {
	msgs := []*schema.Message{
		nil,
		schema.UserMessage("  "),
		schema.UserMessage("a"),
	}
	if got := CombinedUserInput(msgs); got != "a" {
		t.Fatalf("CombinedUserInput = %q, want %q", got, "a")
	}
}

func TestResolveScenarioLockBypassesClassifier(t *testing.T) {
	mgr := NewManager(repo.NewMemorySessionStore(), 5*time.Minute)
	cls := &fakeClassifier{result: model.Classification{Scenario: model.ScenarioHelp, Confidence: 0.9}}

	state := model.NewConversationState("t1")
	state.Lock(model.ScenarioDelivery, time.Now())

	got, err := mgr.ResolveScenario(context.Background(), state, cls, time.Now())
	if err != nil {
		t.Fatalf("ResolveScenario: %v", err)
	}
	if got.Scenario != model.ScenarioDelivery || got.Confidence != 1.0 {
		t.Fatalf("locked state must pin scenario at full confidence, got %+v", got)
	}
	if cls.calls != 0 {
		t.Fatalf("classifier must not be called while locked, calls = %d", cls.calls)
	}
}

func TestResolveScenarioExpiredLockReclassifies(t *testing.T) {
	mgr := NewManager(repo.NewMemorySessionStore(), 5*time.Minute)
	cls := &fakeClassifier{result: model.Classification{Scenario: model.ScenarioMetalCalc, Confidence: 0.8}}

	state := model.NewConversationState("t1")
	state.Lock(model.ScenarioDelivery, time.Now().Add(-10*time.Minute))
	state.Delivery = &model.DeliveryInfo{UnloadingSite: "partial"}
	state.ParsingError = "주소가 누락되었습니다"
	state.RawInput = "원파이프 50x3t 6m 10개"

	got, err := mgr.ResolveScenario(context.Background(), state, cls, time.Now())
	if err != nil {
		t.Fatalf("ResolveScenario: %v", err)
	}
	if got.Scenario != model.ScenarioMetalCalc {
		t.Fatalf("expired lock must reclassify, got %+v", got)
	}
	if cls.calls != 1 {
		t.Fatalf("classifier calls = %d, want 1", cls.calls)
	}
	if state.ActiveScenario != "" {
		t.Fatalf("expired lock must be cleared")
	}
	if state.Delivery != nil || state.ParsingError != "" {
		t.Fatalf("expired lock must discard the partial record")
	}
}

func TestThreadForMintsAndReuses(t *testing.T) {
	store := repo.NewMemorySessionStore()
	mgr := NewManager(store, 5*time.Minute)
	ctx := context.Background()

	t1, err := mgr.ThreadFor(ctx, "user_chan")
	if err != nil {
		t.Fatalf("ThreadFor: %v", err)
	}
	if !strings.HasPrefix(t1, "user_chan_") {
		t.Fatalf("thread ID %q should embed the user+channel key", t1)
	}

	// No state saved yet: the next call supersedes the unknown thread.
	t2, err := mgr.ThreadFor(ctx, "user_chan")
	if err != nil {
		t.Fatalf("ThreadFor: %v", err)
	}

	// An active lock keeps the thread current.
	state := model.NewConversationState(t2)
	state.Lock(model.ScenarioDelivery, time.Now())
	if err := store.SaveState(ctx, state); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	t3, err := mgr.ThreadFor(ctx, "user_chan")
	if err != nil {
		t.Fatalf("ThreadFor: %v", err)
	}
	if t3 != t2 {
		t.Fatalf("locked session should reuse thread %q, got %q", t2, t3)
	}

	// A completed conversation is superseded.
	state.Unlock()
	if err := store.SaveState(ctx, state); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	t4, err := mgr.ThreadFor(ctx, "user_chan")
	if err != nil {
		t.Fatalf("ThreadFor: %v", err)
	}
	if t4 == t3 {
		t.Fatalf("completed session must mint a fresh thread")
	}
}

func TestThreadForReusesLiveSuspend(t *testing.T) {
	store := repo.NewMemorySessionStore()
	mgr := NewManager(store, 5*time.Minute)
	ctx := context.Background()

	t1, err := mgr.ThreadFor(ctx, "u")
	if err != nil {
		t.Fatalf("ThreadFor: %v", err)
	}
	mgr.MarkSuspended(t1)

	t2, err := mgr.ThreadFor(ctx, "u")
	if err != nil {
		t.Fatalf("ThreadFor: %v", err)
	}
	if t2 != t1 {
		t.Fatalf("live suspend should pin the thread, got %q want %q", t2, t1)
	}

	mgr.ClearSuspended(t1)
	t3, err := mgr.ThreadFor(ctx, "u")
	if err != nil {
		t.Fatalf("ThreadFor: %v", err)
	}
	if t3 == t1 {
		t.Fatalf("cleared suspend with no state should mint a fresh thread")
	}
}

func TestThreadForExpiredLockSupersedes(t *testing.T) {
	store := repo.NewMemorySessionStore()
	mgr := NewManager(store, time.Minute)
	ctx := context.Background()

	t1, err := mgr.ThreadFor(ctx, "u")
	if err != nil {
		t.Fatalf("ThreadFor: %v", err)
	}
	state := model.NewConversationState(t1)
	state.Lock(model.ScenarioProductOrder, time.Now().Add(-2*time.Minute))
	if err := store.SaveState(ctx, state); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	t2, err := mgr.ThreadFor(ctx, "u")
	if err != nil {
		t.Fatalf("ThreadFor: %v", err)
	}
	if t2 == t1 {
		t.Fatalf("expired lock must supersede the thread")
	}
}

func TestAcquireSerializesPerThread(t *testing.T) {
	mgr := NewManager(repo.NewMemorySessionStore(), time.Minute)

	unlock := mgr.Acquire("t1")
	done := make(chan struct{})
	go func() {
		u := mgr.Acquire("t1")
		u()
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("second Acquire must block while the first holds the lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("second Acquire should proceed after release")
	}
}

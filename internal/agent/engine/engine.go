// Package engine drives the classify → parse → approve → act conversation
// state machine. One Engine serves many threads; all mutation for a thread
// happens under its per-thread lock, and state is checkpointed to the session
// store before control returns to the driver.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/officeflow-core-poc/server/internal/agent/engine/scenarios"
	"github.com/officeflow-core-poc/server/internal/agent/model"
	"github.com/officeflow-core-poc/server/internal/agent/sessions"
	errx "github.com/officeflow-core-poc/server/internal/core/error"
	logx "github.com/officeflow-core-poc/server/pkg/logger"
)

// TurnResult is what one Invoke/Resume call hands back to the driver: the
// messages to show the user and, when suspended, the prompt to answer.
type TurnResult struct {
	ThreadID string
	Scenario model.Scenario

	// Messages to present, in order.
	Messages []string

	// Suspended reports whether the thread now waits on an out-of-band input
	// (an approval decision or an image upload).
	Suspended   bool
	SuspendedAt model.SuspendPoint
	// Prompt is the question to present when Suspended is true.
	Prompt string
}

// Engine is the top-level conversation orchestrator.
type Engine struct {
	store      model.SessionStore
	sessions   *sessions.Manager
	classifier model.Classifier
	workflows  map[model.Scenario]scenarios.Workflow
}

// New assembles an engine over its collaborators. env carries the external
// side-effect ports shared by the scenario workflows.
func New(store model.SessionStore, mgr *sessions.Manager, classifier model.Classifier, env *scenarios.Env) *Engine {
	flows := []scenarios.Workflow{
		scenarios.NewDelivery(env),
		scenarios.NewProductOrder(env),
		scenarios.NewMetalCalc(env),
		scenarios.NewRegistration(env),
	}
	byScenario := make(map[model.Scenario]scenarios.Workflow, len(flows))
	for _, f := range flows {
		byScenario[f.Scenario()] = f
	}
	return &Engine{
		store:      store,
		sessions:   mgr,
		classifier: classifier,
		workflows:  byScenario,
	}
}

const helpMessage = `🤖 **사무 자동화 봇 사용법**

다음 업무를 도와드릴 수 있습니다:

1. **운송장 생성**: 하차지, 주소, 연락처, 지불방법(착불/선불)을 입력해주세요.
   예) ` + "`(주)삼성전자 서울시 강남구 테헤란로 123 010-1234-5678 착불 35000원`" + `
2. **거래명세서 생성**: 거래처, 품목, 수량, 단가를 입력해주세요.
   예) ` + "`(주)한국상사 알루미늄 각파이프 100개 5000원`" + `
3. **금속 단가 계산**: 형상, 치수, 길이, 수량을 입력해주세요.
   예) ` + "`원파이프 50x3t 6m 10개 kg당 5000원`" + `
4. **거래처 등록**: "거래처 등록"이라고 말한 뒤 사업자등록증 이미지를 업로드해주세요.`

// ThreadFor resolves the conversation thread for a user+channel key,
// reusing the live session when one is suspended or lock-pinned.
func (e *Engine) ThreadFor(ctx context.Context, userChannelKey string) (string, error) {
	return e.sessions.ThreadFor(ctx, userChannelKey)
}

// Invoke feeds one user input (a text message or an image URL) into a thread.
// A thread parked on an approval gate rejects plain input with
// errx.ErrApprovalPending and stays unchanged; a thread waiting for an image
// accepts it here.
func (e *Engine) Invoke(ctx context.Context, threadID, input string, kind model.InputKind) (*TurnResult, error) {
	unlock := e.sessions.Acquire(threadID)
	defer unlock()

	state, err := e.loadOrInit(ctx, threadID)
	if err != nil {
		return nil, err
	}

	if state.Suspended() && state.SuspendedAt != model.SuspendWaitForImage {
		return nil, errx.ErrApprovalPending
	}

	state.RawInput = input
	state.InputKind = kind
	if err := e.store.AppendMessage(ctx, threadID, &schema.Message{Role: schema.User, Content: input}); err != nil {
		return nil, err
	}
	messages, err := e.store.LoadMessages(ctx, threadID)
	if err != nil {
		return nil, err
	}
	state.Messages = messages

	if state.SuspendedAt == model.SuspendWaitForImage {
		if kind != model.InputImage && state.LockExpired(time.Now(), e.sessions.Timeout()) {
			// The upload request aged out with its session lock; treat this
			// as a fresh conversation.
			state.Unlock()
			state.DiscardPartial()
			state.SuspendedAt = model.SuspendNone
			e.sessions.ClearSuspended(state.ThreadID)
		} else {
			// The image wait resumes through Invoke, not through a decision.
			outcome, err := e.workflows[model.ScenarioRegistration].Run(ctx, state, sessions.CombinedUserInput(messages))
			if err != nil {
				return nil, err
			}
			return e.finish(ctx, state, outcome)
		}
	}

	cls, err := e.sessions.ResolveScenario(ctx, state, e.classifier, time.Now())
	if err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("intent classification failed")
		outcome := &scenarios.Outcome{Messages: []string{
			"⚠️ 입력을 처리하지 못했습니다. 잠시 후 다시 시도해주세요.",
		}}
		state.CurrentStep = model.StepError
		return e.finish(ctx, state, outcome)
	}
	state.Scenario = cls.Scenario
	state.Confidence = cls.Confidence

	if cls.Scenario == model.ScenarioHelp {
		state.CurrentStep = model.StepHelp
		return e.finish(ctx, state, &scenarios.Outcome{Messages: []string{helpMessage}})
	}

	workflow, ok := e.workflows[cls.Scenario]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errx.ErrUnknownScenario, cls.Scenario)
	}

	outcome, err := workflow.Run(ctx, state, sessions.CombinedUserInput(messages))
	if err != nil {
		return nil, err
	}
	return e.finish(ctx, state, outcome)
}

// Resume answers the thread's outstanding approval prompt. Calling it on a
// thread with no pending approval fails with errx.ErrNoPendingApproval and
// leaves the state untouched. A resume may itself suspend again (document
// scenarios chain the print gate after the primary approval).
func (e *Engine) Resume(ctx context.Context, threadID string, decision model.Decision, rejectMessage string) (*TurnResult, error) {
	unlock := e.sessions.Acquire(threadID)
	defer unlock()

	state, err := e.store.LoadState(ctx, threadID)
	if err != nil {
		return nil, err
	}

	switch state.SuspendedAt {
	case model.SuspendApproval:
		state.ApprovalDecision = decision
		if decision == model.DecisionReject {
			state.RejectMessage = rejectMessage
		}
	case model.SuspendPrintApproval:
		state.PrintApprovalDecision = decision
	default:
		// Includes the image wait: an upload is input, not a decision.
		return nil, errx.ErrNoPendingApproval
	}

	workflow, ok := e.workflows[state.Scenario]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errx.ErrUnknownScenario, state.Scenario)
	}

	outcome, err := workflow.Resume(ctx, state)
	if err != nil {
		return nil, err
	}
	return e.finish(ctx, state, outcome)
}

// ResumeWithEdits splices field edits over the record awaiting primary
// approval, then approves. Sentinel values ("", "none", "n/a", "없음") leave
// a field unchanged. A bad edit value surfaces in-band and the approval stays
// pending.
func (e *Engine) ResumeWithEdits(ctx context.Context, threadID string, edits map[string]string) (*TurnResult, error) {
	unlock := e.sessions.Acquire(threadID)
	defer unlock()

	state, err := e.store.LoadState(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if state.SuspendedAt != model.SuspendApproval {
		return nil, errx.ErrNoPendingApproval
	}

	if err := applyEdits(state, edits); err != nil {
		logx.Debug().Err(err).Str("thread_id", threadID).Msg("edit rejected, approval still pending")
		if saveErr := e.store.SaveState(ctx, state); saveErr != nil {
			return nil, saveErr
		}
		return &TurnResult{
			ThreadID:    threadID,
			Scenario:    state.Scenario,
			Messages:    []string{fmt.Sprintf("❌ 수정할 수 없습니다: %v\n\n다시 입력해주세요.", err)},
			Suspended:   true,
			SuspendedAt: state.SuspendedAt,
			Prompt:      state.ApprovalMessage,
		}, nil
	}

	state.ApprovalDecision = model.DecisionApprove

	workflow, ok := e.workflows[state.Scenario]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errx.ErrUnknownScenario, state.Scenario)
	}
	outcome, err := workflow.Resume(ctx, state)
	if err != nil {
		return nil, err
	}
	return e.finish(ctx, state, outcome)
}

// GetState returns the checkpointed state for inspection.
func (e *Engine) GetState(ctx context.Context, threadID string) (*model.ConversationState, error) {
	return e.store.LoadState(ctx, threadID)
}

// Reset discards a thread entirely: state, history, and session bookkeeping.
func (e *Engine) Reset(ctx context.Context, threadID string) error {
	unlock := e.sessions.Acquire(threadID)
	defer unlock()

	if err := e.store.DeleteThread(ctx, threadID); err != nil {
		return err
	}
	e.sessions.Forget(threadID)
	logx.Info().Str("thread_id", threadID).Msg("thread reset")
	return nil
}

func (e *Engine) loadOrInit(ctx context.Context, threadID string) (*model.ConversationState, error) {
	state, err := e.store.LoadState(ctx, threadID)
	if err == nil {
		return state, nil
	}
	if errors.Is(err, errx.ErrThreadNotFound) {
		return model.NewConversationState(threadID), nil
	}
	return nil, err
}

// finish checkpoints the state, records assistant messages, and maintains the
// live-suspend mark. Every externally visible turn goes through here.
func (e *Engine) finish(ctx context.Context, state *model.ConversationState, outcome *scenarios.Outcome) (*TurnResult, error) {
	if err := e.store.SaveState(ctx, state); err != nil {
		return nil, err
	}
	for _, msg := range outcome.Messages {
		if err := e.store.AppendMessage(ctx, state.ThreadID, &schema.Message{Role: schema.Assistant, Content: msg}); err != nil {
			return nil, err
		}
	}
	if outcome.Suspended && outcome.Prompt != "" {
		if err := e.store.AppendMessage(ctx, state.ThreadID, &schema.Message{Role: schema.Assistant, Content: outcome.Prompt}); err != nil {
			return nil, err
		}
	}

	if outcome.Suspended {
		e.sessions.MarkSuspended(state.ThreadID)
	} else {
		e.sessions.ClearSuspended(state.ThreadID)
	}

	return &TurnResult{
		ThreadID:    state.ThreadID,
		Scenario:    state.Scenario,
		Messages:    outcome.Messages,
		Suspended:   outcome.Suspended,
		SuspendedAt: outcome.SuspendedAt,
		Prompt:      outcome.Prompt,
	}, nil
}

// applyEdits routes edits to the record awaiting approval.
func applyEdits(state *model.ConversationState, edits map[string]string) error {
	switch state.Scenario {
	case model.ScenarioDelivery:
		if state.Delivery == nil {
			return fmt.Errorf("no delivery record to edit")
		}
		return state.Delivery.ApplyEdits(edits)
	case model.ScenarioProductOrder:
		if state.ProductOrder == nil {
			return fmt.Errorf("no product order record to edit")
		}
		return state.ProductOrder.ApplyEdits(edits)
	case model.ScenarioRegistration:
		if state.Registration == nil {
			return fmt.Errorf("no registration record to edit")
		}
		return state.Registration.ApplyEdits(edits)
	default:
		return fmt.Errorf("scenario %q has no editable record", state.Scenario)
	}
}

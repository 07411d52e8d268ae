// Package scenarios implements the per-scenario sub-workflow state machines:
// Parse → {FormatApproval | Retry}; FormatApproval → Approval (suspend);
// Approval → {Act | Done}; Act → Done, with the document scenarios chaining a
// second, independently tracked print-approval gate inside Act.
package scenarios

import (
	"context"

	"github.com/officeflow-core-poc/server/internal/agent/model"
	logx "github.com/officeflow-core-poc/server/pkg/logger"
)

// Env bundles the external collaborators shared by all workflows.
type Env struct {
	Extractor     model.Extractor
	Renderer      model.DocumentRenderer
	Printer       model.Printer
	Registrations model.RegistrationRepository

	// DefaultLoadingSite fills the delivery loading site when the input
	// names none.
	DefaultLoadingSite string
}

// Outcome is the result of driving a workflow one step: either terminal for
// this invocation (Suspended false) or parked at a suspend point waiting for
// an out-of-band decision.
type Outcome struct {
	// Messages are the user-facing messages emitted by this step, in order.
	Messages []string
	// Suspended reports whether the workflow parked at a suspend point.
	Suspended bool
	// SuspendedAt names the suspend point when Suspended is true.
	SuspendedAt model.SuspendPoint
	// Prompt is the approval/upload prompt to present when suspended.
	Prompt string
}

// Workflow is one scenario sub-workflow. Run enters at Parse (or the
// scenario's initial suspend) with the accumulated user input; Resume
// re-enters at the state's recorded suspend point after a decision has been
// written into the corresponding channel.
type Workflow interface {
	Scenario() model.Scenario
	Run(ctx context.Context, state *model.ConversationState, combinedInput string) (*Outcome, error)
	Resume(ctx context.Context, state *model.ConversationState) (*Outcome, error)
}

const (
	defaultRejectMessage = "사용자가 거절했습니다."
	parseInfraMessage    = "⚠️ 입력을 처리하지 못했습니다. 잠시 후 다시 시도해주세요."
)

// done marks the conversation complete and returns a terminal outcome.
func done(state *model.ConversationState, messages ...string) *Outcome {
	state.CurrentStep = model.StepComplete
	return &Outcome{Messages: messages}
}

// suspend parks the state at a suspend point and returns the prompt outcome.
func suspend(state *model.ConversationState, at model.SuspendPoint, prompt string, messages ...string) *Outcome {
	state.SuspendedAt = at
	return &Outcome{
		Messages:    messages,
		Suspended:   true,
		SuspendedAt: at,
		Prompt:      prompt,
	}
}

// consumeApproval reads and clears the primary approval channel. The empty
// decision branch should be unreachable under correct driving; it is kept as
// a defensive fallback and logged when hit.
func consumeApproval(state *model.ConversationState) model.Decision {
	decision := state.ApprovalDecision
	state.AwaitingApproval = false
	state.ApprovalDecision = ""
	state.SuspendedAt = model.SuspendNone
	if decision == "" {
		logx.Warn().
			Str("thread_id", state.ThreadID).
			Str("scenario", string(state.Scenario)).
			Msg("approval node reached without decision")
	}
	return decision
}

// consumePrintApproval reads and clears the print approval channel.
func consumePrintApproval(state *model.ConversationState) model.Decision {
	decision := state.PrintApprovalDecision
	state.AwaitingPrintApproval = false
	state.PrintApprovalDecision = ""
	state.SuspendedAt = model.SuspendNone
	if decision == "" {
		logx.Warn().
			Str("thread_id", state.ThreadID).
			Str("scenario", string(state.Scenario)).
			Msg("print approval node reached without decision")
	}
	return decision
}

// rejectMessageOr returns the recorded reject message or the default text.
func rejectMessageOr(state *model.ConversationState) string {
	if state.RejectMessage != "" {
		return state.RejectMessage
	}
	return defaultRejectMessage
}

// finishPrint runs the print step after the print gate resolves. Print
// failures are fail-soft: they surface in-band and never corrupt state.
func finishPrint(ctx context.Context, printer model.Printer, state *model.ConversationState, subject string) *Outcome {
	decision := consumePrintApproval(state)

	switch decision {
	case model.DecisionApprove:
		if err := printer.Send(ctx, state.PDFPath, subject); err != nil {
			logx.Error().Err(err).
				Str("thread_id", state.ThreadID).
				Str("pdf_path", state.PDFPath).
				Msg("printer dispatch failed")
			state.PrintStatus = model.PrintFailed
			return done(state, "❌ 인쇄 요청에 실패했습니다. 프린터 상태를 확인해주세요.")
		}
		state.PrintStatus = model.PrintSuccess
		return done(state, "🖨️ 인쇄 요청이 전송되었습니다.")
	case model.DecisionReject:
		state.PrintStatus = model.PrintSkipped
		return done(state, "🚫 인쇄를 건너뜁니다.")
	default:
		return done(state)
	}
}

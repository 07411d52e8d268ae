package model

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// Scenario identifies one of the fixed business intents.
type Scenario string

const (
	ScenarioDelivery     Scenario = "delivery"
	ScenarioProductOrder Scenario = "product_order"
	ScenarioMetalCalc    Scenario = "metal_calculation"
	ScenarioRegistration Scenario = "business_registration"
	ScenarioHelp         Scenario = "help"
)

// ParseScenario maps a classifier label onto a known scenario.
func ParseScenario(s string) (Scenario, bool) {
	switch Scenario(s) {
	case ScenarioDelivery, ScenarioProductOrder, ScenarioMetalCalc, ScenarioRegistration, ScenarioHelp:
		return Scenario(s), true
	}
	return "", false
}

// InputKind distinguishes text messages from image attachments.
type InputKind string

const (
	InputText  InputKind = "text"
	InputImage InputKind = "image"
)

// Decision is a human approval outcome.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// SuspendPoint names the node a workflow is suspended at, if any. Resumption
// always re-enters this one named node with the supplied decision; nothing is
// re-derived from raw input.
type SuspendPoint string

const (
	SuspendNone          SuspendPoint = ""
	SuspendApproval      SuspendPoint = "approval"
	SuspendPrintApproval SuspendPoint = "print_approval"
	SuspendWaitForImage  SuspendPoint = "wait_for_image"
)

// Step is the coarse workflow status, mainly for observability.
type Step string

const (
	StepClassify Step = "classify"
	StepParse    Step = "parse"
	StepApprove  Step = "approve"
	StepGenerate Step = "generate"
	StepComplete Step = "complete"
	StepHelp     Step = "help"
	StepError    Step = "error"
)

// PrintStatus records the outcome of a printer dispatch.
type PrintStatus string

const (
	PrintSuccess PrintStatus = "success"
	PrintFailed  PrintStatus = "failed"
	PrintSkipped PrintStatus = "skipped"
)

// Classification is the intent-classifier output.
type Classification struct {
	Scenario   Scenario `json:"scenario"`
	Confidence float64  `json:"confidence"`
}

// ConversationState is the full per-thread workflow state. It is checkpointed
// to the session store before every suspension so a later Resume can re-enter
// the suspended node without re-deriving anything.
//
// Concurrency model: a ConversationState is thread-affine. All Invoke/Resume
// calls for one ThreadID must be serialized by the caller; the engine adds a
// per-thread mutex as defense but callers must not rely on interleaving.
type ConversationState struct {
	ThreadID  string    `json:"thread_id"`
	RawInput  string    `json:"raw_input"`
	InputKind InputKind `json:"input_kind"`

	// Messages is the append-only message history, loaded from the session
	// store on every call. It is not serialized with the state blob; the
	// store keeps it as its own ordered list.
	Messages []*schema.Message `json:"-"`

	// Classification result for the current turn.
	Scenario   Scenario `json:"scenario,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`

	// Multi-turn lock: non-empty means the thread is pinned to a scenario
	// until extraction succeeds, the scenario completes, or the lock expires.
	ActiveScenario   Scenario  `json:"active_scenario,omitempty"`
	ActiveScenarioAt time.Time `json:"active_scenario_at"`

	// Latest structured extraction, one slot per scenario.
	Delivery     *DeliveryInfo     `json:"delivery,omitempty"`
	ProductOrder *ProductOrderInfo `json:"product_order,omitempty"`
	MetalCalc    *MetalCalcInfo    `json:"metal_calc,omitempty"`
	Registration *RegistrationInfo `json:"registration,omitempty"`

	ParsingError string `json:"parsing_error,omitempty"`

	// Primary HITL channel (document generation / record save).
	AwaitingApproval bool     `json:"awaiting_approval"`
	ApprovalDecision Decision `json:"approval_decision,omitempty"`
	ApprovalMessage  string   `json:"approval_message,omitempty"`
	RejectMessage    string   `json:"reject_message,omitempty"`

	// Secondary HITL channel (printer dispatch), structurally identical to
	// the primary one but independently tracked.
	AwaitingPrintApproval bool        `json:"awaiting_print_approval"`
	PrintApprovalDecision Decision    `json:"print_approval_decision,omitempty"`
	PrintApprovalMessage  string      `json:"print_approval_message,omitempty"`
	PrintStatus           PrintStatus `json:"print_status,omitempty"`

	// Produced artifacts.
	DocxPath   string   `json:"docx_path,omitempty"`
	PDFPath    string   `json:"pdf_path,omitempty"`
	ImagePaths []string `json:"image_paths,omitempty"`

	CurrentStep Step `json:"current_step,omitempty"`

	// SuspendedAt marks the live suspend node; SuspendNone means the thread
	// is not suspended and Resume is illegal.
	SuspendedAt SuspendPoint `json:"suspended_at,omitempty"`
}

// NewConversationState creates the initial state for a thread.
func NewConversationState(threadID string) *ConversationState {
	return &ConversationState{
		ThreadID:    threadID,
		CurrentStep: StepClassify,
	}
}

// Suspended reports whether the thread has a live suspend point.
func (s *ConversationState) Suspended() bool {
	return s.SuspendedAt != SuspendNone
}

// Lock pins the thread to a scenario for multi-turn completion.
func (s *ConversationState) Lock(sc Scenario, now time.Time) {
	s.ActiveScenario = sc
	s.ActiveScenarioAt = now
}

// Unlock clears the multi-turn lock.
func (s *ConversationState) Unlock() {
	s.ActiveScenario = ""
	s.ActiveScenarioAt = time.Time{}
}

// LockExpired reports whether the multi-turn lock has aged out.
func (s *ConversationState) LockExpired(now time.Time, timeout time.Duration) bool {
	if s.ActiveScenario == "" {
		return false
	}
	return now.Sub(s.ActiveScenarioAt) >= timeout
}

// DiscardPartial drops any partially extracted record for an expired lock so
// a fresh classification starts from a clean slate.
func (s *ConversationState) DiscardPartial() {
	s.Delivery = nil
	s.ProductOrder = nil
	s.MetalCalc = nil
	s.Registration = nil
	s.ParsingError = ""
}

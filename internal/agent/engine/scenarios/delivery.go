package scenarios

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/officeflow-core-poc/server/internal/agent/model"
	logx "github.com/officeflow-core-poc/server/pkg/logger"
)

// Delivery is the delivery-note workflow: parse shipping details, gate
// document generation behind approval, then gate printing behind a second
// approval.
type Delivery struct {
	env *Env
}

func NewDelivery(env *Env) *Delivery {
	return &Delivery{env: env}
}

func (w *Delivery) Scenario() model.Scenario { return model.ScenarioDelivery }

func (w *Delivery) Run(ctx context.Context, state *model.ConversationState, combinedInput string) (*Outcome, error) {
	state.CurrentStep = model.StepParse

	info, err := w.env.Extractor.ExtractDelivery(ctx, combinedInput)
	if err != nil {
		// Infra failure: no lock, the next message starts fresh classification.
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("delivery extraction failed")
		return done(state, parseInfraMessage), nil
	}

	if strings.TrimSpace(info.LoadingSite) == "" {
		info.LoadingSite = w.env.DefaultLoadingSite
	}

	if verr := info.Validate(); verr != nil {
		state.ParsingError = verr.Error()
		state.Delivery = info // partial, diagnostic display only
		state.Lock(model.ScenarioDelivery, time.Now())
		logx.Debug().
			Str("thread_id", state.ThreadID).
			Str("parsing_error", state.ParsingError).
			Msg("delivery validation failed, scenario locked")
		return done(state, deliveryRetryMessage(state.ParsingError)), nil
	}

	state.Delivery = info
	state.ParsingError = ""
	state.Unlock()

	prompt := formatDeliveryApproval(info)
	state.ApprovalMessage = prompt
	state.AwaitingApproval = true
	state.CurrentStep = model.StepApprove
	return suspend(state, model.SuspendApproval, prompt), nil
}

func (w *Delivery) Resume(ctx context.Context, state *model.ConversationState) (*Outcome, error) {
	switch state.SuspendedAt {
	case model.SuspendApproval:
		return w.resumeApproval(ctx, state), nil
	case model.SuspendPrintApproval:
		return finishPrint(ctx, w.env.Printer, state, fmt.Sprintf("운송장 - %s", state.Delivery.UnloadingSite)), nil
	default:
		return nil, fmt.Errorf("delivery workflow resumed at unexpected point %q", state.SuspendedAt)
	}
}

func (w *Delivery) resumeApproval(ctx context.Context, state *model.ConversationState) *Outcome {
	switch consumeApproval(state) {
	case model.DecisionApprove:
		return w.generate(ctx, state)
	case model.DecisionReject:
		return done(state, "❌ 거절됨: "+rejectMessageOr(state))
	default:
		return done(state)
	}
}

func (w *Delivery) generate(ctx context.Context, state *model.ConversationState) *Outcome {
	state.CurrentStep = model.StepGenerate
	info := state.Delivery

	artifacts, err := w.env.Renderer.Render(ctx, model.TemplateDeliveryNote, deliveryFields(info))
	if err != nil {
		// Fail-soft: the conversation still completes; the user re-triggers.
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("delivery document render failed")
		return done(state, fmt.Sprintf("❌ 운송장 생성 실패: %v", err))
	}

	state.DocxPath = artifacts.DocxPath
	state.PDFPath = artifacts.PDFPath
	state.ImagePaths = artifacts.ImagePaths

	success := formatDeliverySuccess(info, artifacts)

	printPrompt := "🖨️ 생성된 운송장을 인쇄하시겠습니까?"
	state.PrintApprovalMessage = printPrompt
	state.AwaitingPrintApproval = true
	return suspend(state, model.SuspendPrintApproval, printPrompt, success)
}

func deliveryFields(info *model.DeliveryInfo) map[string]string {
	fields := map[string]string{
		"unloading_site": info.UnloadingSite,
		"address":        info.Address,
		"contact":        info.Contact,
		"loading_site":   info.LoadingSite,
		"payment_type":   string(info.PaymentType),
	}
	if info.LoadingAddress != "" {
		fields["loading_address"] = info.LoadingAddress
	}
	if info.LoadingPhone != "" {
		fields["loading_phone"] = info.LoadingPhone
	}
	if info.FreightCost > 0 {
		fields["freight_cost"] = fmt.Sprintf("%d", info.FreightCost)
	}
	if info.Notes != "" {
		fields["notes"] = info.Notes
	}
	return fields
}

func formatDeliveryApproval(info *model.DeliveryInfo) string {
	var b strings.Builder
	b.WriteString("**운송장 정보:**\n\n")
	b.WriteString("【하차지 정보】\n")
	fmt.Fprintf(&b, "- 하차지: %s\n", info.UnloadingSite)
	fmt.Fprintf(&b, "- 주소: %s\n", info.Address)
	fmt.Fprintf(&b, "- 연락처: %s\n", info.Contact)
	b.WriteString("\n【상차지 정보】\n")
	fmt.Fprintf(&b, "- 상차지: %s", info.LoadingSite)
	if info.LoadingAddress != "" {
		fmt.Fprintf(&b, "\n- 상차지 주소: %s", info.LoadingAddress)
	}
	if info.LoadingPhone != "" {
		fmt.Fprintf(&b, "\n- 상차지 전화번호: %s", info.LoadingPhone)
	}
	fmt.Fprintf(&b, "\n\n【운송비】\n- 지불방법: %s", info.PaymentType)
	if info.FreightCost > 0 {
		fmt.Fprintf(&b, "\n- 운송비: %s원", groupDigits(info.FreightCost))
	}
	if info.Notes != "" {
		fmt.Fprintf(&b, "\n\n- 비고: %s", info.Notes)
	}
	if info.Confidence > 0 {
		fmt.Fprintf(&b, "\n\n신뢰도: %.0f%%", info.Confidence*100)
	}
	return b.String()
}

func formatDeliverySuccess(info *model.DeliveryInfo, artifacts *model.Artifacts) string {
	var b strings.Builder
	b.WriteString("✅ 운송장 생성 완료!\n\n")
	b.WriteString("📄 **생성된 파일:**\n")
	fmt.Fprintf(&b, "- PDF: `%s`\n", artifacts.PDFPath)
	fmt.Fprintf(&b, "- DOCX: `%s`\n\n", artifacts.DocxPath)
	b.WriteString("【하차지 정보】\n")
	fmt.Fprintf(&b, "- 하차지: %s\n", info.UnloadingSite)
	fmt.Fprintf(&b, "- 주소: %s\n", info.Address)
	fmt.Fprintf(&b, "- 연락처: %s\n\n", info.Contact)
	fmt.Fprintf(&b, "【운송비】\n- 지불방법: %s", info.PaymentType)
	if info.FreightCost > 0 {
		fmt.Fprintf(&b, "\n- 운송비: %s원", groupDigits(info.FreightCost))
	}
	return b.String()
}

func deliveryRetryMessage(parsingError string) string {
	return fmt.Sprintf(`❌ 필수 정보가 누락되었습니다: %s

다음 정보를 모두 포함하여 다시 입력해주세요:
- **하차지** (회사 이름)
- **주소** (상세주소 포함)
- **연락처** (010-XXXX-XXXX 형식)
- **지불방법** (착불 또는 선불)

**예시:**
`+"`(주)삼성전자 서울시 강남구 테헤란로 123 010-1234-5678 착불 35000원`", parsingError)
}

// groupDigits renders an int with thousands separators.
func groupDigits(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}

package scenarios

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/officeflow-core-poc/server/internal/agent/model"
	logx "github.com/officeflow-core-poc/server/pkg/logger"
)

// ProductOrder is the trade-statement workflow. Same shape as the delivery
// workflow: parse, approve, render, print gate.
type ProductOrder struct {
	env *Env
}

func NewProductOrder(env *Env) *ProductOrder {
	return &ProductOrder{env: env}
}

func (w *ProductOrder) Scenario() model.Scenario { return model.ScenarioProductOrder }

func (w *ProductOrder) Run(ctx context.Context, state *model.ConversationState, combinedInput string) (*Outcome, error) {
	state.CurrentStep = model.StepParse

	info, err := w.env.Extractor.ExtractProductOrder(ctx, combinedInput)
	if err != nil {
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("product order extraction failed")
		return done(state, parseInfraMessage), nil
	}

	if verr := info.Validate(); verr != nil {
		state.ParsingError = verr.Error()
		state.ProductOrder = info
		state.Lock(model.ScenarioProductOrder, time.Now())
		logx.Debug().
			Str("thread_id", state.ThreadID).
			Str("parsing_error", state.ParsingError).
			Msg("product order validation failed, scenario locked")
		return done(state, productRetryMessage(state.ParsingError)), nil
	}

	state.ProductOrder = info
	state.ParsingError = ""
	state.Unlock()

	prompt := formatProductApproval(info)
	state.ApprovalMessage = prompt
	state.AwaitingApproval = true
	state.CurrentStep = model.StepApprove
	return suspend(state, model.SuspendApproval, prompt), nil
}

func (w *ProductOrder) Resume(ctx context.Context, state *model.ConversationState) (*Outcome, error) {
	switch state.SuspendedAt {
	case model.SuspendApproval:
		return w.resumeApproval(ctx, state), nil
	case model.SuspendPrintApproval:
		return finishPrint(ctx, w.env.Printer, state, fmt.Sprintf("거래명세서 - %s", state.ProductOrder.Client)), nil
	default:
		return nil, fmt.Errorf("product order workflow resumed at unexpected point %q", state.SuspendedAt)
	}
}

func (w *ProductOrder) resumeApproval(ctx context.Context, state *model.ConversationState) *Outcome {
	switch consumeApproval(state) {
	case model.DecisionApprove:
		return w.generate(ctx, state)
	case model.DecisionReject:
		return done(state, "❌ 거절됨: "+rejectMessageOr(state))
	default:
		return done(state)
	}
}

func (w *ProductOrder) generate(ctx context.Context, state *model.ConversationState) *Outcome {
	state.CurrentStep = model.StepGenerate
	info := state.ProductOrder

	fields := map[string]string{
		"client":       info.Client,
		"product_name": info.ProductName,
		"quantity":     fmt.Sprintf("%d", info.Quantity),
		"unit_price":   fmt.Sprintf("%d", info.UnitPrice),
		"total_price":  fmt.Sprintf("%d", info.TotalPrice()),
	}
	if info.Notes != "" {
		fields["notes"] = info.Notes
	}

	artifacts, err := w.env.Renderer.Render(ctx, model.TemplateTradeStatement, fields)
	if err != nil {
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("trade statement render failed")
		return done(state, fmt.Sprintf("❌ 거래명세서 생성 실패: %v", err))
	}

	state.DocxPath = artifacts.DocxPath
	state.PDFPath = artifacts.PDFPath
	state.ImagePaths = artifacts.ImagePaths

	success := formatProductSuccess(info, artifacts)

	printPrompt := "🖨️ 생성된 거래명세서를 인쇄하시겠습니까?"
	state.PrintApprovalMessage = printPrompt
	state.AwaitingPrintApproval = true
	return suspend(state, model.SuspendPrintApproval, printPrompt, success)
}

func formatProductApproval(info *model.ProductOrderInfo) string {
	var b strings.Builder
	b.WriteString("**거래명세서 정보:**\n\n")
	fmt.Fprintf(&b, "- 거래처: %s\n", info.Client)
	fmt.Fprintf(&b, "- 품목: %s\n", info.ProductName)
	fmt.Fprintf(&b, "- 수량: %d\n", info.Quantity)
	fmt.Fprintf(&b, "- 단가: %s원\n", groupDigits(info.UnitPrice))
	fmt.Fprintf(&b, "- 합계: %s원", groupDigits(info.TotalPrice()))
	if info.Notes != "" {
		fmt.Fprintf(&b, "\n- 비고: %s", info.Notes)
	}
	if info.Confidence > 0 {
		fmt.Fprintf(&b, "\n\n신뢰도: %.0f%%", info.Confidence*100)
	}
	return b.String()
}

func formatProductSuccess(info *model.ProductOrderInfo, artifacts *model.Artifacts) string {
	var b strings.Builder
	b.WriteString("✅ 거래명세서 생성 완료!\n\n")
	b.WriteString("📄 **생성된 파일:**\n")
	fmt.Fprintf(&b, "- PDF: `%s`\n", artifacts.PDFPath)
	fmt.Fprintf(&b, "- DOCX: `%s`\n\n", artifacts.DocxPath)
	fmt.Fprintf(&b, "- 거래처: %s\n", info.Client)
	fmt.Fprintf(&b, "- 품목: %s (%d개 × %s원)\n", info.ProductName, info.Quantity, groupDigits(info.UnitPrice))
	fmt.Fprintf(&b, "- 합계: %s원", groupDigits(info.TotalPrice()))
	return b.String()
}

func productRetryMessage(parsingError string) string {
	return fmt.Sprintf(`❌ 필수 정보가 누락되었습니다: %s

다음 정보를 모두 포함하여 다시 입력해주세요:
- **거래처** (회사 이름)
- **품목** (제품명)
- **수량**
- **단가**

**예시:**
`+"`(주)한국상사 알루미늄 각파이프 100개 5000원`", parsingError)
}

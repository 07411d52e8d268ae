package scenarios

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	errx "github.com/officeflow-core-poc/server/internal/core/error"

	"github.com/officeflow-core-poc/server/internal/agent/model"
	logx "github.com/officeflow-core-poc/server/pkg/logger"
)

// Registration is the business-registration intake workflow. It opens by
// suspending for a certificate image, extracts the ERP client fields from the
// image, gates persistence behind approval, and saves through the
// registration repository.
type Registration struct {
	env *Env
}

func NewRegistration(env *Env) *Registration {
	return &Registration{env: env}
}

func (w *Registration) Scenario() model.Scenario { return model.ScenarioRegistration }

const imagePrompt = "📷 사업자등록증 이미지를 업로드해주세요."

func (w *Registration) Run(ctx context.Context, state *model.ConversationState, combinedInput string) (*Outcome, error) {
	// A text turn opens (or re-prompts) the image wait; parsing starts only
	// once an image actually arrives.
	if state.InputKind != model.InputImage {
		state.CurrentStep = model.StepParse
		// The wait is also a scenario lock so a stale upload request expires
		// with the session instead of pinning the thread forever.
		state.Lock(model.ScenarioRegistration, time.Now())
		return suspend(state, model.SuspendWaitForImage, imagePrompt), nil
	}
	return w.parse(ctx, state, state.RawInput)
}

func (w *Registration) Resume(ctx context.Context, state *model.ConversationState) (*Outcome, error) {
	switch state.SuspendedAt {
	case model.SuspendApproval:
		return w.resumeApproval(ctx, state), nil
	default:
		return nil, fmt.Errorf("registration workflow resumed at unexpected point %q", state.SuspendedAt)
	}
}

func (w *Registration) parse(ctx context.Context, state *model.ConversationState, imageURL string) (*Outcome, error) {
	state.CurrentStep = model.StepParse
	state.SuspendedAt = model.SuspendNone

	info, err := w.env.Extractor.ExtractRegistration(ctx, imageURL)
	if err != nil {
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("registration OCR extraction failed")
		// Stay parked on the image wait so the user can retry the upload.
		return suspend(state, model.SuspendWaitForImage,
			"⚠️ 이미지를 읽지 못했습니다. 사업자등록증 이미지를 다시 업로드해주세요."), nil
	}
	info.ImageURL = imageURL

	if verr := info.Validate(); verr != nil {
		state.ParsingError = verr.Error()
		state.Registration = info
		state.Lock(model.ScenarioRegistration, time.Now())
		logx.Debug().
			Str("thread_id", state.ThreadID).
			Str("parsing_error", state.ParsingError).
			Msg("registration validation failed, awaiting new image")
		return suspend(state, model.SuspendWaitForImage,
			fmt.Sprintf("❌ 필수 정보를 읽지 못했습니다: %s\n\n더 선명한 사업자등록증 이미지를 다시 업로드해주세요.", state.ParsingError)), nil
	}

	state.Registration = info
	state.ParsingError = ""
	state.Unlock()

	prompt := formatRegistrationApproval(info)
	state.ApprovalMessage = prompt
	state.AwaitingApproval = true
	state.CurrentStep = model.StepApprove
	return suspend(state, model.SuspendApproval, prompt), nil
}

func (w *Registration) resumeApproval(ctx context.Context, state *model.ConversationState) *Outcome {
	switch consumeApproval(state) {
	case model.DecisionApprove:
		return w.save(ctx, state)
	case model.DecisionReject:
		return done(state, "❌ 거절됨: "+rejectMessageOr(state))
	default:
		return done(state)
	}
}

func (w *Registration) save(ctx context.Context, state *model.ConversationState) *Outcome {
	state.CurrentStep = model.StepGenerate
	info := state.Registration

	if strings.TrimSpace(info.BusinessNumber) != "" {
		existing, err := w.env.Registrations.FindByBusinessNumber(ctx, info.BusinessNumber)
		switch {
		case err == nil:
			return done(state, fmt.Sprintf(
				"⚠️ 이미 등록된 사업자번호입니다: %s\n- 거래처명: %s\n- ERP 코드: %d\n- 등록일: %s",
				existing.BusinessNumber, existing.ClientName, existing.ERPCode,
				existing.CreatedAt.Format("2006-01-02")))
		case errors.Is(err, errx.ErrRegistrationNotFound):
			// New business number, proceed.
		default:
			logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("registration duplicate lookup failed")
			return done(state, "❌ 거래처 등록에 실패했습니다. 잠시 후 다시 시도해주세요.")
		}
	}

	result, err := w.env.Registrations.Insert(ctx, info)
	if err != nil {
		if errors.Is(err, errx.ErrDuplicateBusinessNumber) {
			return done(state, fmt.Sprintf("⚠️ 이미 등록된 사업자번호입니다: %s", info.BusinessNumber))
		}
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("registration insert failed")
		return done(state, "❌ 거래처 등록에 실패했습니다. 잠시 후 다시 시도해주세요.")
	}

	logx.Info().
		Str("thread_id", state.ThreadID).
		Int64("registration_id", result.ID).
		Int64("erp_code", result.ERPCode).
		Msg("business registration saved")
	return done(state, fmt.Sprintf(
		"✅ 거래처 등록 완료!\n- 거래처명: %s\n- ERP 코드: %d", info.ClientName, result.ERPCode))
}

func formatRegistrationApproval(info *model.RegistrationInfo) string {
	var b strings.Builder
	b.WriteString("**사업자등록증 정보:**\n\n")
	fmt.Fprintf(&b, "- 거래처명: %s\n", info.ClientName)
	fmt.Fprintf(&b, "- 상호: %s\n", info.BusinessName)
	writeField := func(label, val string) {
		if val != "" {
			fmt.Fprintf(&b, "- %s: %s\n", label, val)
		}
	}
	writeField("대표자명", info.RepresentativeName)
	writeField("사업자번호", info.BusinessNumber)
	writeField("종사업자번호", info.BranchNumber)
	writeField("우편번호", info.PostalCode)
	writeField("주소", strings.TrimSpace(info.Address1+" "+info.Address2))
	writeField("업태", info.BusinessType)
	writeField("종목", info.BusinessItem)
	writeField("전화", info.Phone1)
	writeField("팩스", info.Fax)
	writeField("담당자", info.ContactPerson1)
	writeField("휴대폰", info.Mobile1)
	if info.Confidence > 0 {
		fmt.Fprintf(&b, "\n신뢰도: %.0f%%\n", info.Confidence*100)
	}
	b.WriteString("\n등록하시겠습니까? 수정할 항목이 있으면 항목명과 값을 알려주세요.")
	return b.String()
}

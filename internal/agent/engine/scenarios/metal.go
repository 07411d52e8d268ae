package scenarios

import (
	"context"
	"fmt"
	"time"

	"github.com/officeflow-core-poc/server/internal/agent/model"
	"github.com/officeflow-core-poc/server/internal/calc"
	logx "github.com/officeflow-core-poc/server/pkg/logger"
)

// MetalCalc is the metal unit-price workflow. Purely informational: parse,
// compute, answer. No approval gates, no side effects.
type MetalCalc struct {
	env *Env
}

func NewMetalCalc(env *Env) *MetalCalc {
	return &MetalCalc{env: env}
}

func (w *MetalCalc) Scenario() model.Scenario { return model.ScenarioMetalCalc }

func (w *MetalCalc) Run(ctx context.Context, state *model.ConversationState, combinedInput string) (*Outcome, error) {
	state.CurrentStep = model.StepParse

	info, err := w.env.Extractor.ExtractMetalCalc(ctx, combinedInput)
	if err != nil {
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("metal calc extraction failed")
		return done(state, parseInfraMessage), nil
	}

	if verr := info.Validate(); verr != nil {
		state.ParsingError = verr.Error()
		state.MetalCalc = info
		state.Lock(model.ScenarioMetalCalc, time.Now())
		logx.Debug().
			Str("thread_id", state.ThreadID).
			Str("parsing_error", state.ParsingError).
			Msg("metal calc validation failed, scenario locked")
		return done(state, metalRetryMessage(state.ParsingError)), nil
	}

	state.MetalCalc = info
	state.ParsingError = ""
	state.Unlock()

	result, err := calc.Compute(info)
	if err != nil {
		// Validate passed, so this indicates a shape/dimension mismatch bug.
		logx.Error().Err(err).Str("thread_id", state.ThreadID).Msg("metal calc compute failed")
		return done(state, parseInfraMessage), nil
	}

	return done(state, calc.Format(result)), nil
}

func (w *MetalCalc) Resume(ctx context.Context, state *model.ConversationState) (*Outcome, error) {
	return nil, fmt.Errorf("metal calc workflow has no suspend points, resumed at %q", state.SuspendedAt)
}

func metalRetryMessage(parsingError string) string {
	return fmt.Sprintf(`❌ 계산에 필요한 정보가 부족합니다: %s

제품 형상, 치수, 길이, 수량을 포함하여 다시 입력해주세요.

**예시:**
- `+"`사각파이프 50x50x2t 6m 10개`"+`
- `+"`원파이프 50x3t 6m 10개 kg당 5000원`"+`
- `+"`환봉 20파이 3m 5개`", parsingError)
}

package extract

import (
	"context"
	_ "embed"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/officeflow-core-poc/server/internal/agent/model"
	logx "github.com/officeflow-core-poc/server/pkg/logger"
)

//go:embed template/classifier_prompt.txt
var classifierPrompt string

//go:embed template/delivery_prompt.txt
var deliveryPrompt string

//go:embed template/product_order_prompt.txt
var productOrderPrompt string

//go:embed template/metal_calc_prompt.txt
var metalCalcPrompt string

//go:embed template/registration_prompt.txt
var registrationPrompt string

// Adapter implements model.Classifier and model.Extractor over the Gemini
// chat models. Errors returned from it are transport/infra failures; a
// syntactically broken but present answer is also treated as infra, never as
// a validation outcome.
type Adapter struct {
	models *ChatModels
}

func NewAdapter(models *ChatModels) *Adapter {
	return &Adapter{models: models}
}

var _ model.Classifier = (*Adapter)(nil)
var _ model.Extractor = (*Adapter)(nil)

// Classify maps one user message onto a scenario label. Labels the engine
// does not know degrade to help rather than failing the turn.
func (a *Adapter) Classify(ctx context.Context, text string) (model.Classification, error) {
	out, err := a.generate(ctx, a.models.Classifier, a.models.ClassifierModelName, []*schema.Message{
		schema.SystemMessage(classifierPrompt),
		schema.UserMessage(text),
	})
	if err != nil {
		return model.Classification{}, err
	}

	var raw struct {
		Scenario   string  `json:"scenario"`
		Confidence float64 `json:"confidence"`
	}
	if err := decodeJSON(out.Content, &raw); err != nil {
		return model.Classification{}, fmt.Errorf("classifier: %w", err)
	}

	sc, ok := model.ParseScenario(raw.Scenario)
	if !ok {
		logx.Warn().Str("label", raw.Scenario).Msg("classifier produced unknown label, falling back to help")
		return model.Classification{Scenario: model.ScenarioHelp, Confidence: 0}, nil
	}
	return model.Classification{Scenario: sc, Confidence: clampConfidence(raw.Confidence)}, nil
}

func (a *Adapter) ExtractDelivery(ctx context.Context, text string) (*model.DeliveryInfo, error) {
	info := &model.DeliveryInfo{}
	if err := a.extractText(ctx, deliveryPrompt, text, info); err != nil {
		return nil, fmt.Errorf("delivery extraction: %w", err)
	}
	info.Confidence = clampConfidence(info.Confidence)
	return info, nil
}

func (a *Adapter) ExtractProductOrder(ctx context.Context, text string) (*model.ProductOrderInfo, error) {
	info := &model.ProductOrderInfo{}
	if err := a.extractText(ctx, productOrderPrompt, text, info); err != nil {
		return nil, fmt.Errorf("product order extraction: %w", err)
	}
	info.Confidence = clampConfidence(info.Confidence)
	return info, nil
}

func (a *Adapter) ExtractMetalCalc(ctx context.Context, text string) (*model.MetalCalcInfo, error) {
	info := &model.MetalCalcInfo{}
	if err := a.extractText(ctx, metalCalcPrompt, text, info); err != nil {
		return nil, fmt.Errorf("metal calc extraction: %w", err)
	}
	info.Confidence = clampConfidence(info.Confidence)
	return info, nil
}

// ExtractRegistration reads a business registration certificate image with
// the multimodal extractor model.
func (a *Adapter) ExtractRegistration(ctx context.Context, imageURL string) (*model.RegistrationInfo, error) {
	out, err := a.generate(ctx, a.models.Extractor, a.models.ExtractorModelName, []*schema.Message{
		schema.SystemMessage(registrationPrompt),
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{
					Type:     schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{URL: imageURL},
				},
				{
					Type: schema.ChatMessagePartTypeText,
					Text: "이 사업자등록증에서 정보를 추출해주세요.",
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("registration extraction: %w", err)
	}

	info := &model.RegistrationInfo{}
	if err := decodeJSON(out.Content, info); err != nil {
		return nil, fmt.Errorf("registration extraction: %w", err)
	}
	info.Confidence = clampConfidence(info.Confidence)
	return info, nil
}

func (a *Adapter) extractText(ctx context.Context, systemPrompt, text string, dst any) error {
	out, err := a.generate(ctx, a.models.Extractor, a.models.ExtractorModelName, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(text),
	})
	if err != nil {
		return err
	}
	return decodeJSON(out.Content, dst)
}

// generator is the slice of the eino chat-model surface the adapter uses;
// it exists so tests can substitute a canned model.
type generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

func (a *Adapter) generate(ctx context.Context, cm generator, modelName string, messages []*schema.Message) (*schema.Message, error) {
	out, err := cm.Generate(ctx, messages)
	if err != nil {
		logx.Error().Err(err).Str("model", modelName).Msg("model generation failed")
		return nil, fmt.Errorf("model %s: %w", modelName, err)
	}
	if out == nil || out.Content == "" {
		return nil, fmt.Errorf("model %s: empty response", modelName)
	}

	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		usage := out.ResponseMeta.Usage
		inCost, outCost, total := model.ComputeCost(usage, model.ResolvePricing(modelName))
		logx.Debug().
			Str("model", modelName).
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Float64("input_cost_usd", inCost).
			Float64("output_cost_usd", outCost).
			Float64("total_cost_usd", total).
			Msg("model usage")
	}
	return out, nil
}

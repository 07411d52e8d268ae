package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/officeflow-core-poc/server/internal/agent/engine"
	"github.com/officeflow-core-poc/server/internal/agent/engine/scenarios"
	"github.com/officeflow-core-poc/server/internal/agent/extract"
	"github.com/officeflow-core-poc/server/internal/agent/model"
	"github.com/officeflow-core-poc/server/internal/agent/repo"
	"github.com/officeflow-core-poc/server/internal/agent/sessions"
	"github.com/officeflow-core-poc/server/internal/core"
	logx "github.com/officeflow-core-poc/server/pkg/logger"
	pkgpostgres "github.com/officeflow-core-poc/server/pkg/postgres"
	pkgredis "github.com/officeflow-core-poc/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the workflow engine
// example, sourced from environment variables (loaded from .env for local
// runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis    pkgredis.Config
	Postgres pkgpostgres.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Engine configs
	Engine       model.EngineConfig
	SessionStore model.SessionStoreConfig
	Classifier   model.ClassifierModelConfig
	Extractor    model.ExtractorModelConfig
}

// noopRenderer and noopPrinter stand in for the document/printer integrations
// in the example driver; production deployments supply real implementations of
// the ports.
type noopRenderer struct{}

func (noopRenderer) Render(ctx context.Context, tmpl model.DocumentTemplate, fields map[string]string) (*model.Artifacts, error) {
	name := fmt.Sprintf("/tmp/%s_%d", tmpl, time.Now().Unix())
	return &model.Artifacts{DocxPath: name + ".docx", PDFPath: name + ".pdf"}, nil
}

type noopPrinter struct{}

func (noopPrinter) Send(ctx context.Context, pdfPath, subject string) error {
	logx.Info().Str("pdf_path", pdfPath).Str("subject", subject).Msg("print request dispatched")
	return nil
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	pool, err := envCfg.Postgres.New(ctx)
	if err != nil {
		log.Fatalf("Failed to initialise Postgres pool: %v", err)
	}
	defer pool.Close()

	ttl, err := time.ParseDuration(envCfg.SessionStore.TTL)
	if err != nil {
		log.Fatalf("Invalid SESSION_STORE_TTL '%s': %v", envCfg.SessionStore.TTL, err)
	}
	sessionTimeout, err := time.ParseDuration(envCfg.Engine.SessionTimeout)
	if err != nil {
		log.Fatalf("Invalid SESSION_TIMEOUT '%s': %v", envCfg.Engine.SessionTimeout, err)
	}

	models, err := extract.NewChatModels(ctx, extract.ChatModelConfig{
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		ClassifierConfig: &envCfg.Classifier,
		ExtractorConfig:  &envCfg.Extractor,
	})
	if err != nil {
		log.Fatalf("Failed to build chat models: %v", err)
	}
	adapter := extract.NewAdapter(models)

	store := repo.NewRedisSessionStore(rdb, ttl)
	mgr := sessions.NewManager(store, sessionTimeout)
	eng := engine.New(store, mgr, adapter, &scenarios.Env{
		Extractor:          adapter,
		Renderer:           noopRenderer{},
		Printer:            noopPrinter{},
		Registrations:      repo.NewPostgresRegistrationRepository(pool),
		DefaultLoadingSite: envCfg.Engine.Delivery.DefaultLoadingSite,
	})

	// Scripted conversation: a delivery request missing its contact number,
	// completed on the second turn, then approved through both gates.
	userKey := "demo-user_demo-channel"
	turns := []string{
		"호깅텍 경기도 김포시 양촌읍 흥신로 201 선불",
		"01071152853",
	}

	var threadID string
	for i, input := range turns {
		threadID, err = eng.ThreadFor(ctx, userKey)
		if err != nil {
			log.Fatalf("Failed to resolve thread: %v", err)
		}

		fmt.Printf("\n🚀 Turn %d: %q\n", i+1, input)
		result, err := eng.Invoke(ctx, threadID, input, model.InputText)
		if err != nil {
			log.Fatalf("Invoke failed on turn %d: %v", i+1, err)
		}
		for _, msg := range result.Messages {
			fmt.Printf("🤖 %s\n", msg)
		}
		if result.Suspended {
			fmt.Printf("⏸️  waiting at %s: %s\n", result.SuspendedAt, result.Prompt)
		}
	}

	// Approve document generation, then approve printing.
	for {
		result, err := eng.Resume(ctx, threadID, model.DecisionApprove, "")
		if err != nil {
			log.Fatalf("Resume failed: %v", err)
		}
		for _, msg := range result.Messages {
			fmt.Printf("🤖 %s\n", msg)
		}
		if !result.Suspended {
			break
		}
		fmt.Printf("⏸️  waiting at %s: %s\n", result.SuspendedAt, result.Prompt)
	}

	fmt.Println("\n🎉 Conversation completed")
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agrosoluce/agrosoluce/internal/ai"
	"github.com/agrosoluce/agrosoluce/internal/ai/gemini"
	"github.com/agrosoluce/agrosoluce/internal/secrets"
	"github.com/agrosoluce/agrosoluce/internal/store"
)

func openStore(ctx context.Context, cfg *StoreConfig, logger *zap.Logger) (store.Store, error) {
	if cfg == nil {
		cfg = &StoreConfig{}
	}

	storeCfg := store.Config{
		Driver: cfg.Driver,
		Path:   cfg.Path,
	}

	if strings.EqualFold(strings.TrimSpace(cfg.Driver), store.DriverPostgres) {
		url, err := secrets.Load(secrets.Source{
			Name: "database url",
			File: cfg.DatabaseURLFile,
			Env:  "DATABASE_URL",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set store.database-url-file or AGROSOLUCE_DATABASE_URL_FILE)", err)
		}
		storeCfg.DatabaseURL = url
	}

	return store.New(ctx, storeCfg, logger.With(zap.String("store", cfg.Driver)))
}

func newAIAdvisor(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Advisor, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	advisorLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewAdvisor(generator, advisorLogger, cfg.Gemini.MaxLogLength), nil
}

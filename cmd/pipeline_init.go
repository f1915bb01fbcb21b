package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/pipeline"
	anthropicpkg "github.com/sells-group/credit-cli/pkg/anthropic"
	"github.com/sells-group/credit-cli/pkg/registry"
	"github.com/sells-group/credit-cli/pkg/tavily"
)

// initPipeline wires the external clients and builds the Pipeline used by
// the analyze/batch/serve commands.
func initPipeline() (*pipeline.Pipeline, error) {
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Registry.TimeoutSecs) * time.Second,
	}

	providers := make([]registry.Provider, 0, len(cfg.Registry.Providers))
	for _, name := range cfg.Registry.Providers {
		switch name {
		case "receitaws":
			providers = append(providers, registry.NewReceitaWS(cfg.Registry.ReceitaWSURL, httpClient))
		case "brasilapi":
			providers = append(providers, registry.NewBrasilAPI(cfg.Registry.BrasilAPIURL, httpClient))
		default:
			zap.L().Warn("unknown registry provider, skipping", zap.String("provider", name))
		}
	}
	registryClient := registry.NewClient(providers, registry.WithLookupRetries(cfg.Registry.LookupRetries))

	searchClient := tavily.NewClient(cfg.Search.Key, tavily.WithBaseURL(cfg.Search.BaseURL))
	llmClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	opts := []pipeline.Option{}
	if cfg.Pipeline.LexiconPath != "" {
		lex, err := pipeline.LoadLexicon(cfg.Pipeline.LexiconPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithLexicon(lex))
	}

	return pipeline.New(cfg, registryClient, searchClient, llmClient, opts...), nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/juliuspor/Harmony/internal/cluster"
	"github.com/juliuspor/Harmony/internal/config"
	"github.com/juliuspor/Harmony/internal/consensus"
	"github.com/juliuspor/Harmony/internal/debate"
	"github.com/juliuspor/Harmony/internal/provider"
	"github.com/juliuspor/Harmony/internal/semantic"
	"github.com/juliuspor/Harmony/internal/service"
	"github.com/juliuspor/Harmony/internal/store"
)

// stack holds the wired application components shared by CLI commands.
type stack struct {
	cfg      *config.Config
	store    *store.Store
	provider *provider.OpenAIProvider
	encoder  *semantic.Encoder
	engine   *cluster.Engine
	analyzer *consensus.Analyzer
	orch     *debate.Orchestrator
	runner   *debate.Runner
	svc      *service.Service
}

func openStack() (*stack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := os.MkdirAll(cfg.Paths.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	st, err := store.Open(config.DBPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	prov := provider.NewOpenAIProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.APIBase, cfg.Model.Name)
	encoder := semantic.NewEncoder(prov, cfg.Embedding.Model)
	engine := cluster.NewEngine(encoder, cfg.Clustering)
	analyzer := consensus.NewAnalyzer(encoder, cfg.Consensus)
	orch := debate.NewOrchestrator(st, prov, encoder, engine, analyzer, cfg)
	runner := debate.NewRunner(orch)
	return &stack{
		cfg:      cfg,
		store:    st,
		provider: prov,
		encoder:  encoder,
		engine:   engine,
		analyzer: analyzer,
		orch:     orch,
		runner:   runner,
		svc:      service.New(st, encoder, engine, analyzer, runner),
	}, nil
}

func (s *stack) close() {
	s.runner.Shutdown()
	_ = s.store.Close()
}

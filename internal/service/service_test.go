package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juliuspor/Harmony/internal/cluster"
	"github.com/juliuspor/Harmony/internal/config"
	"github.com/juliuspor/Harmony/internal/consensus"
	"github.com/juliuspor/Harmony/internal/debate"
	"github.com/juliuspor/Harmony/internal/provider"
	"github.com/juliuspor/Harmony/internal/semantic"
	"github.com/juliuspor/Harmony/internal/store"
)

type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, req *provider.EmbeddingRequest) (*provider.EmbeddingResponse, error) {
	if vec, ok := s.vectors[req.Input]; ok {
		return &provider.EmbeddingResponse{Vector: vec}, nil
	}
	return &provider.EmbeddingResponse{Vector: []float32{1, 0, 0}}, nil
}

type staticLLM struct{}

func (staticLLM) DefaultModel() string { return "fake" }

func (staticLLM) Chat(_ context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	if req.JSONObject {
		return &provider.ChatResponse{Content: `{"role": "Advocate", "goal": "make the case", "backstory": "shaped by the submissions", "key_alignments": [], "key_insights": [], "pro_arguments": [], "con_arguments": []}`}, nil
	}
	return &provider.ChatResponse{Content: "a substantive debate contribution"}, nil
}

func setupService(t *testing.T, vectors map[string][]float32) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.DefaultConfig()
	encoder := semantic.NewEncoder(&stubEmbedder{vectors: vectors}, "")
	engine := cluster.NewEngine(encoder, cfg.Clustering)
	analyzer := consensus.NewAnalyzer(encoder, cfg.Consensus)
	orchestrator := debate.NewOrchestrator(st, staticLLM{}, encoder, engine, analyzer, cfg)
	runner := debate.NewRunner(orchestrator)
	t.Cleanup(runner.Shutdown)
	return New(st, encoder, engine, analyzer, runner), st
}

func TestAddSubmissionsStoresEmbeddings(t *testing.T) {
	svc, st := setupService(t, map[string][]float32{"bike lanes": {0, 3, 4}})
	ctx := context.Background()

	ids, err := svc.AddSubmissions(ctx, "proj-1", []SubmissionInput{
		{Content: "bike lanes", UserID: "u1"},
		{Content: "school lunches", UserID: "u2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}

	subs, _ := st.Submissions(ctx, "proj-1")
	if len(subs) != 2 {
		t.Fatalf("got %d stored submissions", len(subs))
	}
	// Embeddings are normalized at insert.
	if v := subs[0].Embedding; len(v) != 3 || v[1] != 0.6 || v[2] != 0.8 {
		t.Errorf("stored embedding = %v, want normalized [0 0.6 0.8]", v)
	}
}

func TestAddSubmissionsRejectsEmpty(t *testing.T) {
	svc, _ := setupService(t, nil)
	if _, err := svc.AddSubmissions(context.Background(), "proj-1", nil); err == nil {
		t.Error("expected error for empty input list")
	}
	if _, err := svc.AddSubmissions(context.Background(), "proj-1", []SubmissionInput{{Content: ""}}); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestClusterUsesStoredEmbeddings(t *testing.T) {
	vectors := map[string][]float32{
		"bikes one":   {1, 0, 0},
		"bikes two":   {0.9, 0.1, 0},
		"lunches one": {0, 0, 1},
		"lunches two": {0, 0.1, 0.9},
	}
	svc, _ := setupService(t, vectors)
	ctx := context.Background()

	for text := range vectors {
		if _, err := svc.AddSubmissions(ctx, "proj-1", []SubmissionInput{{Content: text}}); err != nil {
			t.Fatal(err)
		}
	}

	result, err := svc.Cluster(ctx, "proj-1")
	if err != nil {
		t.Fatal(err)
	}
	if result.NumGroups != 2 {
		t.Errorf("NumGroups = %d, want 2", result.NumGroups)
	}
}

func TestClusterTooFewSubmissions(t *testing.T) {
	svc, _ := setupService(t, nil)
	ctx := context.Background()
	svc.AddSubmissions(ctx, "proj-1", []SubmissionInput{{Content: "alone"}})

	_, err := svc.Cluster(ctx, "proj-1")
	if !errors.Is(err, cluster.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestCreateDebateRunsToCompletion(t *testing.T) {
	svc, st := setupService(t, nil)
	ctx := context.Background()

	clusters := [][]string{
		{"bikes one", "bikes two"},
		{"lunches one", "lunches two"},
	}
	d, err := svc.CreateDebate(ctx, "proj-1", clusters)
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != store.StatusPending && d.Status != store.StatusRunning {
		t.Errorf("initial status = %s", d.Status)
	}

	waitForStatus(t, st, d.DebateID, store.StatusCompleted)

	view, err := svc.GetDebate(ctx, d.DebateID)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Agents) == 0 || len(view.Messages) == 0 {
		t.Errorf("view missing agents or messages: %d agents, %d messages", len(view.Agents), len(view.Messages))
	}

	cv, err := svc.GetConsensus(ctx, d.DebateID)
	if err != nil {
		t.Fatal(err)
	}
	if cv.Matrix == nil {
		t.Error("consensus view missing matrix")
	}
	if cv.Summary == nil {
		t.Error("consensus view missing summary")
	}
}

func TestGetConsensusComputesLazily(t *testing.T) {
	svc, st := setupService(t, nil)
	ctx := context.Background()

	// A debate with a transcript but no stored analysis.
	debateID, _ := st.CreateDebate(ctx, "proj-1", store.StatusCompleted)
	st.AddAgent(ctx, debateID, store.Agent{AgentID: "a", AgentName: "A"})
	st.AddAgent(ctx, debateID, store.Agent{AgentID: "b", AgentName: "B"})
	st.AddMessage(ctx, debateID, "a", "A", "we should agree on this", 1, store.TypeAgentMessage)
	st.AddMessage(ctx, debateID, "b", "B", "I support that", 1, store.TypeAgentMessage)

	cv, err := svc.GetConsensus(ctx, debateID)
	if err != nil {
		t.Fatal(err)
	}
	if cv.Consensus.AgreementRatio != 1.0 {
		t.Errorf("agreement ratio = %f, want 1.0", cv.Consensus.AgreementRatio)
	}

	// Second call reads the stored row.
	if _, err := st.GetConsensus(ctx, debateID); err != nil {
		t.Errorf("lazy result was not persisted: %v", err)
	}
}

func TestGetConsensusUnknownDebate(t *testing.T) {
	svc, _ := setupService(t, nil)
	if _, err := svc.GetConsensus(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func waitForStatus(t *testing.T, st *store.Store, debateID, want string) {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		d, err := st.GetDebate(context.Background(), debateID)
		if err != nil {
			t.Fatal(err)
		}
		if d.Status == want {
			return
		}
		if d.Status == store.StatusCancelled {
			t.Fatalf("debate cancelled: %s", d.ErrorText)
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("debate never reached status %s", want)
}

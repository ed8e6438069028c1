package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/juliuspor/Harmony/internal/cluster"
	"github.com/juliuspor/Harmony/internal/config"
	"github.com/juliuspor/Harmony/internal/consensus"
	"github.com/juliuspor/Harmony/internal/debate"
	"github.com/juliuspor/Harmony/internal/provider"
	"github.com/juliuspor/Harmony/internal/semantic"
	"github.com/juliuspor/Harmony/internal/service"
	"github.com/juliuspor/Harmony/internal/store"
)

type constEmbedder struct{}

func (constEmbedder) Embed(_ context.Context, _ *provider.EmbeddingRequest) (*provider.EmbeddingResponse, error) {
	return &provider.EmbeddingResponse{Vector: []float32{1, 0, 0}}, nil
}

type nopLLM struct{}

func (nopLLM) DefaultModel() string { return "fake" }

func (nopLLM) Chat(_ context.Context, _ *provider.ChatRequest) (*provider.ChatResponse, error) {
	return &provider.ChatResponse{Content: "{}"}, nil
}

func setupListener(t *testing.T) (*Listener, *ChannelConsumer, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.DefaultConfig()
	encoder := semantic.NewEncoder(constEmbedder{}, "")
	engine := cluster.NewEngine(encoder, cfg.Clustering)
	analyzer := consensus.NewAnalyzer(encoder, cfg.Consensus)
	runner := debate.NewRunner(debate.NewOrchestrator(st, nopLLM{}, encoder, engine, analyzer, cfg))
	svc := service.New(st, encoder, engine, analyzer, runner)

	consumer := NewChannelConsumer()
	return NewListener(consumer, svc), consumer, st
}

func TestListenerStoresSubmissionEvents(t *testing.T) {
	listener, consumer, st := setupListener(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	consumer.Send(ConsumerMessage{
		Topic: "harmony.submissions",
		Value: []byte(`{"project_id": "p1", "user_id": "u1", "content": "better bus routes", "source": "kafka"}`),
	})
	consumer.Send(ConsumerMessage{
		Topic: "harmony.submissions",
		Value: []byte(`not json at all`),
	})
	consumer.Send(ConsumerMessage{
		Topic: "harmony.submissions",
		Value: []byte(`{"project_id": "", "content": "orphaned"}`),
	})

	waitForSubmissions(t, st, "p1", 1)
	consumer.Close()
	if err := <-done; err != nil {
		t.Fatalf("listener returned error: %v", err)
	}

	subs, _ := st.Submissions(context.Background(), "p1")
	if len(subs) != 1 {
		t.Fatalf("got %d submissions, want 1 (bad events dropped)", len(subs))
	}
	if subs[0].Content != "better bus routes" || subs[0].UserID != "u1" {
		t.Errorf("stored submission = %+v", subs[0])
	}
}

func TestListenerStopsOnContextCancel(t *testing.T) {
	listener, consumer, _ := setupListener(t)
	defer consumer.Close()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop on cancel")
	}
}

func waitForSubmissions(t *testing.T, st *store.Store, projectID string, want int) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		subs, err := st.Submissions(context.Background(), projectID)
		if err != nil {
			t.Fatal(err)
		}
		if len(subs) >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("never saw %d submissions for %s", want, projectID)
}

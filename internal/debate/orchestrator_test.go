package debate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/juliuspor/Harmony/internal/cluster"
	"github.com/juliuspor/Harmony/internal/config"
	"github.com/juliuspor/Harmony/internal/consensus"
	"github.com/juliuspor/Harmony/internal/provider"
	"github.com/juliuspor/Harmony/internal/semantic"
	"github.com/juliuspor/Harmony/internal/store"
)

// basisEmbedder assigns each distinct text its own basis vector, so equal
// texts are identical and different texts are orthogonal.
type basisEmbedder struct {
	mu    sync.Mutex
	index map[string]int
}

func (b *basisEmbedder) Embed(_ context.Context, req *provider.EmbeddingRequest) (*provider.EmbeddingResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.index == nil {
		b.index = make(map[string]int)
	}
	i, ok := b.index[req.Input]
	if !ok {
		i = len(b.index)
		b.index[req.Input] = i
	}
	vec := make([]float32, 256)
	vec[i%256] = 1
	return &provider.EmbeddingResponse{Vector: vec}, nil
}

// fakeLLM scripts persona, turn, and summary responses by inspecting the
// request.
type fakeLLM struct {
	mu           sync.Mutex
	personaFails int
	personaCount int
	turnCount    int
	emptyTurns   map[int]bool
	turnFails    map[int]bool
	turnText     func(n int) string
}

func (f *fakeLLM) DefaultModel() string { return "fake" }

func (f *fakeLLM) Chat(_ context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prompt := req.Messages[len(req.Messages)-1].Content
	switch {
	case req.JSONObject && strings.Contains(prompt, "persona for a debate agent"):
		f.personaCount++
		if f.personaCount <= f.personaFails {
			return nil, errors.New("persona backend unavailable")
		}
		persona := Persona{
			Role:      fmt.Sprintf("Perspective %d", f.personaCount),
			Goal:      "advance this viewpoint",
			Backstory: "formed from community submissions",
		}
		b, _ := json.Marshal(persona)
		return &provider.ChatResponse{Content: string(b)}, nil

	case req.JSONObject && strings.Contains(prompt, "debate transcript"):
		b, _ := json.Marshal(Summary{
			KeyAlignments: []string{"shared concern for outcomes"},
			KeyInsights:   []string{"tradeoffs were made explicit"},
			ProArguments:  []string{"benefits the majority"},
			ConArguments:  []string{"costs fall unevenly"},
		})
		return &provider.ChatResponse{Content: string(b)}, nil

	default:
		f.turnCount++
		if f.turnFails[f.turnCount] {
			return nil, errors.New("turn backend unavailable")
		}
		if f.emptyTurns[f.turnCount] {
			return &provider.ChatResponse{Content: ""}, nil
		}
		text := fmt.Sprintf("distinct argument number %d", f.turnCount)
		if f.turnText != nil {
			text = f.turnText(f.turnCount)
		}
		return &provider.ChatResponse{Content: text}, nil
	}
}

func setupOrchestrator(t *testing.T, llm provider.LLMProvider) (*Orchestrator, *store.Store, *config.Config) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.DefaultConfig()
	encoder := semantic.NewEncoder(&basisEmbedder{}, "")
	engine := cluster.NewEngine(encoder, cfg.Clustering)
	analyzer := consensus.NewAnalyzer(encoder, cfg.Consensus)
	return NewOrchestrator(st, llm, encoder, engine, analyzer, cfg), st, cfg
}

var testClusters = [][]string{
	{"build more bike lanes", "protect cyclists downtown"},
	{"fund free school lunches", "no child should learn hungry"},
}

func TestRunCompletesDebate(t *testing.T) {
	llm := &fakeLLM{}
	o, st, _ := setupOrchestrator(t, llm)
	ctx := context.Background()

	debateID, _ := st.CreateDebate(ctx, "proj-1", store.StatusPending)
	if err := o.Run(ctx, "proj-1", debateID, testClusters); err != nil {
		t.Fatal(err)
	}

	d, err := st.GetDebate(ctx, debateID)
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != store.StatusCompleted {
		t.Fatalf("status = %s, want completed (error: %s)", d.Status, d.ErrorText)
	}
	if d.ConsensusScore == nil {
		t.Fatal("completed debate has no consensus score")
	}

	agents, _ := st.Agents(ctx, debateID)
	if len(agents) != 3 {
		t.Errorf("got %d agents, want 2 debaters + moderator", len(agents))
	}
	var foundModerator bool
	for _, a := range agents {
		if a.AgentID == "orchestrator" {
			foundModerator = true
			if a.ClusterID != -1 || a.AgentName != "Moderator" {
				t.Errorf("moderator record = %+v", a)
			}
		}
	}
	if !foundModerator {
		t.Error("moderator agent not registered")
	}

	if _, err := st.GetConsensus(ctx, debateID); err != nil {
		t.Errorf("consensus not stored: %v", err)
	}
	summary, err := st.GetSummary(ctx, debateID)
	if err != nil {
		t.Fatalf("summary not stored: %v", err)
	}
	if len(summary.KeyAlignments) != 1 {
		t.Errorf("summary alignments = %v", summary.KeyAlignments)
	}
}

func TestRunMaxRoundsFiresExactlyOnce(t *testing.T) {
	llm := &fakeLLM{}
	o, st, cfg := setupOrchestrator(t, llm)
	ctx := context.Background()

	debateID, _ := st.CreateDebate(ctx, "proj-1", store.StatusPending)
	if err := o.Run(ctx, "proj-1", debateID, testClusters); err != nil {
		t.Fatal(err)
	}

	interventions, _ := st.Interventions(ctx, debateID)
	var maxRounds int
	for _, iv := range interventions {
		if iv.Type == InterventionMaxRounds {
			maxRounds++
		}
	}
	if maxRounds != 1 {
		t.Fatalf("max_rounds fired %d times, want exactly once", maxRounds)
	}

	// The transcript must contain no agent messages after the max_rounds
	// moderator message; only the closing statement follows.
	messages, _ := st.Messages(ctx, debateID)
	lastAgentIdx := -1
	for i, msg := range messages {
		if msg.MessageType == store.TypeAgentMessage {
			lastAgentIdx = i
		}
	}
	if lastAgentIdx == -1 {
		t.Fatal("no agent messages in transcript")
	}
	for _, msg := range messages[lastAgentIdx+1:] {
		if msg.MessageType != store.TypeOrchestratorMessage {
			t.Errorf("non-moderator message after loop end: %+v", msg)
		}
	}
	// First agent message of the round that hits the ceiling is the last.
	if messages[lastAgentIdx].RoundNumber != cfg.Debate.MaxRounds {
		t.Errorf("last agent message round = %d, want %d", messages[lastAgentIdx].RoundNumber, cfg.Debate.MaxRounds)
	}
}

func TestRunPersonaFailureSkipsCluster(t *testing.T) {
	llm := &fakeLLM{personaFails: 1}
	o, st, _ := setupOrchestrator(t, llm)
	ctx := context.Background()

	debateID, _ := st.CreateDebate(ctx, "proj-1", store.StatusPending)
	if err := o.Run(ctx, "proj-1", debateID, testClusters); err != nil {
		t.Fatal(err)
	}

	d, _ := st.GetDebate(ctx, debateID)
	if d.Status != store.StatusCompleted {
		t.Fatalf("status = %s, want completed despite one persona failure", d.Status)
	}
	agents, _ := st.Agents(ctx, debateID)
	if len(agents) != 2 {
		t.Errorf("got %d agents, want 1 debater + moderator", len(agents))
	}
}

func TestRunAllPersonasFailCancels(t *testing.T) {
	llm := &fakeLLM{personaFails: 100}
	o, st, _ := setupOrchestrator(t, llm)
	ctx := context.Background()

	debateID, _ := st.CreateDebate(ctx, "proj-1", store.StatusPending)
	err := o.Run(ctx, "proj-1", debateID, testClusters)
	if !errors.Is(err, ErrNoAgentsCreated) {
		t.Fatalf("err = %v, want ErrNoAgentsCreated", err)
	}

	d, _ := st.GetDebate(ctx, debateID)
	if d.Status != store.StatusCancelled {
		t.Errorf("status = %s, want cancelled", d.Status)
	}
	if d.ErrorText == "" {
		t.Error("cancelled debate must carry a non-empty error message")
	}
}

func TestRunEmptyClustersFails(t *testing.T) {
	o, st, _ := setupOrchestrator(t, &fakeLLM{})
	ctx := context.Background()

	debateID, _ := st.CreateDebate(ctx, "proj-1", store.StatusPending)
	err := o.Run(ctx, "proj-1", debateID, [][]string{})
	if !errors.Is(err, ErrEmptyClusters) {
		t.Fatalf("err = %v, want ErrEmptyClusters", err)
	}
	d, _ := st.GetDebate(ctx, debateID)
	if d.Status != store.StatusCancelled {
		t.Errorf("status = %s, want cancelled", d.Status)
	}
}

func TestRunNoSubmissionsFails(t *testing.T) {
	o, st, _ := setupOrchestrator(t, &fakeLLM{})
	ctx := context.Background()

	debateID, _ := st.CreateDebate(ctx, "empty-project", store.StatusPending)
	err := o.Run(ctx, "empty-project", debateID, nil)
	if !errors.Is(err, ErrNoSubmissions) {
		t.Fatalf("err = %v, want ErrNoSubmissions", err)
	}
}

func TestRunSkipsEmptyAndFailedTurns(t *testing.T) {
	llm := &fakeLLM{
		emptyTurns: map[int]bool{1: true},
		turnFails:  map[int]bool{2: true},
	}
	o, st, _ := setupOrchestrator(t, llm)
	ctx := context.Background()

	debateID, _ := st.CreateDebate(ctx, "proj-1", store.StatusPending)
	if err := o.Run(ctx, "proj-1", debateID, testClusters); err != nil {
		t.Fatal(err)
	}

	d, _ := st.GetDebate(ctx, debateID)
	if d.Status != store.StatusCompleted {
		t.Fatalf("status = %s, want completed despite skipped turns", d.Status)
	}
	messages, _ := st.Messages(ctx, debateID)
	for _, msg := range messages {
		if msg.Content == "" {
			t.Errorf("empty message stored: %+v", msg)
		}
	}
}

func TestRunEthicalIntervention(t *testing.T) {
	llm := &fakeLLM{
		turnText: func(n int) string {
			if n == 1 {
				return "that proposal is stupid and you know it"
			}
			return fmt.Sprintf("reasoned contribution number %d", n)
		},
	}
	o, st, cfg := setupOrchestrator(t, llm)
	cfg.Interventions.MinMessages = 1
	ctx := context.Background()

	debateID, _ := st.CreateDebate(ctx, "proj-1", store.StatusPending)
	if err := o.Run(ctx, "proj-1", debateID, testClusters); err != nil {
		t.Fatal(err)
	}

	interventions, _ := st.Interventions(ctx, debateID)
	var ethical bool
	for _, iv := range interventions {
		if iv.Type == InterventionEthical {
			ethical = true
		}
	}
	if !ethical {
		t.Error("insult in agent message did not trigger ethical intervention")
	}
}

func TestRunTruncatesLongTurns(t *testing.T) {
	longText := strings.Repeat("word ", 300)
	llm := &fakeLLM{turnText: func(int) string { return longText }}
	o, st, cfg := setupOrchestrator(t, llm)
	ctx := context.Background()

	debateID, _ := st.CreateDebate(ctx, "proj-1", store.StatusPending)
	if err := o.Run(ctx, "proj-1", debateID, testClusters); err != nil {
		t.Fatal(err)
	}

	messages, _ := st.Messages(ctx, debateID)
	for _, msg := range messages {
		if msg.MessageType != store.TypeAgentMessage {
			continue
		}
		if n := len(strings.Fields(msg.Content)); n > cfg.Debate.AgentMessageMaxWords {
			t.Errorf("agent message has %d words, budget is %d", n, cfg.Debate.AgentMessageMaxWords)
		}
	}
}

func TestRunnerSingleOwner(t *testing.T) {
	llm := &fakeLLM{}
	o, st, _ := setupOrchestrator(t, llm)
	runner := NewRunner(o)
	ctx := context.Background()

	debateID, _ := st.CreateDebate(ctx, "proj-1", store.StatusPending)
	done, err := runner.Start(ctx, "proj-1", debateID, testClusters)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := runner.Start(ctx, "proj-1", debateID, testClusters); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start err = %v, want ErrAlreadyRunning", err)
	}

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("debate task did not finish")
	}
	if runner.Running(debateID) {
		t.Error("task still registered after completion")
	}

	d, _ := st.GetDebate(ctx, debateID)
	if d.Status != store.StatusCompleted {
		t.Errorf("status = %s, want completed", d.Status)
	}
}

func TestRunnerCancel(t *testing.T) {
	block := make(chan struct{})
	llm := &blockingLLM{inner: &fakeLLM{}, block: block}
	o, st, _ := setupOrchestrator(t, llm)
	runner := NewRunner(o)
	ctx := context.Background()

	debateID, _ := st.CreateDebate(ctx, "proj-1", store.StatusPending)
	done, err := runner.Start(ctx, "proj-1", debateID, testClusters)
	if err != nil {
		t.Fatal(err)
	}

	if !runner.Cancel(debateID) {
		t.Fatal("Cancel did not find the task")
	}
	close(block)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled task did not finish")
	}

	d, _ := st.GetDebate(ctx, debateID)
	if d.Status != store.StatusCancelled {
		t.Errorf("status = %s, want cancelled", d.Status)
	}
	if d.ErrorText == "" {
		t.Error("cancelled debate must carry an error message")
	}
}

// blockingLLM parks every call until released, or until the context dies.
type blockingLLM struct {
	inner *fakeLLM
	block chan struct{}
}

func (b *blockingLLM) DefaultModel() string { return b.inner.DefaultModel() }

func (b *blockingLLM) Chat(ctx context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	select {
	case <-b.block:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.inner.Chat(ctx, req)
}

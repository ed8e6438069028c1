// Package debate runs simulated multi-agent debates. Agents argue from
// personas distilled out of submission clusters while a moderator watches
// for repetition, drift, stalemates, and inappropriate language.
package debate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/juliuspor/Harmony/internal/cluster"
	"github.com/juliuspor/Harmony/internal/config"
	"github.com/juliuspor/Harmony/internal/consensus"
	"github.com/juliuspor/Harmony/internal/provider"
	"github.com/juliuspor/Harmony/internal/semantic"
	"github.com/juliuspor/Harmony/internal/store"
)

const (
	orchestratorID   = "orchestrator"
	orchestratorName = "Moderator"
)

type debateAgent struct {
	id      string
	persona Persona
}

// Orchestrator owns the full lifecycle of one debate: cluster, cast agents,
// run the turn loop, then score and summarize the result.
type Orchestrator struct {
	store    *store.Store
	llm      provider.LLMProvider
	encoder  *semantic.Encoder
	engine   *cluster.Engine
	analyzer *consensus.Analyzer
	cfg      *config.Config
}

func NewOrchestrator(st *store.Store, llm provider.LLMProvider, encoder *semantic.Encoder, engine *cluster.Engine, analyzer *consensus.Analyzer, cfg *config.Config) *Orchestrator {
	return &Orchestrator{store: st, llm: llm, encoder: encoder, engine: engine, analyzer: analyzer, cfg: cfg}
}

// Run drives a debate to completion. Any terminal error transitions the
// debate to cancelled with the error recorded; per-cluster persona failures
// and empty generations are skipped instead.
func (o *Orchestrator) Run(ctx context.Context, projectID, debateID string, clusters [][]string) error {
	if err := o.run(ctx, projectID, debateID, clusters); err != nil {
		slog.Error("Debate failed", "debate_id", debateID, "error", err)
		msg := fmt.Sprintf("Debate execution failed: %v", err)
		if updateErr := o.store.UpdateDebateStatus(context.WithoutCancel(ctx), debateID, store.StatusCancelled, nil, msg); updateErr != nil {
			slog.Error("Failed to update debate status", "debate_id", debateID, "error", updateErr)
		}
		return err
	}
	return nil
}

func (o *Orchestrator) run(ctx context.Context, projectID, debateID string, clusters [][]string) error {
	slog.Info("Starting debate", "debate_id", debateID, "project_id", projectID)
	if err := o.store.UpdateDebateStatus(ctx, debateID, store.StatusRunning, nil, ""); err != nil {
		return err
	}

	if clusters == nil {
		var err error
		clusters, err = o.clusterProject(ctx, projectID)
		if err != nil {
			return err
		}
	}
	if len(clusters) == 0 {
		return ErrEmptyClusters
	}

	agents, err := o.castAgents(ctx, debateID, clusters)
	if err != nil {
		return err
	}
	if err := o.store.AddAgent(ctx, debateID, store.Agent{
		AgentID:        orchestratorID,
		AgentName:      orchestratorName,
		ClusterID:      -1,
		PersonaSummary: "Facilitates productive debate",
	}); err != nil {
		return err
	}

	mon := &monitor{
		encoder:     o.encoder,
		cfg:         o.cfg.Interventions,
		maxRounds:   o.cfg.Debate.MaxRounds,
		maxMessages: o.cfg.Debate.MaxMessages,
	}

	round, messageCount, err := o.runLoop(ctx, debateID, agents, mon)
	if err != nil {
		return err
	}

	closing := fmt.Sprintf("The debate has concluded after %d rounds with %d messages. Thank you all for your contributions.", round, messageCount)
	if _, err := o.store.AddMessage(ctx, debateID, orchestratorID, orchestratorName, closing, round, store.TypeOrchestratorMessage); err != nil {
		return err
	}

	score, err := o.finalize(ctx, debateID)
	if err != nil {
		return err
	}

	slog.Info("Debate completed", "debate_id", debateID, "rounds", round, "messages", messageCount, "score", score)
	return o.store.UpdateDebateStatus(ctx, debateID, store.StatusCompleted, &score, "")
}

func (o *Orchestrator) clusterProject(ctx context.Context, projectID string) ([][]string, error) {
	subs, err := o.store.Submissions(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("%w: project %s", ErrNoSubmissions, projectID)
	}
	slog.Info("Clustering submissions", "project_id", projectID, "count", len(subs))

	texts := make([]string, len(subs))
	embeddings := make([][]float32, len(subs))
	for i, sub := range subs {
		texts[i] = sub.Content
		embeddings[i] = sub.Embedding
	}
	result, err := o.engine.ClusterEmbedded(texts, embeddings)
	if err != nil {
		return nil, err
	}
	slog.Info("Clustered submissions", "groups", result.NumGroups, "silhouette", result.Silhouette)
	return result.Clusters, nil
}

// castAgents generates one persona per non-empty cluster. A failed persona
// skips that cluster; only a full wipeout is fatal.
func (o *Orchestrator) castAgents(ctx context.Context, debateID string, clusters [][]string) ([]debateAgent, error) {
	var agents []debateAgent
	for i, clusterTexts := range clusters {
		if len(clusterTexts) == 0 {
			slog.Warn("Skipping empty cluster", "cluster", i)
			continue
		}
		persona, err := GeneratePersona(ctx, o.llm, clusterTexts, o.cfg.Debate.MaxPersonaSubmissions, o.cfg.Debate.PersonaTemperature)
		if err != nil {
			slog.Error("Failed to create agent for cluster", "cluster", i, "error", err)
			continue
		}
		agentID := fmt.Sprintf("agent_%d", i)
		agents = append(agents, debateAgent{id: agentID, persona: *persona})
		if err := o.store.AddAgent(ctx, debateID, store.Agent{
			AgentID:        agentID,
			AgentName:      persona.Role,
			ClusterID:      i,
			PersonaSummary: persona.Backstory,
		}); err != nil {
			return nil, err
		}
		slog.Info("Created agent", "agent_id", agentID, "role", persona.Role)
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("%w: %d clusters", ErrNoAgentsCreated, len(clusters))
	}
	return agents, nil
}

// runLoop plays rounds of round-robin turns until a limit intervention
// fires or the loop conditions stop holding. It returns the final round
// number and message count.
func (o *Orchestrator) runLoop(ctx context.Context, debateID string, agents []debateAgent, mon *monitor) (int, int, error) {
	round := 1
	messageCount := 0
	current := 0

	opening := fmt.Sprintf("Welcome to the debate. We have %d perspectives to explore. Let's begin with %s.", len(agents), agents[0].persona.Role)
	if _, err := o.store.AddMessage(ctx, debateID, orchestratorID, orchestratorName, opening, round, store.TypeOrchestratorMessage); err != nil {
		return round, messageCount, err
	}
	history := []provider.Message{{Role: "assistant", Content: opening}}
	messageCount++

	for round <= o.cfg.Debate.MaxRounds && messageCount < o.cfg.Debate.MaxMessages {
		if err := ctx.Err(); err != nil {
			return round, messageCount, err
		}
		agent := agents[current]

		utterance, err := o.generateTurn(ctx, agent, history)
		if err != nil {
			slog.Warn("Turn generation failed, skipping", "agent_id", agent.id, "round", round, "error", err)
			utterance = ""
		}
		if utterance == "" {
			current = (current + 1) % len(agents)
			if current == 0 {
				round++
			}
			continue
		}

		if _, err := o.store.AddMessage(ctx, debateID, agent.id, agent.persona.Role, utterance, round, store.TypeAgentMessage); err != nil {
			return round, messageCount, err
		}
		history = append(history, provider.Message{Role: "user", Content: fmt.Sprintf("%s: %s", agent.persona.Role, utterance)})
		messageCount++

		stored, err := o.store.Messages(ctx, debateID)
		if err != nil {
			return round, messageCount, err
		}
		iv, err := mon.check(ctx, stored, round)
		if err != nil {
			return round, messageCount, err
		}
		if iv != nil {
			if _, err := o.store.AddIntervention(ctx, debateID, iv.Type, iv.Reason, iv.Message); err != nil {
				return round, messageCount, err
			}
			if _, err := o.store.AddMessage(ctx, debateID, orchestratorID, orchestratorName, iv.Message, round, store.TypeOrchestratorMessage); err != nil {
				return round, messageCount, err
			}
			history = append(history, provider.Message{Role: "assistant", Content: fmt.Sprintf("%s: %s", orchestratorName, iv.Message)})
			messageCount++
			slog.Info("Moderator intervened", "debate_id", debateID, "type", iv.Type, "round", round)

			if iv.Type == InterventionMaxRounds || iv.Type == InterventionMaxMessages {
				break
			}
		}

		current = (current + 1) % len(agents)
		if current == 0 {
			round++
		}
	}
	return round, messageCount, nil
}

// generateTurn produces one utterance for an agent given its persona and a
// rolling window of recent history, enforcing the word budget.
func (o *Orchestrator) generateTurn(ctx context.Context, agent debateAgent, history []provider.Message) (string, error) {
	conversation := []provider.Message{{Role: "system", Content: o.systemPrompt(agent.persona)}}
	if limit := o.cfg.Debate.ContextMessageLimit; len(history) > limit {
		history = history[len(history)-limit:]
	}
	conversation = append(conversation, history...)

	resp, err := o.llm.Chat(ctx, &provider.ChatRequest{
		Messages:    conversation,
		MaxTokens:   int(float64(o.cfg.Model.MaxTokens) * o.cfg.Debate.AgentTokenRatio),
		Temperature: o.cfg.Model.Temperature,
	})
	if err != nil {
		return "", err
	}
	return truncateWords(resp.Content, o.cfg.Debate.AgentMessageMaxWords), nil
}

func (o *Orchestrator) systemPrompt(p Persona) string {
	return fmt.Sprintf(`You are %s. Your goal: %s.

Background: %s

You are participating in a structured debate. Guidelines:
- Present your perspective clearly and concisely
- Listen to and respond to other agents' viewpoints
- Look for areas of agreement and potential synthesis
- Stay on topic and avoid repetition
- Maintain respectful and constructive discourse
- Keep responses under %d words`, p.Role, p.Goal, p.Backstory, o.cfg.Debate.AgentMessageMaxWords)
}

// finalize computes and stores the consensus analysis plus the structured
// summary, returning the composite score.
func (o *Orchestrator) finalize(ctx context.Context, debateID string) (float64, error) {
	messages, err := o.store.Messages(ctx, debateID)
	if err != nil {
		return 0, err
	}
	result, err := o.analyzer.Analyze(ctx, messages)
	if err != nil {
		return 0, fmt.Errorf("consensus analysis: %w", err)
	}
	if err := o.store.UpsertConsensus(ctx, store.Consensus{
		DebateID:          debateID,
		ConsensusScore:    result.ConsensusScore,
		SemanticAlignment: result.SemanticAlignment / 100.0,
		AgreementRatio:    result.AgreementRatio / 100.0,
		ConvergenceScore:  result.ConvergenceScore / 100.0,
		ResolutionRate:    result.ResolutionRate / 100.0,
		Sentiment:         result.Sentiment,
	}); err != nil {
		return 0, err
	}

	summary, err := o.generateSummary(ctx, messages)
	if err != nil {
		slog.Warn("Summary generation failed, storing empty summary", "debate_id", debateID, "error", err)
		summary = &Summary{}
	}
	if err := o.store.UpsertSummary(ctx, store.Summary{
		DebateID:      debateID,
		KeyAlignments: summary.KeyAlignments,
		KeyInsights:   summary.KeyInsights,
		ProArguments:  summary.ProArguments,
		ConArguments:  summary.ConArguments,
	}); err != nil {
		return 0, err
	}
	return result.ConsensusScore, nil
}

func truncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return strings.TrimSpace(s)
	}
	return strings.Join(words[:max], " ")
}

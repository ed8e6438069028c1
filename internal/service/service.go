// Package service is the facade the gateway and CLI speak to. It wires the
// store, clustering engine, debate runner, and consensus analyzer together
// behind one API.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/juliuspor/Harmony/internal/cluster"
	"github.com/juliuspor/Harmony/internal/consensus"
	"github.com/juliuspor/Harmony/internal/debate"
	"github.com/juliuspor/Harmony/internal/semantic"
	"github.com/juliuspor/Harmony/internal/store"
)

type Service struct {
	store    *store.Store
	encoder  *semantic.Encoder
	engine   *cluster.Engine
	analyzer *consensus.Analyzer
	runner   *debate.Runner
}

func New(st *store.Store, encoder *semantic.Encoder, engine *cluster.Engine, analyzer *consensus.Analyzer, runner *debate.Runner) *Service {
	return &Service{store: st, encoder: encoder, engine: engine, analyzer: analyzer, runner: runner}
}

// SubmissionInput is one piece of user text to store.
type SubmissionInput struct {
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

// AddSubmissions embeds and stores texts for a project, returning the new
// submission ids in input order.
func (s *Service) AddSubmissions(ctx context.Context, projectID string, inputs []SubmissionInput) ([]string, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no submissions given")
	}
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if in.Content == "" {
			return nil, errors.New("submission content must not be empty")
		}
		vec, err := s.encoder.EncodeOne(ctx, in.Content)
		if err != nil {
			return nil, fmt.Errorf("embed submission: %w", err)
		}
		id, err := s.store.AddSubmission(ctx, projectID, in.UserID, in.Content, vec)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	slog.Info("Stored submissions", "project_id", projectID, "count", len(ids))
	return ids, nil
}

// Cluster groups a project's stored submissions using their persisted
// embeddings.
func (s *Service) Cluster(ctx context.Context, projectID string) (*cluster.Result, error) {
	subs, err := s.store.Submissions(ctx, projectID)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(subs))
	embeddings := make([][]float32, len(subs))
	for i, sub := range subs {
		texts[i] = sub.Content
		embeddings[i] = sub.Embedding
	}
	return s.engine.ClusterEmbedded(texts, embeddings)
}

// CreateDebate registers a pending debate and launches its background task.
// The returned record reflects the pending state; callers poll GetDebate
// for progress.
func (s *Service) CreateDebate(ctx context.Context, projectID string, clusters [][]string) (*store.Debate, error) {
	debateID, err := s.store.CreateDebate(ctx, projectID, store.StatusPending)
	if err != nil {
		return nil, err
	}
	if _, err := s.runner.Start(ctx, projectID, debateID, clusters); err != nil {
		return nil, err
	}
	return s.store.GetDebate(ctx, debateID)
}

// CancelDebate stops a running debate task, if one exists.
func (s *Service) CancelDebate(debateID string) bool {
	return s.runner.Cancel(debateID)
}

// DebateView is the full read model of one debate.
type DebateView struct {
	Debate        store.Debate         `json:"debate"`
	Agents        []store.Agent        `json:"agents"`
	Messages      []store.Message      `json:"messages"`
	Interventions []store.Intervention `json:"interventions"`
}

func (s *Service) GetDebate(ctx context.Context, debateID string) (*DebateView, error) {
	d, err := s.store.GetDebate(ctx, debateID)
	if err != nil {
		return nil, err
	}
	agents, err := s.store.Agents(ctx, debateID)
	if err != nil {
		return nil, err
	}
	messages, err := s.store.Messages(ctx, debateID)
	if err != nil {
		return nil, err
	}
	interventions, err := s.store.Interventions(ctx, debateID)
	if err != nil {
		return nil, err
	}
	return &DebateView{Debate: *d, Agents: agents, Messages: messages, Interventions: interventions}, nil
}

func (s *Service) ListDebates(ctx context.Context, projectID string) ([]store.Debate, error) {
	return s.store.ListDebates(ctx, projectID)
}

// ConsensusView combines the stored analysis with the alignment matrix and
// summary.
type ConsensusView struct {
	Consensus store.Consensus            `json:"consensus"`
	Matrix    *consensus.AlignmentMatrix `json:"matrix"`
	Summary   *store.Summary             `json:"summary,omitempty"`
}

// GetConsensus returns the consensus analysis for a debate, computing and
// storing it on first access when the debate finished without one.
func (s *Service) GetConsensus(ctx context.Context, debateID string) (*ConsensusView, error) {
	if _, err := s.store.GetDebate(ctx, debateID); err != nil {
		return nil, err
	}

	stored, err := s.store.GetConsensus(ctx, debateID)
	if errors.Is(err, store.ErrNotFound) {
		stored, err = s.computeConsensus(ctx, debateID)
	}
	if err != nil {
		return nil, err
	}

	agents, err := s.store.Agents(ctx, debateID)
	if err != nil {
		return nil, err
	}
	messages, err := s.store.Messages(ctx, debateID)
	if err != nil {
		return nil, err
	}
	matrix, err := s.analyzer.PairwiseAlignment(ctx, agents, messages)
	if err != nil {
		return nil, err
	}

	view := &ConsensusView{Consensus: *stored, Matrix: matrix}
	if summary, err := s.store.GetSummary(ctx, debateID); err == nil {
		view.Summary = summary
	}
	return view, nil
}

func (s *Service) computeConsensus(ctx context.Context, debateID string) (*store.Consensus, error) {
	messages, err := s.store.Messages(ctx, debateID)
	if err != nil {
		return nil, err
	}
	result, err := s.analyzer.Analyze(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("consensus analysis: %w", err)
	}
	c := store.Consensus{
		DebateID:          debateID,
		ConsensusScore:    result.ConsensusScore,
		SemanticAlignment: result.SemanticAlignment / 100.0,
		AgreementRatio:    result.AgreementRatio / 100.0,
		ConvergenceScore:  result.ConvergenceScore / 100.0,
		ResolutionRate:    result.ResolutionRate / 100.0,
		Sentiment:         result.Sentiment,
	}
	if err := s.store.UpsertConsensus(ctx, c); err != nil {
		return nil, err
	}
	slog.Info("Computed consensus lazily", "debate_id", debateID, "score", c.ConsensusScore)
	return s.store.GetConsensus(ctx, debateID)
}

// ClearProject removes a project's submissions, reporting the count.
func (s *Service) ClearProject(ctx context.Context, projectID string) (int, error) {
	return s.store.ClearProject(ctx, projectID)
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateDebate inserts a new debate in the given initial status and returns
// its generated id.
func (s *Store) CreateDebate(ctx context.Context, projectID, status string) (string, error) {
	debateID := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO debates (debate_id, project_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		debateID, projectID, status, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to create debate: %w", err)
	}
	return debateID, nil
}

func (s *Store) GetDebate(ctx context.Context, debateID string) (*Debate, error) {
	var d Debate
	var score sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT debate_id, project_id, status, consensus_score, error_text, created_at, updated_at
		FROM debates WHERE debate_id = ?`, debateID).
		Scan(&d.DebateID, &d.ProjectID, &d.Status, &score, &d.ErrorText, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("debate %s: %w", debateID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debate: %w", err)
	}
	if score.Valid {
		d.ConsensusScore = &score.Float64
	}
	return &d, nil
}

// UpdateDebateStatus transitions a debate and optionally records its final
// score or error text.
func (s *Store) UpdateDebateStatus(ctx context.Context, debateID, status string, score *float64, errorText string) error {
	query := `UPDATE debates SET status = ?, updated_at = ?`
	args := []any{status, time.Now().UTC()}
	if score != nil {
		query += `, consensus_score = ?`
		args = append(args, *score)
	}
	if errorText != "" {
		query += `, error_text = ?`
		args = append(args, errorText)
	}
	query += ` WHERE debate_id = ?`
	args = append(args, debateID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update debate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("debate %s: %w", debateID, ErrNotFound)
	}
	return nil
}

// ListDebates returns a project's debates, newest first.
func (s *Store) ListDebates(ctx context.Context, projectID string) ([]Debate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT debate_id, project_id, status, consensus_score, error_text, created_at, updated_at
		FROM debates WHERE project_id = ? ORDER BY created_at DESC, rowid DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list debates: %w", err)
	}
	defer rows.Close()

	var debates []Debate
	for rows.Next() {
		var d Debate
		var score sql.NullFloat64
		if err := rows.Scan(&d.DebateID, &d.ProjectID, &d.Status, &score, &d.ErrorText, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan debate: %w", err)
		}
		if score.Valid {
			d.ConsensusScore = &score.Float64
		}
		debates = append(debates, d)
	}
	return debates, rows.Err()
}

// AddAgent registers a debate participant. Re-adding the same agent id
// replaces its row.
func (s *Store) AddAgent(ctx context.Context, debateID string, agent Agent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO debate_agents (debate_id, agent_id, agent_name, cluster_id, persona_summary)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(debate_id, agent_id) DO UPDATE SET
			agent_name = excluded.agent_name,
			cluster_id = excluded.cluster_id,
			persona_summary = excluded.persona_summary`,
		debateID, agent.AgentID, agent.AgentName, agent.ClusterID, agent.PersonaSummary)
	if err != nil {
		return fmt.Errorf("failed to add agent: %w", err)
	}
	return nil
}

func (s *Store) Agents(ctx context.Context, debateID string) ([]Agent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT agent_id, agent_name, cluster_id, persona_summary
		FROM debate_agents WHERE debate_id = ? ORDER BY rowid`, debateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.AgentID, &a.AgentName, &a.ClusterID, &a.PersonaSummary); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// AddMessage appends a transcript message and returns its generated id.
func (s *Store) AddMessage(ctx context.Context, debateID, agentID, agentName, content string, round int, messageType string) (string, error) {
	messageID := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO debate_messages (message_id, debate_id, agent_id, agent_name, content, round_number, message_type, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		messageID, debateID, agentID, agentName, content, round, messageType, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to add message: %w", err)
	}
	return messageID, nil
}

// Messages returns a debate's transcript ordered by round, then timestamp,
// then insertion order.
func (s *Store) Messages(ctx context.Context, debateID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, debate_id, agent_id, agent_name, content, round_number, message_type, timestamp
		FROM debate_messages WHERE debate_id = ?
		ORDER BY round_number, timestamp, rowid`, debateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.MessageID, &m.DebateID, &m.AgentID, &m.AgentName, &m.Content, &m.RoundNumber, &m.MessageType, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// AddIntervention records a moderator intervention. An empty message falls
// back to the reason text.
func (s *Store) AddIntervention(ctx context.Context, debateID, interventionType, reason, message string) (string, error) {
	if message == "" {
		message = reason
	}
	interventionID := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interventions (intervention_id, debate_id, intervention_type, reason, message, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		interventionID, debateID, interventionType, reason, message, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to add intervention: %w", err)
	}
	return interventionID, nil
}

func (s *Store) Interventions(ctx context.Context, debateID string) ([]Intervention, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT intervention_id, debate_id, intervention_type, reason, message, timestamp
		FROM interventions WHERE debate_id = ? ORDER BY timestamp, rowid`, debateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interventions: %w", err)
	}
	defer rows.Close()

	var interventions []Intervention
	for rows.Next() {
		var iv Intervention
		if err := rows.Scan(&iv.InterventionID, &iv.DebateID, &iv.Type, &iv.Reason, &iv.Message, &iv.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan intervention: %w", err)
		}
		interventions = append(interventions, iv)
	}
	return interventions, rows.Err()
}

// UpsertConsensus stores or replaces the consensus analysis for a debate.
func (s *Store) UpsertConsensus(ctx context.Context, c Consensus) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO consensus (debate_id, consensus_score, semantic_alignment, agreement_ratio, convergence_score, resolution_rate, sentiment, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(debate_id) DO UPDATE SET
			consensus_score = excluded.consensus_score,
			semantic_alignment = excluded.semantic_alignment,
			agreement_ratio = excluded.agreement_ratio,
			convergence_score = excluded.convergence_score,
			resolution_rate = excluded.resolution_rate,
			sentiment = excluded.sentiment,
			calculated_at = excluded.calculated_at`,
		c.DebateID, c.ConsensusScore, c.SemanticAlignment, c.AgreementRatio, c.ConvergenceScore, c.ResolutionRate, c.Sentiment, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert consensus: %w", err)
	}
	return nil
}

func (s *Store) GetConsensus(ctx context.Context, debateID string) (*Consensus, error) {
	var c Consensus
	err := s.db.QueryRowContext(ctx, `
		SELECT debate_id, consensus_score, semantic_alignment, agreement_ratio, convergence_score, resolution_rate, sentiment, calculated_at
		FROM consensus WHERE debate_id = ?`, debateID).
		Scan(&c.DebateID, &c.ConsensusScore, &c.SemanticAlignment, &c.AgreementRatio, &c.ConvergenceScore, &c.ResolutionRate, &c.Sentiment, &c.CalculatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("consensus for debate %s: %w", debateID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consensus: %w", err)
	}
	return &c, nil
}

// UpsertSummary stores or replaces a debate summary. The list fields are
// stored as JSON arrays.
func (s *Store) UpsertSummary(ctx context.Context, sum Summary) error {
	alignments, err := marshalList(sum.KeyAlignments)
	if err != nil {
		return err
	}
	insights, err := marshalList(sum.KeyInsights)
	if err != nil {
		return err
	}
	pro, err := marshalList(sum.ProArguments)
	if err != nil {
		return err
	}
	con, err := marshalList(sum.ConArguments)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO summaries (debate_id, key_alignments, key_insights, pro_arguments, con_arguments, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(debate_id) DO UPDATE SET
			key_alignments = excluded.key_alignments,
			key_insights = excluded.key_insights,
			pro_arguments = excluded.pro_arguments,
			con_arguments = excluded.con_arguments,
			generated_at = excluded.generated_at`,
		sum.DebateID, alignments, insights, pro, con, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}
	return nil
}

func (s *Store) GetSummary(ctx context.Context, debateID string) (*Summary, error) {
	var sum Summary
	var alignments, insights, pro, con string
	err := s.db.QueryRowContext(ctx, `
		SELECT debate_id, key_alignments, key_insights, pro_arguments, con_arguments, generated_at
		FROM summaries WHERE debate_id = ?`, debateID).
		Scan(&sum.DebateID, &alignments, &insights, &pro, &con, &sum.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("summary for debate %s: %w", debateID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	for _, pair := range []struct {
		raw string
		out *[]string
	}{
		{alignments, &sum.KeyAlignments},
		{insights, &sum.KeyInsights},
		{pro, &sum.ProArguments},
		{con, &sum.ConArguments},
	} {
		if err := json.Unmarshal([]byte(pair.raw), pair.out); err != nil {
			return nil, fmt.Errorf("failed to decode summary list: %w", err)
		}
	}
	return &sum, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary list: %w", err)
	}
	return string(b), nil
}

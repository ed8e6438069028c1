package consensus

import (
	"context"
	"fmt"

	"github.com/juliuspor/Harmony/internal/semantic"
	"github.com/juliuspor/Harmony/internal/store"
)

// AlignmentMatrix holds pairwise similarity between every registered
// agent's latest position, in agent registration order.
type AlignmentMatrix struct {
	AgentIDs   []string
	AgentNames []string
	Matrix     [][]float64
}

// PairwiseAlignment builds the NxN similarity matrix. Agents that never
// spoke get an empty-string position so the matrix stays square. Fewer
// than two agents yields an empty matrix.
func (a *Analyzer) PairwiseAlignment(ctx context.Context, agents []store.Agent, messages []store.Message) (*AlignmentMatrix, error) {
	out := &AlignmentMatrix{}
	for _, agent := range agents {
		out.AgentIDs = append(out.AgentIDs, agent.AgentID)
		out.AgentNames = append(out.AgentNames, agent.AgentName)
	}
	if len(agents) < 2 {
		out.Matrix = [][]float64{}
		return out, nil
	}

	positions := latestPositions(messages)
	byAgent := make(map[string]string, len(positions))
	for _, p := range positions {
		byAgent[p.agentID] = p.content
	}
	texts := make([]string, len(agents))
	for i, agent := range agents {
		texts[i] = byAgent[agent.AgentID]
	}

	embeddings, err := a.encoder.Encode(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed agent positions: %w", err)
	}

	n := len(embeddings)
	out.Matrix = make([][]float64, n)
	for i := range out.Matrix {
		out.Matrix[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				out.Matrix[i][j] = 1.0
				continue
			}
			out.Matrix[i][j] = semantic.CosineSimilarity(embeddings[i], embeddings[j])
		}
	}
	return out, nil
}

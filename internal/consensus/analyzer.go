// Package consensus scores how far debate participants moved toward
// agreement, combining semantic alignment, keyword-level agreement,
// convergence over rounds, and argument resolution into one weighted score.
package consensus

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/juliuspor/Harmony/internal/config"
	"github.com/juliuspor/Harmony/internal/semantic"
	"github.com/juliuspor/Harmony/internal/store"
)

var agreementKeywords = []string{
	"agree", "support", "same view", "concur", "endorse", "approve",
	"align", "similar", "shared", "common ground", "together", "united",
}

var disagreementKeywords = []string{
	"disagree", "oppose", "against", "different", "contrary", "reject",
	"conflict", "dispute", "challenge", "differ", "divergent",
}

var resolutionIndicators = []string{
	"address", "respond", "resolve", "acknowledge", "understand", "consider",
	"accept", "incorporate", "modify", "refine", "update", "revise",
}

var contentionMarkers = []string{"but", "however", "although", "challenge", "question"}

// Result carries the composite score on a 0-100 scale and each sub-metric
// already converted to a percentage.
type Result struct {
	ConsensusScore    float64
	SemanticAlignment float64
	AgreementRatio    float64
	ConvergenceScore  float64
	ResolutionRate    float64
	Sentiment         string
}

type Analyzer struct {
	encoder *semantic.Encoder
	cfg     config.ConsensusConfig
}

func NewAnalyzer(encoder *semantic.Encoder, cfg config.ConsensusConfig) *Analyzer {
	return &Analyzer{encoder: encoder, cfg: cfg}
}

// Analyze scores a transcript. Sub-metrics degrade to their neutral
// defaults rather than erroring on short transcripts: alignment and
// convergence to 0, agreement to 0.5, resolution to 1.0.
func (a *Analyzer) Analyze(ctx context.Context, messages []store.Message) (*Result, error) {
	alignment, err := a.semanticAlignment(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("semantic alignment: %w", err)
	}
	agreement := agreementRatio(messages)
	convergence, err := a.convergence(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("convergence: %w", err)
	}
	resolution := resolutionRate(messages)

	score := alignment*100*a.cfg.SemanticWeight +
		agreement*100*a.cfg.AgreementWeight +
		convergence*100*a.cfg.ConvergenceWeight +
		resolution*100*a.cfg.ResolutionWeight

	return &Result{
		ConsensusScore:    round2(score),
		SemanticAlignment: round2(alignment * 100),
		AgreementRatio:    round2(agreement * 100),
		ConvergenceScore:  round2(convergence * 100),
		ResolutionRate:    round2(resolution * 100),
		Sentiment:         transcriptSentiment(messages),
	}, nil
}

// semanticAlignment embeds each participant's latest position and averages
// pairwise cosine similarity. The first message of an agent's highest round
// is the position that counts.
func (a *Analyzer) semanticAlignment(ctx context.Context, messages []store.Message) (float64, error) {
	if len(messages) < 2 {
		return 0, nil
	}
	positions := latestPositions(messages)
	if len(positions) < 2 {
		return 0, nil
	}
	texts := make([]string, 0, len(positions))
	for _, p := range positions {
		texts = append(texts, p.content)
	}
	embeddings, err := a.encoder.Encode(ctx, texts)
	if err != nil {
		return 0, err
	}
	return semantic.MeanPairwiseSimilarity(embeddings), nil
}

type position struct {
	agentID string
	content string
	round   int
}

// latestPositions keeps, per agent, the first message seen from that
// agent's highest round. Output preserves first-appearance order.
func latestPositions(messages []store.Message) []position {
	index := make(map[string]int)
	var positions []position
	for _, msg := range messages {
		i, ok := index[msg.AgentID]
		if !ok {
			index[msg.AgentID] = len(positions)
			positions = append(positions, position{agentID: msg.AgentID, content: msg.Content, round: msg.RoundNumber})
			continue
		}
		if msg.RoundNumber > positions[i].round {
			positions[i] = position{agentID: msg.AgentID, content: msg.Content, round: msg.RoundNumber}
		}
	}
	return positions
}

// agreementRatio counts messages containing agreement keywords against
// those containing disagreement keywords. Each message counts at most once
// per category. With no hits in either category the ratio is a neutral 0.5.
func agreementRatio(messages []store.Message) float64 {
	var agree, disagree int
	for _, msg := range messages {
		content := strings.ToLower(msg.Content)
		if containsAny(content, agreementKeywords) {
			agree++
		}
		if containsAny(content, disagreementKeywords) {
			disagree++
		}
	}
	total := agree + disagree
	if total == 0 {
		return 0.5
	}
	return float64(agree) / float64(total)
}

// convergence compares mean pairwise similarity between agents' late
// positions against their early positions. The transcript splits at the
// midpoint round; only agents speaking in both halves participate.
func (a *Analyzer) convergence(ctx context.Context, messages []store.Message) (float64, error) {
	if len(messages) < 4 {
		return 0, nil
	}
	maxRound := 0
	for _, msg := range messages {
		if msg.RoundNumber > maxRound {
			maxRound = msg.RoundNumber
		}
	}
	midpoint := maxRound / 2

	earlyLast := make(map[string]string)
	lateLast := make(map[string]string)
	var order []string
	for _, msg := range messages {
		if _, seen := earlyLast[msg.AgentID]; !seen {
			if _, seenLate := lateLast[msg.AgentID]; !seenLate {
				order = append(order, msg.AgentID)
			}
		}
		if msg.RoundNumber <= midpoint {
			earlyLast[msg.AgentID] = msg.Content
		} else {
			lateLast[msg.AgentID] = msg.Content
		}
	}

	var earlyReps, lateReps []string
	for _, agentID := range order {
		early, inEarly := earlyLast[agentID]
		late, inLate := lateLast[agentID]
		if inEarly && inLate {
			earlyReps = append(earlyReps, early)
			lateReps = append(lateReps, late)
		}
	}
	if len(earlyReps) < 2 {
		return 0, nil
	}

	earlyVecs, err := a.encoder.Encode(ctx, earlyReps)
	if err != nil {
		return 0, err
	}
	lateVecs, err := a.encoder.Encode(ctx, lateReps)
	if err != nil {
		return 0, err
	}

	delta := semantic.MeanPairwiseSimilarity(lateVecs) - semantic.MeanPairwiseSimilarity(earlyVecs)
	if delta <= 0 {
		return 0, nil
	}
	return math.Min(1.0, delta/0.5), nil
}

// resolutionRate tracks which authors raised contentious points and which
// had their previous message addressed. No raised arguments means vacuous
// full resolution.
func resolutionRate(messages []store.Message) float64 {
	raised := make(map[string]bool)
	addressed := make(map[string]bool)
	for i, msg := range messages {
		content := strings.ToLower(msg.Content)
		if i > 0 && containsAny(content, resolutionIndicators) {
			addressed[messages[i-1].AgentID] = true
		}
		if containsAny(content, contentionMarkers) {
			raised[msg.AgentID] = true
		}
	}
	if len(raised) == 0 {
		return 1.0
	}
	rate := float64(len(addressed)) / float64(len(raised))
	if rate > 1.0 {
		rate = 1.0
	}
	return rate
}

func containsAny(content string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package debate

import (
	"context"
	"fmt"
	"strings"

	"github.com/juliuspor/Harmony/internal/config"
	"github.com/juliuspor/Harmony/internal/semantic"
	"github.com/juliuspor/Harmony/internal/store"
)

// Intervention types, in the order the monitor checks them.
const (
	InterventionMaxRounds   = "max_rounds"
	InterventionMaxMessages = "max_messages"
	InterventionRepetition  = "repetition"
	InterventionOffTopic    = "off_topic"
	InterventionStalemate   = "stalemate"
	InterventionEthical     = "ethical"
)

var insultKeywords = []string{"stupid", "idiot", "fool", "moron", "ridiculous", "nonsense"}

type intervention struct {
	Type    string
	Reason  string
	Message string
}

// monitor evaluates the stored transcript after each agent utterance and
// reports the highest-priority intervention, if any.
type monitor struct {
	encoder     *semantic.Encoder
	cfg         config.InterventionsConfig
	maxRounds   int
	maxMessages int
}

// check returns nil when the debate may continue as-is. Limit checks run
// unconditionally; the content heuristics only engage once the transcript
// has enough messages to judge.
func (m *monitor) check(ctx context.Context, messages []store.Message, round int) (*intervention, error) {
	if round >= m.maxRounds {
		return &intervention{
			Type:    InterventionMaxRounds,
			Reason:  fmt.Sprintf("Maximum rounds (%d) reached", m.maxRounds),
			Message: "The debate has reached the maximum number of rounds. Let's summarize the key points discussed.",
		}, nil
	}
	if len(messages) >= m.maxMessages {
		return &intervention{
			Type:    InterventionMaxMessages,
			Reason:  fmt.Sprintf("Maximum messages (%d) reached", m.maxMessages),
			Message: "The debate has reached the maximum number of messages. Let's wrap up with a summary.",
		}, nil
	}
	if len(messages) < m.cfg.MinMessages {
		return nil, nil
	}

	if iv, err := m.checkRepetition(ctx, messages); iv != nil || err != nil {
		return iv, err
	}
	if iv, err := m.checkOffTopic(ctx, messages); iv != nil || err != nil {
		return iv, err
	}
	if iv, err := m.checkStalemate(ctx, messages, round); iv != nil || err != nil {
		return iv, err
	}
	if m.cfg.DetectEthical {
		if iv := checkEthical(messages); iv != nil {
			return iv, nil
		}
	}
	return nil, nil
}

// checkRepetition embeds the trailing messages and flags the debate when
// they are all saying roughly the same thing.
func (m *monitor) checkRepetition(ctx context.Context, messages []store.Message) (*intervention, error) {
	recent := messages
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	if len(recent) < m.cfg.MinMessages {
		return nil, nil
	}
	texts := make([]string, len(recent))
	for i, msg := range recent {
		texts[i] = msg.Content
	}
	embeddings, err := m.encoder.Encode(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed recent messages: %w", err)
	}
	if semantic.MeanPairwiseSimilarity(embeddings) > m.cfg.RepetitionThreshold {
		return &intervention{
			Type:    InterventionRepetition,
			Reason:  "Similar points are being repeated",
			Message: "I notice similar points are being repeated. Let's move forward and explore new aspects of the topic or address different perspectives.",
		}, nil
	}
	return nil, nil
}

// checkOffTopic compares the opening of the debate against its latest
// messages. Low similarity means the discussion drifted.
func (m *monitor) checkOffTopic(ctx context.Context, messages []store.Message) (*intervention, error) {
	if len(messages) < 6 {
		return nil, nil
	}
	early := joinContents(messages[:3])
	recent := joinContents(messages[len(messages)-3:])
	embeddings, err := m.encoder.Encode(ctx, []string{early, recent})
	if err != nil {
		return nil, fmt.Errorf("embed topic anchors: %w", err)
	}
	if semantic.CosineSimilarity(embeddings[0], embeddings[1]) < m.cfg.OffTopicThreshold {
		return &intervention{
			Type:    InterventionOffTopic,
			Reason:  "Discussion has drifted off-topic",
			Message: "The discussion seems to have drifted from the original topic. Let's refocus on the core issues at hand.",
		}, nil
	}
	return nil, nil
}

// checkStalemate concatenates each of the trailing rounds and flags the
// debate when rounds keep restating the same arguments.
func (m *monitor) checkStalemate(ctx context.Context, messages []store.Message, round int) (*intervention, error) {
	if round < m.cfg.StalemateMinRound {
		return nil, nil
	}
	window := round
	if window > m.cfg.StalemateWindowRounds {
		window = m.cfg.StalemateWindowRounds
	}
	start := round - window + 1
	if start < 1 {
		start = 1
	}

	var roundTexts []string
	for r := start; r <= round; r++ {
		var parts []string
		for _, msg := range messages {
			if msg.RoundNumber == r {
				parts = append(parts, msg.Content)
			}
		}
		if len(parts) > 0 {
			roundTexts = append(roundTexts, strings.Join(parts, " "))
		}
	}
	if len(roundTexts) < m.cfg.MinMessages {
		return nil, nil
	}

	embeddings, err := m.encoder.Encode(ctx, roundTexts)
	if err != nil {
		return nil, fmt.Errorf("embed rounds: %w", err)
	}
	if semantic.MeanPairwiseSimilarity(embeddings) > m.cfg.StalemateThreshold {
		return &intervention{
			Type:    InterventionStalemate,
			Reason:  "Debate appears stalled with repeated arguments",
			Message: "It seems we're circling the same arguments. Let's try to synthesize the key points and identify areas of potential agreement or new angles to explore.",
		}, nil
	}
	return nil, nil
}

// checkEthical scans only the newest message for insult vocabulary.
func checkEthical(messages []store.Message) *intervention {
	last := strings.ToLower(messages[len(messages)-1].Content)
	for _, kw := range insultKeywords {
		if strings.Contains(last, kw) {
			return &intervention{
				Type:    InterventionEthical,
				Reason:  "Detected inappropriate language",
				Message: "Let's maintain a respectful tone. Please express disagreements constructively without personal attacks or inappropriate language.",
			}
		}
	}
	return nil
}

func joinContents(messages []store.Message) string {
	parts := make([]string, len(messages))
	for i, msg := range messages {
		parts[i] = msg.Content
	}
	return strings.Join(parts, " ")
}

package debate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/juliuspor/Harmony/internal/provider"
)

var (
	ErrNoSubmissions     = errors.New("no submissions found for project")
	ErrEmptyClusters     = errors.New("no clusters available")
	ErrNoAgentsCreated   = errors.New("no agents could be created from clusters")
	ErrMalformedResponse = errors.New("malformed model response")
	ErrEmptyClusterTexts = errors.New("cannot generate persona from empty cluster")
)

// Persona is the character an agent argues from, distilled from one
// cluster's submissions.
type Persona struct {
	Role      string `json:"role"`
	Goal      string `json:"goal"`
	Backstory string `json:"backstory"`
}

const personaPromptTemplate = `Based on the following opinions and ideas, create a coherent persona for a debate agent:

Opinions/Ideas:
%s

Create a persona with:
1. Role: A specific role/title (e.g., "Digital Marketing Strategist", "Brand Awareness Specialist")
2. Goal: What this agent wants to achieve in the debate (one sentence)
3. Backstory: A brief 2-3 sentence backstory that explains why this agent holds these views

Respond in the following JSON format:
{
    "role": "...",
    "goal": "...",
    "backstory": "..."
}`

// GeneratePersona asks the model for a role, goal, and backstory grounded
// in up to maxSubmissions representative texts from one cluster.
func GeneratePersona(ctx context.Context, llm provider.LLMProvider, submissions []string, maxSubmissions int, temperature float64) (*Persona, error) {
	if len(submissions) == 0 {
		return nil, ErrEmptyClusterTexts
	}
	if len(submissions) > maxSubmissions {
		submissions = submissions[:maxSubmissions]
	}

	var summary strings.Builder
	for _, sub := range submissions {
		fmt.Fprintf(&summary, "- %s\n", sub)
	}

	slog.Info("Generating persona", "submissions", len(submissions))
	resp, err := llm.Chat(ctx, &provider.ChatRequest{
		Messages:    []provider.Message{{Role: "user", Content: fmt.Sprintf(personaPromptTemplate, strings.TrimRight(summary.String(), "\n"))}},
		Temperature: temperature,
		JSONObject:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("persona generation: %w", err)
	}
	if resp.Content == "" {
		return nil, fmt.Errorf("%w: empty persona response", ErrMalformedResponse)
	}

	var persona Persona
	if err := json.Unmarshal([]byte(resp.Content), &persona); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if persona.Role == "" || persona.Goal == "" || persona.Backstory == "" {
		return nil, fmt.Errorf("%w: persona missing required field", ErrMalformedResponse)
	}
	slog.Info("Generated persona", "role", persona.Role)
	return &persona, nil
}

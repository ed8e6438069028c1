// Package suggest drafts per-platform campaign messages inviting people to
// submit ideas to a project.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/juliuspor/Harmony/internal/provider"
)

var ErrNoSources = errors.New("no connected sources given")

const promptTemplate = `You are a campaign strategist helping to create call to ideation messages for different communication platforms.

Project Name: %s
Project Goal: %s

Create compelling, engaging campaign messages for the following platforms: %s

For each platform, craft a message

Platform Guidelines:
- slack: Use casual, friendly tone
- discord: Similar to Slack but can be slightly more informal.
- email: More formal
- teams: Professional but friendly. Similar to Slack but slightly more formal.
- form: Clear, concise description for an online form. Focus on instructions and what you're looking for.

Make the messages not longer than one sentence.
No Markdown formatting, just plain text. No ** or * or # or anything else.

Respond as a JSON object mapping each platform name to its message.`

type Service struct {
	llm provider.LLMProvider
}

func NewService(llm provider.LLMProvider) *Service {
	return &Service{llm: llm}
}

// CampaignMessages returns one suggested outreach message per connected
// source, keyed by source name.
func (s *Service) CampaignMessages(ctx context.Context, projectName, projectGoal string, sources []string) (map[string]string, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	resp, err := s.llm.Chat(ctx, &provider.ChatRequest{
		Messages: []provider.Message{
			{Role: "system", Content: "You are a helpful campaign strategist who creates call to submitting ideas messages for different communication platforms."},
			{Role: "user", Content: fmt.Sprintf(promptTemplate, projectName, projectGoal, strings.Join(sources, ", "))},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
		JSONObject:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate campaign suggestions: %w", err)
	}

	var suggestions map[string]string
	if err := json.Unmarshal([]byte(resp.Content), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse campaign suggestions: %w", err)
	}
	for _, source := range sources {
		if _, ok := suggestions[source]; !ok {
			return nil, fmt.Errorf("suggestion missing for source %q", source)
		}
	}
	return suggestions, nil
}

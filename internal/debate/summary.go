package debate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/juliuspor/Harmony/internal/provider"
	"github.com/juliuspor/Harmony/internal/store"
)

// Summary is the structured digest of a finished debate. Absent fields
// default to empty lists rather than failing the debate.
type Summary struct {
	KeyAlignments []string `json:"key_alignments"`
	KeyInsights   []string `json:"key_insights"`
	ProArguments  []string `json:"pro_arguments"`
	ConArguments  []string `json:"con_arguments"`
}

const summaryPromptTemplate = `Analyze the following debate transcript and extract:

1. Key Alignments: Common ground, agreed-upon principles, shared values (3-5 items)
2. Key Insights: Important conclusions, novel perspectives, important takeaways (3-5 items)
3. Pro Arguments: Strongest supporting arguments for the main topic, ranked by strength (3-5 items)
4. Con Arguments: Strongest opposing or alternative arguments, ranked by strength (3-5 items)

Debate Transcript:
%s

Respond in JSON format:
{
    "key_alignments": ["...", "..."],
    "key_insights": ["...", "..."],
    "pro_arguments": ["...", "..."],
    "con_arguments": ["...", "..."]
}`

func (o *Orchestrator) generateSummary(ctx context.Context, messages []store.Message) (*Summary, error) {
	if len(messages) == 0 {
		return &Summary{}, nil
	}

	lines := make([]string, len(messages))
	for i, msg := range messages {
		lines[i] = fmt.Sprintf("[%s]: %s", msg.AgentName, msg.Content)
	}
	transcript := strings.Join(lines, "\n\n")

	resp, err := o.llm.Chat(ctx, &provider.ChatRequest{
		Messages:    []provider.Message{{Role: "user", Content: fmt.Sprintf(summaryPromptTemplate, transcript)}},
		Temperature: o.cfg.Debate.PersonaTemperature,
		JSONObject:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("summary generation: %w", err)
	}
	if resp.Content == "" {
		return &Summary{}, nil
	}

	var summary Summary
	if err := json.Unmarshal([]byte(resp.Content), &summary); err != nil {
		return &Summary{}, nil
	}
	return &summary, nil
}

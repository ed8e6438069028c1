package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/juliuspor/Harmony/internal/provider"
)

type scriptedLLM struct {
	response string
	err      error
	lastReq  *provider.ChatRequest
}

func (s *scriptedLLM) DefaultModel() string { return "fake" }

func (s *scriptedLLM) Chat(_ context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &provider.ChatResponse{Content: s.response}, nil
}

func TestCampaignMessages(t *testing.T) {
	llm := &scriptedLLM{response: `{"slack": "Drop your ideas in the thread!", "email": "We invite you to share your ideas."}`}
	svc := NewService(llm)

	got, err := svc.CampaignMessages(context.Background(), "Green City", "collect transport ideas", []string{"slack", "email"})
	if err != nil {
		t.Fatal(err)
	}
	if got["slack"] != "Drop your ideas in the thread!" {
		t.Errorf("slack message = %q", got["slack"])
	}
	if !llm.lastReq.JSONObject {
		t.Error("request did not ask for a JSON object response")
	}
	if !strings.Contains(llm.lastReq.Messages[1].Content, "Green City") {
		t.Error("prompt missing project name")
	}
}

func TestCampaignMessagesMissingSource(t *testing.T) {
	llm := &scriptedLLM{response: `{"slack": "hello"}`}
	svc := NewService(llm)

	if _, err := svc.CampaignMessages(context.Background(), "p", "g", []string{"slack", "email"}); err == nil {
		t.Fatal("expected error when a source is missing from the response")
	}
}

func TestCampaignMessagesNoSources(t *testing.T) {
	svc := NewService(&scriptedLLM{})
	if _, err := svc.CampaignMessages(context.Background(), "p", "g", nil); !errors.Is(err, ErrNoSources) {
		t.Fatalf("err = %v, want ErrNoSources", err)
	}
}

func TestCampaignMessagesProviderError(t *testing.T) {
	svc := NewService(&scriptedLLM{err: errors.New("backend down")})
	if _, err := svc.CampaignMessages(context.Background(), "p", "g", []string{"slack"}); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

// Command slackbridge forwards Slack channel messages into Harmony as
// project submissions. Each configured Slack channel maps to one project;
// everything posted there by a human becomes a submission via the gateway
// API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/juliuspor/Harmony/internal/config"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

type bridge struct {
	client   *http.Client
	baseURL  string
	channels map[string]string

	seenMu sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
}

func newBridge(baseURL string, channels map[string]string) *bridge {
	return &bridge{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  strings.TrimRight(baseURL, "/"),
		channels: channels,
		seen:     map[string]time.Time{},
		ttl:      10 * time.Minute,
	}
}

// dedupe reports whether this message was already forwarded. Socket Mode
// redelivers events when acks race with reconnects.
func (b *bridge) dedupe(channelID, timestamp string) bool {
	key := channelID + "/" + timestamp
	now := time.Now()
	b.seenMu.Lock()
	defer b.seenMu.Unlock()
	for k, at := range b.seen {
		if now.Sub(at) > b.ttl {
			delete(b.seen, k)
		}
	}
	if _, ok := b.seen[key]; ok {
		return true
	}
	b.seen[key] = now
	return false
}

func (b *bridge) forward(projectID, userID, text string) error {
	body, _ := json.Marshal(map[string]any{
		"submissions": []map[string]string{
			{"content": text, "user_id": userID},
		},
	})
	url := fmt.Sprintf("%s/projects/%s/submissions", b.baseURL, projectID)
	resp, err := b.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway status: %d", resp.StatusCode)
	}
	return nil
}

func (b *bridge) handleMessage(ev *slackevents.MessageEvent) {
	if ev == nil {
		return
	}
	// Only plain user messages count as submissions. Bot posts, edits,
	// joins and other subtyped events are noise.
	if ev.BotID != "" || ev.SubType != "" {
		return
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}
	projectID, ok := b.channels[ev.Channel]
	if !ok {
		return
	}
	if b.dedupe(ev.Channel, ev.TimeStamp) {
		return
	}
	if err := b.forward(projectID, ev.User, text); err != nil {
		log.Printf("forward failed for channel %s: %v", ev.Channel, err)
		return
	}
	log.Printf("forwarded submission from %s to project %s", ev.User, projectID)
}

func (b *bridge) run(client *socketmode.Client) error {
	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeEventsAPI:
				if evt.Request != nil {
					client.Ack(*evt.Request)
				}
				ev, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok || ev.Type != slackevents.CallbackEvent {
					continue
				}
				if in, ok := ev.InnerEvent.Data.(*slackevents.MessageEvent); ok {
					b.handleMessage(in)
				}
			case socketmode.EventTypeConnected:
				log.Printf("connected to Slack")
			case socketmode.EventTypeConnectionError:
				log.Printf("slack connection error: %v", evt.Data)
			}
		}
	}()
	return client.Run()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("config error: %v", err)
		os.Exit(1)
	}
	sc := cfg.Channels.Slack
	if !sc.Enabled {
		log.Printf("slack bridge disabled in config")
		os.Exit(1)
	}
	if strings.TrimSpace(sc.BotToken) == "" || strings.TrimSpace(sc.AppToken) == "" {
		log.Printf("slack bridge requires botToken and appToken")
		os.Exit(1)
	}
	if len(sc.Channels) == 0 {
		log.Printf("slack bridge has no channel to project mappings")
		os.Exit(1)
	}

	gatewayBase := strings.TrimSpace(os.Getenv("HARMONY_GATEWAY_URL"))
	if gatewayBase == "" {
		gatewayBase = fmt.Sprintf("http://%s:%d", cfg.Gateway.Host, cfg.Gateway.Port)
	}

	api := slack.New(sc.BotToken, slack.OptionAppLevelToken(sc.AppToken))
	client := socketmode.New(api)

	b := newBridge(gatewayBase, sc.Channels)
	log.Printf("slack bridge started, %d channel(s) mapped, gateway %s", len(sc.Channels), gatewayBase)
	if err := b.run(client); err != nil {
		log.Printf("slack bridge stopped: %v", err)
		os.Exit(1)
	}
}

package ingest

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/juliuspor/Harmony/internal/service"
)

// SubmissionEvent is the wire format for intake messages. ProjectID routes
// the text; Source and UserID are attribution metadata.
type SubmissionEvent struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	Source    string `json:"source,omitempty"`
}

// Listener drains a Consumer and stores every decoded submission.
type Listener struct {
	consumer Consumer
	svc      *service.Service
}

func NewListener(consumer Consumer, svc *service.Service) *Listener {
	return &Listener{consumer: consumer, svc: svc}
}

// Run consumes until the context is cancelled or the consumer's channel
// closes. Malformed or incomplete events are logged and dropped.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.consumer.Start(ctx); err != nil {
		return err
	}
	slog.Info("Submission intake started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-l.consumer.Messages():
			if !ok {
				return nil
			}
			l.handle(ctx, msg)
		}
	}
}

func (l *Listener) handle(ctx context.Context, msg ConsumerMessage) {
	var event SubmissionEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		slog.Warn("Dropping malformed submission event", "topic", msg.Topic, "error", err)
		return
	}
	if event.ProjectID == "" || event.Content == "" {
		slog.Warn("Dropping incomplete submission event", "topic", msg.Topic, "project_id", event.ProjectID)
		return
	}
	if _, err := l.svc.AddSubmissions(ctx, event.ProjectID, []service.SubmissionInput{
		{Content: event.Content, UserID: event.UserID},
	}); err != nil {
		slog.Error("Failed to store submission event", "project_id", event.ProjectID, "error", err)
		return
	}
	slog.Info("Ingested submission", "project_id", event.ProjectID, "source", event.Source)
}

package debate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrAlreadyRunning is returned when a second background task is requested
// for a debate that already has one.
var ErrAlreadyRunning = errors.New("debate already running")

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Runner owns the background goroutines executing debates. Each debate id
// can have at most one live task, and every task can be cancelled.
type Runner struct {
	orchestrator *Orchestrator

	mu    sync.Mutex
	tasks map[string]*task
}

func NewRunner(orchestrator *Orchestrator) *Runner {
	return &Runner{orchestrator: orchestrator, tasks: make(map[string]*task)}
}

// Start launches a debate in the background. The returned channel closes
// when the debate finishes, however it ends.
func (r *Runner) Start(ctx context.Context, projectID, debateID string, clusters [][]string) (<-chan struct{}, error) {
	r.mu.Lock()
	if _, exists := r.tasks[debateID]; exists {
		r.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t := &task{cancel: cancel, done: make(chan struct{})}
	r.tasks[debateID] = t
	r.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			close(t.done)
			r.mu.Lock()
			delete(r.tasks, debateID)
			r.mu.Unlock()
		}()
		if err := r.orchestrator.Run(taskCtx, projectID, debateID, clusters); err != nil {
			slog.Warn("Debate task ended with error", "debate_id", debateID, "error", err)
		}
	}()
	return t.done, nil
}

// Cancel stops a running debate. It reports whether a task was found.
func (r *Runner) Cancel(debateID string) bool {
	r.mu.Lock()
	t, ok := r.tasks[debateID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	t.cancel()
	<-t.done
	return true
}

// Running reports whether a debate currently has a live task.
func (r *Runner) Running(debateID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[debateID]
	return ok
}

// Shutdown cancels every live task and waits for them to finish.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	var tasks []*task
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	r.mu.Unlock()
	for _, t := range tasks {
		t.cancel()
		<-t.done
	}
}

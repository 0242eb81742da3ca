package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/pkg/domain"
)

// jobUpdate is one server-sent event about a job.
type jobUpdate struct {
	JobID   string       `json:"job_id"`
	Stage   domain.Stage `json:"stage"`
	Attempt int          `json:"attempt,omitempty"`
	Status  string       `json:"status"`
}

// StreamManager fans job updates out to event stream subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // job ID -> channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for jobID. The returned func unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(jobID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[jobID]; !ok {
		sm.subscribers[jobID] = make(map[chan string]struct{})
	}
	sm.subscribers[jobID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[jobID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, jobID)
				}
			}
		})
	}
}

// Broadcast sends msg to every subscriber of jobID. Slow subscribers miss
// the message instead of blocking the pipeline.
func (sm *StreamManager) Broadcast(jobID, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[jobID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "job_id", jobID)
		}
	}
}

func (sm *StreamManager) publish(u jobUpdate) {
	b, err := json.Marshal(u)
	if err != nil {
		return
	}
	sm.Broadcast(u.JobID, string(b))
}

// Hooks returns lifecycle callbacks that publish stage starts and job
// completion.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageStart: func(_ context.Context, e *domain.StageEvent) {
			if e.JobID == "" {
				return
			}
			sm.publish(jobUpdate{JobID: e.JobID, Stage: e.Stage, Attempt: e.Attempt, Status: statusProcessing})
		},
		OnJobFinish: func(_ context.Context, e *domain.JobEvent) {
			u := jobUpdate{JobID: e.JobID, Stage: domain.StageDone, Status: statusCompleted}
			if e.Status == domain.JobFailed {
				u.Stage = domain.StageFailed
				u.Status = statusError
			}
			sm.publish(u)
		},
	}
}

// SubscribeEvents handles GET /api/result/{job_id}/events. It streams
// stage updates until the job is final or the client disconnects.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, jobID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal", "streaming not supported", "")
		return
	}

	// Subscribe before loading so a finish in between is not lost.
	ch, cancel := s.Streams.Subscribe(jobID)
	defer cancel()

	job, err := s.Service.GetResult(r.Context(), jobID)
	if err != nil {
		s.fail(w, r, "SubscribeEvents", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	current := newResultResponse(job)
	first, _ := json.Marshal(jobUpdate{JobID: job.ID, Stage: job.Stage, Status: current.Status})
	fmt.Fprintf(w, "event: ping\ndata: %s\n\n", first)
	flusher.Flush()
	if job.Final() {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()

			var u jobUpdate
			if err := json.Unmarshal([]byte(msg), &u); err == nil && u.Status != statusProcessing {
				return
			}
		}
	}
}

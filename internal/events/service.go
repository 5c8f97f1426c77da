package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prasenjit/go-chainer/internal/models"
)

// Event is one step-level execution event, suitable for live streaming
type Event struct {
	ID         string    `json:"id"`
	RunID      string    `json:"runId"`
	Signature  string    `json:"signature"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
	StatusCode int       `json:"statusCode,omitempty"`
	DurationMs int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
}

// Service keeps a bounded buffer of execution events and fans them out to
// live subscribers. It plugs into the runner as a step observer.
type Service struct {
	mu          sync.RWMutex
	events      []*Event
	maxEvents   int
	subscribers map[string]chan *Event
}

// NewService creates a new event service
func NewService(maxEvents int) *Service {
	if maxEvents <= 0 {
		maxEvents = 1000
	}

	return &Service{
		events:      make([]*Event, 0),
		maxEvents:   maxEvents,
		subscribers: make(map[string]chan *Event),
	}
}

// ObserveStep converts a runner step outcome to an event and publishes it
func (s *Service) ObserveStep(runID string, step *models.ExecutionStep) {
	s.Publish(&Event{
		RunID:      runID,
		Signature:  step.Signature,
		Status:     string(step.Status),
		StatusCode: step.StatusCode,
		DurationMs: step.DurationMs,
		Error:      step.FailureReason,
	})
}

// Publish records an event and notifies subscribers without blocking
func (s *Service) Publish(event *Event) {
	s.mu.Lock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	s.events = append(s.events, event)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}

	subscribers := make([]chan *Event, 0, len(s.subscribers))
	for _, ch := range s.subscribers {
		subscribers = append(subscribers, ch)
	}

	s.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- event:
		default:
			// subscriber is slow, skip
		}
	}
}

// Recent returns up to limit events, newest first
func (s *Service) Recent(limit int) []*Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}

	result := make([]*Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, s.events[i])
	}
	return result
}

// Subscribe registers a live event channel and returns its id
func (s *Service) Subscribe() (string, <-chan *Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan *Event, 64)
	s.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber
func (s *Service) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subscribers[id]; ok {
		delete(s.subscribers, id)
		close(ch)
	}
}

// Package events provides the in-process event bus feeding the SSE and
// websocket streams. Event payloads are typed: each data struct knows its
// own event type.
package events

import (
	"sync"
	"time"
)

// EventType identifies a kind of system event.
type EventType string

const (
	ModelTrained        EventType = "model_trained"
	AssessmentsReady    EventType = "assessments_ready"
	AlertRaised         EventType = "alert_raised"
	SimulationCompleted EventType = "simulation_completed"
)

// EventData is the interface that all event data types must implement.
// This allows for type-safe event data while maintaining flexibility.
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// ModelTrainedData contains data for ModelTrained events
type ModelTrainedData struct {
	Examples     int     `json:"examples"`
	PositiveRate float64 `json:"positive_rate"`
	DurationMS   int64   `json:"duration_ms"`
}

// EventType returns the event type for ModelTrainedData
func (d *ModelTrainedData) EventType() EventType { return ModelTrained }

// AssessmentsReadyData contains data for AssessmentsReady events
type AssessmentsReadyData struct {
	RunID     string `json:"run_id"`
	Customers int    `json:"customers"`
	Alerts    int    `json:"alerts"`
}

// EventType returns the event type for AssessmentsReadyData
func (d *AssessmentsReadyData) EventType() EventType { return AssessmentsReady }

// AlertRaisedData contains data for AlertRaised events
type AlertRaisedData struct {
	CustomerID string `json:"customer_id"`
	RiskScore  int    `json:"risk_score"`
}

// EventType returns the event type for AlertRaisedData
func (d *AlertRaisedData) EventType() EventType { return AlertRaised }

// SimulationCompletedData contains data for SimulationCompleted events
type SimulationCompletedData struct {
	Scenario  string  `json:"scenario"`
	Intensity float64 `json:"intensity"`
	Customers int     `json:"customers"`
}

// EventType returns the event type for SimulationCompletedData
func (d *SimulationCompletedData) EventType() EventType { return SimulationCompleted }

// Event is the envelope delivered to subscribers.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data"`
}

// Bus is a minimal fan-out event bus. Publishing never blocks: slow
// subscribers drop events rather than stalling the publisher.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber and returns its id and channel.
func (b *Bus) Subscribe() (int, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, 16)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

// Publish delivers an event to every subscriber, dropping it for any
// subscriber whose buffer is full.
func (b *Bus) Publish(data EventData) {
	evt := Event{Type: data.EventType(), Timestamp: time.Now(), Data: data}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

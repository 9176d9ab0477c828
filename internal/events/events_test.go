package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()

	_, ch := bus.Subscribe()

	bus.Publish(&AlertRaisedData{CustomerID: "CUST1001", RiskScore: 82})

	evt := <-ch
	assert.Equal(t, AlertRaised, evt.Type)
	data, ok := evt.Data.(*AlertRaisedData)
	require.True(t, ok)
	assert.Equal(t, "CUST1001", data.CustomerID)
	assert.Equal(t, 82, data.RiskScore)
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := NewBus()

	_, ch1 := bus.Subscribe()
	_, ch2 := bus.Subscribe()

	bus.Publish(&ModelTrainedData{Examples: 500})

	assert.Equal(t, ModelTrained, (<-ch1).Type)
	assert.Equal(t, ModelTrained, (<-ch2).Type)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	id, ch := bus.Subscribe()
	bus.Unsubscribe(id)

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic
	bus.Publish(&SimulationCompletedData{Scenario: "inflation"})
}

func TestBus_SlowSubscriberDropsEvents(t *testing.T) {
	bus := NewBus()

	_, ch := bus.Subscribe()

	// Overflow the buffer; Publish must never block.
	for i := 0; i < 100; i++ {
		bus.Publish(&AlertRaisedData{CustomerID: "CUST1001", RiskScore: i})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			assert.Greater(t, received, 0)
			assert.Less(t, received, 100)
			return
		}
	}
}

func TestEventDataTypes(t *testing.T) {
	assert.Equal(t, ModelTrained, (&ModelTrainedData{}).EventType())
	assert.Equal(t, AssessmentsReady, (&AssessmentsReadyData{}).EventType())
	assert.Equal(t, AlertRaised, (&AlertRaisedData{}).EventType())
	assert.Equal(t, SimulationCompleted, (&SimulationCompletedData{}).EventType())
}

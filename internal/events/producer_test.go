// internal/events/producer_test.go
package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testProducer(buf int) *Producer {
	return NewProducer([]string{"127.0.0.1:1"}, "sale-events", buf, zap.NewNop())
}

func TestPublishWrapsEnvelope(t *testing.T) {
	p := testProducer(4)

	p.Publish(EventSalePaid, "SALE-1", map[string]int64{"sale_id": 42})

	msg := <-p.inbox
	assert.Equal(t, "SALE-1", string(msg.Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, EventSalePaid, env.EventType)
	assert.Equal(t, "SALE-1", env.CorrelationID)
	assert.Equal(t, 1, env.EventVersion)
	assert.NotEmpty(t, env.EventID)
	assert.False(t, env.OccurredAt.IsZero())

	var payload map[string]int64
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, int64(42), payload["sale_id"])
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	p := testProducer(1)

	p.Publish(EventSaleCreated, "SALE-1", nil)
	p.Publish(EventSaleCreated, "SALE-2", nil)

	assert.Len(t, p.inbox, 1, "a full buffer drops instead of blocking")
}

func TestPublishAfterShutdownIsDropped(t *testing.T) {
	p := testProducer(4)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()
	p.WaitClosed()

	// A late publisher (e.g. an outbox batch still in flight during
	// shutdown) must not crash the process.
	require.NotPanics(t, func() {
		p.Publish(EventUpsellPaid, "sale:9:upsell", map[string]int64{"sale_id": 9})
	})
}

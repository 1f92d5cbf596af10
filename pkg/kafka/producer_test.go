package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/MuzammilBaloch-22/Cakelora/pkg/logger"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	calls  int
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testConfig() ProducerConfig {
	cfg := DefaultProducerConfig([]string{"localhost:19092"})
	cfg.Breaker.Name = "test-" + time.Now().Format("150405.000000")
	cfg.Breaker.MinRequests = 2
	cfg.Breaker.Timeout = time.Hour
	return cfg
}

func headerValue(msg kafka.Message, key string) string {
	return HeaderCarrier{Headers: &msg.Headers}.Get(key)
}

// ============================================================================
// Event
// ============================================================================

func TestNewEvent_Fields(t *testing.T) {
	data := map[string]int{"item_count": 2}
	event, err := NewEvent("cart.updated", "sess-1", "cart", "cakelora", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "cart.updated", event.EventType)
	assert.Equal(t, "sess-1", event.AggregateID)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	assert.JSONEq(t, `{"item_count":2}`, string(event.Data))
}

func TestNewEvent_UnserializablePayload(t *testing.T) {
	_, err := NewEvent("cart.updated", "sess-1", "cart", "cakelora", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart.updated")
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	event, err := NewEvent("custom_order.submitted", "ref-1", "custom_order", "cakelora", map[string]string{"size": "xl"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-1")

	raw, err := event.Marshal()
	require.NoError(t, err)
	var back Event
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.Equal(t, event.EventID, back.EventID)
	assert.Equal(t, "corr-1", back.CorrelationID)
	assert.JSONEq(t, `{"size":"xl"}`, string(back.Data))
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "cakelora.cart.updated", Topic("cart", "updated"))
	assert.Equal(t, "cakelora.custom_order.submitted", Topic("custom_order", "submitted"))
}

// ============================================================================
// HeaderCarrier
// ============================================================================

func TestHeaderCarrier_SetGetKeys(t *testing.T) {
	var headers []kafka.Header
	c := HeaderCarrier{Headers: &headers}

	c.Set("traceparent", "a")
	c.Set("traceparent", "b")
	c.Set("baggage", "k=v")

	assert.Equal(t, "b", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.Equal(t, []string{"traceparent", "baggage"}, c.Keys())
	assert.Len(t, headers, 2)
}

func TestHeaderCarrier_PropagatesTraceContext(t *testing.T) {
	prop := propagation.TraceContext{}
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	var headers []kafka.Header
	prop.Inject(ctx, HeaderCarrier{Headers: &headers})
	out := prop.Extract(context.Background(), HeaderCarrier{Headers: &headers})

	assert.Equal(t, traceID, trace.SpanContextFromContext(out).TraceID())
}

// ============================================================================
// Producer
// ============================================================================

func TestProducer_PublishWritesMessage(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, testConfig(), logger.Discard())

	event, err := NewEvent("cart.cleared", "sess-9", "cart", "cakelora", struct{}{})
	require.NoError(t, err)
	event.WithCorrelationID("corr-9")

	require.NoError(t, p.Publish(context.Background(), Topic("cart", "cleared"), event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "cakelora.cart.cleared", msg.Topic)
	assert.Equal(t, "sess-9", string(msg.Key))
	assert.Equal(t, "cart.cleared", headerValue(msg, "event_type"))
	assert.Equal(t, "corr-9", headerValue(msg, "correlation_id"))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)
}

func TestProducer_PublishErrorWrapped(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := NewProducerWithWriter(w, testConfig(), logger.Discard())

	event, _ := NewEvent("cart.updated", "sess-1", "cart", "cakelora", nil)
	err := p.Publish(context.Background(), "cakelora.cart.updated", event)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cakelora.cart.updated")
	assert.Contains(t, err.Error(), "leader not available")
}

func TestProducer_BreakerOpensAfterFailures(t *testing.T) {
	w := &fakeWriter{err: errors.New("connection refused")}
	p := NewProducerWithWriter(w, testConfig(), logger.Discard())
	event, _ := NewEvent("cart.updated", "sess-1", "cart", "cakelora", nil)

	for i := 0; i < 2; i++ {
		_ = p.Publish(context.Background(), "t", event)
	}
	assert.Equal(t, gobreaker.StateOpen, p.BreakerState())

	err := p.Publish(context.Background(), "t", event)
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, 2, w.calls, "open breaker must not reach the writer")
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, testConfig(), nil)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewProducer_DoesNotConnect(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), logger.Discard())
	require.NotNil(t, p)
	assert.Equal(t, gobreaker.StateClosed, p.BreakerState())
	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers")
}

package kafka_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optic/loan-origination/internal/domain/event"
	"github.com/optic/loan-origination/internal/infrastructure/kafka"
	pkgkafka "github.com/optic/loan-origination/pkg/kafka"
	"github.com/optic/loan-origination/pkg/testutil"
)

type recordingProducer struct {
	topic    string
	messages []pkgkafka.Message
	err      error
}

func (p *recordingProducer) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	p.topic = topic
	p.messages = append(p.messages, messages...)
	return p.err
}

func approvedEvent() event.DomainEvent {
	return event.NewLoanApplicationApproved(
		testutil.TestApplicationID, testutil.TestClientID, 1,
		decimal.RequireFromString("7.5"), decimal.NewFromInt(90000), decimal.RequireFromString("644.47"),
		240, testutil.TestNow,
	)
}

func TestEventPublisher_Publish(t *testing.T) {
	producer := &recordingProducer{}
	pub := kafka.NewEventPublisher(producer, "origination-events", nil)

	require.NoError(t, pub.Publish(context.Background(), approvedEvent()))

	assert.Equal(t, "origination-events", producer.topic)
	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, testutil.TestApplicationID, string(msg.Key))
	assert.Equal(t, event.TypeLoanApplicationApproved, msg.Headers["event_type"])
	assert.NotEmpty(t, msg.Headers["event_id"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, testutil.TestClientID, body["client_id"])
	assert.EqualValues(t, 240, body["term_months"])
}

func TestEventPublisher_NoEvents(t *testing.T) {
	producer := &recordingProducer{err: errors.New("must not be called")}
	pub := kafka.NewEventPublisher(producer, "origination-events", nil)

	require.NoError(t, pub.Publish(context.Background()))
	assert.Empty(t, producer.topic)
}

func TestEventPublisher_ProducerError(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker down")}
	pub := kafka.NewEventPublisher(producer, "origination-events", nil)

	err := pub.Publish(context.Background(), approvedEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "origination-events")
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	require.NoError(t, kafka.NewLogPublisher(logger).Publish(context.Background(), approvedEvent()))
	assert.Contains(t, buf.String(), event.TypeLoanApplicationApproved)
}

func TestEventPublisher_Integration(t *testing.T) {
	ctx := context.Background()
	kc := testutil.NewKafkaContainer(ctx, t)

	producer, err := pkgkafka.NewProducer(pkgkafka.Config{Brokers: kc.Brokers})
	require.NoError(t, err)
	t.Cleanup(func() { _ = producer.Close() })

	const topic = "origination-events-it"
	conn, err := kafkago.DialLeader(ctx, "tcp", kc.Brokers[0], topic, 0)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	pub := kafka.NewEventPublisher(producer, topic, nil)
	require.NoError(t, pub.Publish(ctx, approvedEvent()))

	reader := kafkago.NewReader(kafkago.ReaderConfig{Brokers: kc.Brokers, Topic: topic, Partition: 0})
	t.Cleanup(func() { _ = reader.Close() })

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)
	assert.Equal(t, testutil.TestApplicationID, string(msg.Key))
}

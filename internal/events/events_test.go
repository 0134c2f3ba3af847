package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/benx421/ledger/internal/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	err      error
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFromTransaction(t *testing.T) {
	receiver := uuid.New()
	txn := &models.Transaction{
		Reference:         "01HZX3Q6W3M0S7ZK5A0T7JQ2E4",
		Type:              models.TransactionTypeTransfer,
		SenderAccountID:   uuid.New(),
		ReceiverAccountID: &receiver,
		AmountCents:       3000,
		LastModifiedOn:    time.Now(),
	}

	tests := []struct {
		status models.TransactionStatus
		want   Type
	}{
		{models.TransactionStatusPending, TypeTransactionRequested},
		{models.TransactionStatusCompleted, TypeTransactionCompleted},
		{models.TransactionStatusFailed, TypeTransactionFailed},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			txn.Status = tt.status
			event := FromTransaction(txn)
			assert.Equal(t, tt.want, event.Type)
			assert.Equal(t, txn.Reference, event.Reference)
			assert.Equal(t, &receiver, event.ReceiverAccountID)
		})
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	publisher := &KafkaPublisher{writer: writer, logger: testLogger()}

	event := Event{
		Type:          TypeTransactionFailed,
		Reference:     "01HZX3Q6W3M0S7ZK5A0T7JQ2E4",
		Status:        models.TransactionStatusFailed,
		FailureReason: models.FailureReasonCapExceeded,
		AmountCents:   3000,
	}

	require.NoError(t, publisher.Publish(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, []byte(event.Reference), msg.Key)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("transaction.failed"), msg.Headers[0].Value)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, models.FailureReasonCapExceeded, decoded.FailureReason)

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestNewKafkaPublisher_FlushesPromptly(t *testing.T) {
	publisher := NewKafkaPublisher([]string{"localhost:9092"}, "ledger.transactions", testLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	writer, ok := publisher.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, publishBatchTimeout, writer.BatchTimeout)
	assert.Less(t, writer.BatchTimeout, 100*time.Millisecond)
	assert.Equal(t, "ledger.transactions", writer.Topic)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("leader not available")
	publisher := &KafkaPublisher{writer: &fakeWriter{err: boom}, logger: testLogger()}

	err := publisher.Publish(context.Background(), Event{Type: TypeTransactionRequested})
	assert.ErrorIs(t, err, boom)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	publisher := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, publisher.Publish(context.Background(), Event{
		Type:      TypeTransactionCompleted,
		Reference: "ref-1",
	}))

	assert.Contains(t, buf.String(), `"type":"transaction.completed"`)
	assert.Contains(t, buf.String(), `"reference":"ref-1"`)
}

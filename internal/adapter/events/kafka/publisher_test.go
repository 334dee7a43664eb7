package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"investment-ledger/config"
	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testEvent() domain.LedgerEvent {
	now := time.Now().UTC()
	e := domain.NewWithdrawal(uuid.New(), decimal.NewFromInt(20000), "USDT", "0xabc", now)
	return domain.NewLedgerEvent(domain.EventWithdrawalRequested, e, nil, now)
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w)
	ev := testEvent()

	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, ev.AccountID.String(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "WITHDRAWAL_REQUESTED", string(msg.Headers[0].Value))

	var decoded domain.LedgerEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev.EntryID, decoded.EntryID)
	assert.True(t, decoded.Amount.Equal(ev.Amount))
	assert.Nil(t, decoded.Balance)
}

func TestPublisher_WriteError(t *testing.T) {
	p := NewPublisher(&fakeWriter{err: errors.New("leader not available")})

	err := p.Publish(context.Background(), testEvent())
	assert.ErrorContains(t, err, "write ledger event")
}

func TestPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewPublisher(w).Close())
	assert.True(t, w.closed)
}

func TestNewWriter(t *testing.T) {
	w := NewWriter(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "ledger-events"})
	assert.Equal(t, "ledger-events", w.Topic)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
}

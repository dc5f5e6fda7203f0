package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookledger/internal/domain"
)

type fakeWriter struct {
	mu    sync.Mutex
	msgs  []kafka.Message
	err   error
	stall bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.stall {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func testSale() domain.Sale {
	return domain.Sale{
		ID:          9,
		BookID:      42,
		CustomerID:  3,
		SaleDate:    domain.NewDate(2024, time.June, 1),
		Quantity:    2,
		TotalAmount: decimal.RequireFromString("25.50"),
	}
}

func TestPublishSaleRecordedKeysByBook(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, time.Second, zap.NewNop())

	evt := NewSaleRecorded(testSale(), 3)
	require.NoError(t, p.PublishSaleRecorded(context.Background(), evt))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, SaleRecordedType, headers["event_type"])
	assert.Equal(t, evt.EventID.String(), headers["event_id"])

	var decoded SaleRecorded
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, evt.EventID, decoded.EventID)
	assert.Equal(t, 3, decoded.StockAfter)
	assert.True(t, decoded.Sale.TotalAmount.Equal(decimal.RequireFromString("25.5")))
}

func TestPublisherBreakerOpensAfterRepeatedFailures(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unreachable")}
	p := NewKafkaPublisher(w, time.Second, zap.NewNop())

	for i := 0; i < 5; i++ {
		err := p.PublishSaleRecorded(context.Background(), NewSaleRecorded(testSale(), 0))
		require.Error(t, err)
	}

	err := p.PublishSaleRecorded(context.Background(), NewSaleRecorded(testSale(), 0))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestPublishGivesUpOnStalledBroker(t *testing.T) {
	w := &fakeWriter{stall: true}
	p := NewKafkaPublisher(w, 20*time.Millisecond, zap.NewNop())

	start := time.Now()
	err := p.PublishSaleRecorded(context.Background(), NewSaleRecorded(testSale(), 0))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewKafkaWriterSetsWriteTimeout(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "bookledger.sales", 0)
	assert.Equal(t, DefaultWriteTimeout, w.WriteTimeout)

	w = NewKafkaWriter([]string{"localhost:9092"}, "bookledger.sales", 500*time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, w.WriteTimeout)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.PublishSaleRecorded(context.Background(), NewSaleRecorded(testSale(), 0)))
	assert.NoError(t, p.Close())
}

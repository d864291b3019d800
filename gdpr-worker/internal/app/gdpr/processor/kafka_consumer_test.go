package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recipehub/gdpr-worker/internal/app/gdpr/entity"
	"recipehub/gdpr-worker/internal/app/gdpr/service"
)

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) HandleEvent(ctx context.Context, event *entity.UserEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type fakeReader struct {
	messages chan kafka.Message

	mu        sync.Mutex
	committed []kafka.Message
	closed    bool
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{messages: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		r.messages <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.messages:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Stats() kafka.ReaderStats {
	return kafka.ReaderStats{}
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	offsets := make([]int64, 0, len(r.committed))
	for _, m := range r.committed {
		offsets = append(offsets, m.Offset)
	}
	return offsets
}

func eventMessage(t *testing.T, offset int64, event entity.UserEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{
		Key:    []byte(fmt.Sprint(event.UserID)),
		Value:  value,
		Offset: offset,
	}
}

func newTestConsumer(reader messageReader, auditSvc service.AuditServiceInterface) *KafkaConsumer {
	c := newKafkaConsumer(reader, "user_events", "gdpr-worker", auditSvc)
	c.retryBackoff = 10 * time.Millisecond
	return c
}

func TestNewKafkaConsumer(t *testing.T) {
	auditSvc := new(MockAuditService)

	consumer := NewKafkaConsumer([]string{"localhost:9092"}, "user_events", "gdpr-worker", 1, 10e6, auditSvc)

	assert.NotNil(t, consumer.reader)
	assert.Equal(t, "user_events", consumer.topic)
	assert.Equal(t, "gdpr-worker", consumer.groupID)
	assert.NotNil(t, consumer.stopChan)
	assert.NotNil(t, consumer.doneChan)

	consumer.reader.Close()
}

func TestProcessMessage_Success(t *testing.T) {
	auditSvc := new(MockAuditService)
	consumer := newTestConsumer(newFakeReader(), auditSvc)
	msg := eventMessage(t, 1, entity.UserEvent{
		EventID:   "evt-1",
		EventType: entity.EventUserDataExported,
		UserID:    7,
	})

	auditSvc.On("HandleEvent", mock.Anything, mock.MatchedBy(func(e *entity.UserEvent) bool {
		return e.EventID == "evt-1" && e.UserID == 7 && e.EventType == entity.EventUserDataExported
	})).Return(nil)

	err := consumer.processMessage(context.Background(), msg)

	assert.NoError(t, err)
	auditSvc.AssertExpectations(t)
}

func TestProcessMessage_MalformedJSON(t *testing.T) {
	auditSvc := new(MockAuditService)
	consumer := newTestConsumer(newFakeReader(), auditSvc)

	err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte("{not json")})

	assert.ErrorIs(t, err, errMalformedEvent)
	auditSvc.AssertNotCalled(t, "HandleEvent", mock.Anything, mock.Anything)
}

func TestConsume_CommitsAfterProcessing(t *testing.T) {
	auditSvc := new(MockAuditService)
	reader := newFakeReader(
		eventMessage(t, 1, entity.UserEvent{EventID: "a", EventType: entity.EventUserRegistered, UserID: 1}),
		eventMessage(t, 2, entity.UserEvent{EventID: "b", EventType: entity.EventUserDeletionRequested, UserID: 1}),
	)
	consumer := newTestConsumer(reader, auditSvc)
	auditSvc.On("HandleEvent", mock.Anything, mock.Anything).Return(nil)

	consumer.Start(context.Background())
	require.Eventually(t, func() bool {
		return len(reader.committedOffsets()) == 2
	}, time.Second, 10*time.Millisecond)
	consumer.Stop()

	assert.Equal(t, []int64{1, 2}, reader.committedOffsets())
	assert.True(t, reader.closed)
	auditSvc.AssertNumberOfCalls(t, "HandleEvent", 2)
}

func TestConsume_SkipsUnprocessableMessages(t *testing.T) {
	auditSvc := new(MockAuditService)
	reader := newFakeReader(
		kafka.Message{Value: []byte("garbage"), Offset: 1},
		eventMessage(t, 2, entity.UserEvent{EventID: "x", EventType: entity.EventUserDataExported}),
		eventMessage(t, 3, entity.UserEvent{EventID: "y", EventType: entity.EventUserDataExported, UserID: 4}),
	)
	consumer := newTestConsumer(reader, auditSvc)
	auditSvc.On("HandleEvent", mock.Anything, mock.MatchedBy(func(e *entity.UserEvent) bool {
		return e.UserID == 0
	})).Return(fmt.Errorf("%w: missing user_id", service.ErrInvalidEvent))
	auditSvc.On("HandleEvent", mock.Anything, mock.MatchedBy(func(e *entity.UserEvent) bool {
		return e.UserID == 4
	})).Return(nil)

	consumer.Start(context.Background())
	require.Eventually(t, func() bool {
		return len(reader.committedOffsets()) == 3
	}, time.Second, 10*time.Millisecond)
	consumer.Stop()

	assert.Equal(t, []int64{1, 2, 3}, reader.committedOffsets())
}

func TestConsume_RetriesStoreFailureBeforeCommitting(t *testing.T) {
	auditSvc := new(MockAuditService)
	reader := newFakeReader(
		eventMessage(t, 5, entity.UserEvent{EventID: "r", EventType: entity.EventUserRegistered, UserID: 9}),
	)
	consumer := newTestConsumer(reader, auditSvc)
	auditSvc.On("HandleEvent", mock.Anything, mock.Anything).Return(errors.New("mongo unavailable")).Once()
	auditSvc.On("HandleEvent", mock.Anything, mock.Anything).Return(nil).Once()

	consumer.Start(context.Background())
	require.Eventually(t, func() bool {
		return len(reader.committedOffsets()) == 1
	}, time.Second, 10*time.Millisecond)
	consumer.Stop()

	assert.Equal(t, []int64{5}, reader.committedOffsets())
	auditSvc.AssertNumberOfCalls(t, "HandleEvent", 2)
}

func TestConsume_StopDuringRetryLeavesMessageUncommitted(t *testing.T) {
	auditSvc := new(MockAuditService)
	reader := newFakeReader(
		eventMessage(t, 8, entity.UserEvent{EventID: "s", EventType: entity.EventUserRegistered, UserID: 2}),
	)
	consumer := newTestConsumer(reader, auditSvc)
	consumer.retryBackoff = time.Hour
	called := make(chan struct{}, 1)
	auditSvc.On("HandleEvent", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { called <- struct{}{} }).
		Return(errors.New("mongo unavailable"))

	consumer.Start(context.Background())
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("event was not handled")
	}
	consumer.Stop()

	assert.Empty(t, reader.committedOffsets())
}

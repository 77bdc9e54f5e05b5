package offline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"hemapp/internal/app/client/remote"
)

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) Insert(ctx context.Context, table string, values any) (remote.Row, error) {
	args := m.Called(ctx, table, values)
	row, _ := args.Get(0).(remote.Row)
	return row, args.Error(1)
}

func (m *mockRemote) Chat(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

func (m *mockRemote) Upsert(ctx context.Context, table, onConflict string, values any) (remote.Row, error) {
	args := m.Called(ctx, table, onConflict, values)
	row, _ := args.Get(0).(remote.Row)
	return row, args.Error(1)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessor_Routes(t *testing.T) {
	payload := json.RawMessage(`{"content":"hello","receiver_id":2}`)

	tests := []struct {
		dataType DataType
		table    string
		upsert   bool
	}{
		{DietEntry, "diet_entries", false},
		{Meal, "meals", false},
		{Message, "messages", false},
		{Goal, "goals", true},
		{ProfileUpdate, "profiles", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.dataType), func(t *testing.T) {
			r := &mockRemote{}
			if tt.upsert {
				r.On("Upsert", mock.Anything, tt.table, "", payload).Return(remote.Row{"id": 1.0}, nil).Once()
			} else {
				r.On("Insert", mock.Anything, tt.table, payload).Return(remote.Row{"id": 1.0}, nil).Once()
			}

			err := NewProcessor(r, discard()).Process(context.Background(), SyncRecord{ID: "x", DataType: tt.dataType, Payload: payload})
			require.NoError(t, err)
			r.AssertExpectations(t)
			assert.Len(t, r.Calls, 1)
		})
	}
}

func TestProcessor_MessageInsertsExactlyOnce(t *testing.T) {
	payload := json.RawMessage(`{"content":"hi"}`)
	r := &mockRemote{}
	r.On("Insert", mock.Anything, "messages", payload).Return(remote.Row{}, nil)

	err := NewProcessor(r, discard()).Process(context.Background(), SyncRecord{DataType: Message, Payload: payload})
	require.NoError(t, err)

	r.AssertNumberOfCalls(t, "Insert", 1)
	r.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessor_AIMessageAsksAssistant(t *testing.T) {
	r := &mockRemote{}
	r.On("Chat", mock.Anything, "how many calories?").Return("about 500 kcal", nil).Once()

	err := NewProcessor(r, discard()).Process(context.Background(), SyncRecord{
		ID:       "q1",
		DataType: AIMessage,
		Payload:  json.RawMessage(`{"user_id":3,"message":"how many calories?"}`),
	})
	require.NoError(t, err)

	r.AssertExpectations(t)
	r.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, r.Calls, 1)
}

func TestProcessor_AIMessageErrors(t *testing.T) {
	t.Run("assistant failure is retried", func(t *testing.T) {
		r := &mockRemote{}
		r.On("Chat", mock.Anything, "hi").Return("", remote.ErrUnauthorized)

		err := NewProcessor(r, discard()).Process(context.Background(), SyncRecord{DataType: AIMessage, Payload: json.RawMessage(`{"message":"hi"}`)})
		assert.ErrorIs(t, err, remote.ErrUnauthorized)
	})

	t.Run("empty question", func(t *testing.T) {
		r := &mockRemote{}

		err := NewProcessor(r, discard()).Process(context.Background(), SyncRecord{DataType: AIMessage, Payload: json.RawMessage(`{"message":""}`)})
		assert.ErrorIs(t, err, ErrInvalidPayload)
		assert.Empty(t, r.Calls)
	})
}

func TestProcessor_UnknownDataType(t *testing.T) {
	r := &mockRemote{}

	err := NewProcessor(r, discard()).Process(context.Background(), SyncRecord{ID: "x", DataType: "workout", Payload: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrUnknownDataType)
	assert.Empty(t, r.Calls)
}

func TestProcessor_RemoteError(t *testing.T) {
	r := &mockRemote{}
	r.On("Insert", mock.Anything, "meals", mock.Anything).Return(nil, remote.ErrUnauthorized)

	err := NewProcessor(r, discard()).Process(context.Background(), SyncRecord{DataType: Meal, Payload: json.RawMessage(`{}`)})
	assert.True(t, errors.Is(err, remote.ErrUnauthorized))
}

func TestTable(t *testing.T) {
	table, ok := Table(Goal)
	assert.True(t, ok)
	assert.Equal(t, "goals", table)

	_, ok = Table("nope")
	assert.False(t, ok)
}

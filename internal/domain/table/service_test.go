package table

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, row *Row) error {
	args := m.Called(ctx, row)
	if args.Error(0) == nil {
		row.ID = 1
	}
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, q Query, id int64) (*Row, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Row), args.Error(1)
}

func (m *MockRepository) Select(ctx context.Context, q Query) ([]Row, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Row), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, q Query) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int64, data json.RawMessage) (*Row, error) {
	args := m.Called(ctx, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Row), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type recordingPublisher struct {
	changes []Change
}

func (p *recordingPublisher) Publish(change Change) {
	p.changes = append(p.changes, change)
}

func newTestService() (*Service, *MockRepository, *recordingPublisher) {
	repo := new(MockRepository)
	pub := &recordingPublisher{}
	return NewService(repo, pub, slog.Default()), repo, pub
}

func TestService_Insert(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	repo.On("Insert", ctx, mock.MatchedBy(func(r *Row) bool {
		return r.Table == Messages && r.UserID == 7 && string(r.Data) == `{"content":"hi","receiver_id":9}`
	})).Return(nil)

	row, err := svc.Insert(ctx, 7, Messages, json.RawMessage(`{"content":"hi","receiver_id":9,"user_id":1}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.ID)

	require.Len(t, pub.changes, 1)
	assert.Equal(t, ChangeInsert, pub.changes[0].Type)
	assert.Equal(t, Messages, pub.changes[0].Table)
	repo.AssertExpectations(t)
}

func TestService_Insert_Validation(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		table string
		data  string
		want  error
	}{
		{name: "unknown table", table: "secrets", data: `{}`, want: ErrUnknownTable},
		{name: "array payload", table: Goals, data: `[1,2]`, want: ErrInvalidData},
		{name: "empty payload", table: Goals, data: ``, want: ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Insert(ctx, 1, tt.table, json.RawMessage(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	assert.Empty(t, pub.changes)
}

func TestService_Select_ClampsLimitAndScopesMessages(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	filters := []Filter{{Column: "read", Op: OpEq, Value: "false"}}

	repo.On("Select", ctx, Query{
		Table:     Messages,
		UserID:    3,
		SharedKey: "receiver_id",
		Filters:   filters,
		Limit:     maxLimit,
	}).Return([]Row{{ID: 5}}, nil)

	rows, err := svc.Select(ctx, 3, Messages, filters, 5000, false)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	repo.AssertExpectations(t)
}

func TestService_Upsert_UpdatesByConflictKey(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	existing := Row{ID: 11, Table: Goals, UserID: 2, Data: json.RawMessage(`{"goal_type":"weight","target":70}`)}
	repo.On("Select", ctx, Query{
		Table:   Goals,
		UserID:  2,
		Filters: []Filter{{Column: "goal_type", Op: OpEq, Value: "weight"}},
		Limit:   1,
	}).Return([]Row{existing}, nil)

	updated := existing
	updated.Data = json.RawMessage(`{"goal_type":"weight","target":68}`)
	repo.On("Update", ctx, int64(11), json.RawMessage(`{"goal_type":"weight","target":68}`)).Return(&updated, nil)

	row, err := svc.Upsert(ctx, 2, Goals, json.RawMessage(`{"goal_type":"weight","target":68}`), "")
	require.NoError(t, err)
	assert.Equal(t, int64(11), row.ID)
	require.Len(t, pub.changes, 1)
	assert.Equal(t, ChangeUpdate, pub.changes[0].Type)
	repo.AssertExpectations(t)
}

func TestService_Upsert_InsertsWhenNoConflict(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	repo.On("Select", ctx, mock.AnythingOfType("table.Query")).Return([]Row{}, nil)
	repo.On("Insert", ctx, mock.AnythingOfType("*table.Row")).Return(nil)

	row, err := svc.Upsert(ctx, 2, Profiles, json.RawMessage(`{"display_name":"Ann"}`), "")
	require.NoError(t, err)
	assert.Equal(t, Profiles, row.Table)
	require.Len(t, pub.changes, 1)
	assert.Equal(t, ChangeInsert, pub.changes[0].Type)
}

func TestService_Upsert_ByIDNotFoundInserts(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	repo.On("Get", ctx, Query{Table: Goals, UserID: 2}, int64(99)).Return(nil, ErrNotFound)
	repo.On("Insert", ctx, mock.MatchedBy(func(r *Row) bool {
		return string(r.Data) == `{"goal_type":"steps"}`
	})).Return(nil)

	_, err := svc.Upsert(ctx, 2, Goals, json.RawMessage(`{"id":99,"goal_type":"steps"}`), "")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Delete(t *testing.T) {
	t.Run("owner deletes", func(t *testing.T) {
		svc, repo, pub := newTestService()
		ctx := context.Background()

		repo.On("Get", ctx, Query{Table: DietEntries, UserID: 4}, int64(8)).
			Return(&Row{ID: 8, Table: DietEntries, UserID: 4}, nil)
		repo.On("Delete", ctx, int64(8)).Return(nil)

		require.NoError(t, svc.Delete(ctx, 4, DietEntries, 8))
		require.Len(t, pub.changes, 1)
		assert.Equal(t, ChangeDelete, pub.changes[0].Type)
	})

	t.Run("receiver cannot delete", func(t *testing.T) {
		svc, repo, pub := newTestService()
		ctx := context.Background()

		repo.On("Get", ctx, Query{Table: Messages, UserID: 4, SharedKey: "receiver_id"}, int64(8)).
			Return(&Row{ID: 8, Table: Messages, UserID: 5, Data: json.RawMessage(`{"receiver_id":4}`)}, nil)

		err := svc.Delete(ctx, 4, Messages, 8)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, pub.changes)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		svc, repo, _ := newTestService()
		ctx := context.Background()
		dbErr := errors.New("connection reset")

		repo.On("Get", ctx, mock.Anything, int64(8)).Return(&Row{ID: 8, UserID: 4, Table: Goals}, nil)
		repo.On("Delete", ctx, int64(8)).Return(dbErr)

		err := svc.Delete(ctx, 4, Goals, 8)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestService_Update_SharedRow(t *testing.T) {
	received := &Row{ID: 5, Table: Messages, UserID: 7, Data: json.RawMessage(`{"content":"hi","receiver_id":9,"read":false}`)}
	receiverScope := Query{Table: Messages, UserID: 9, SharedKey: "receiver_id"}

	t.Run("receiver marks read", func(t *testing.T) {
		svc, repo, pub := newTestService()
		ctx := context.Background()

		updated := *received
		updated.Data = json.RawMessage(`{"content":"hi","receiver_id":9,"read":true}`)
		repo.On("Get", ctx, receiverScope, int64(5)).Return(received, nil)
		repo.On("Update", ctx, int64(5), json.RawMessage(`{"read":true}`)).Return(&updated, nil)

		row, err := svc.Update(ctx, 9, Messages, 5, json.RawMessage(`{"read":true}`))
		require.NoError(t, err)
		read, _ := row.Field("read")
		assert.Equal(t, "true", read)
		require.Len(t, pub.changes, 1)
		repo.AssertExpectations(t)
	})

	t.Run("receiver cannot rewrite content", func(t *testing.T) {
		svc, repo, pub := newTestService()
		ctx := context.Background()

		repo.On("Get", ctx, receiverScope, int64(5)).Return(received, nil)

		_, err := svc.Update(ctx, 9, Messages, 5, json.RawMessage(`{"content":"forged","receiver_id":42}`))
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, pub.changes)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("sender edits freely", func(t *testing.T) {
		svc, repo, _ := newTestService()
		ctx := context.Background()

		repo.On("Get", ctx, Query{Table: Messages, UserID: 7, SharedKey: "receiver_id"}, int64(5)).Return(received, nil)
		repo.On("Update", ctx, int64(5), json.RawMessage(`{"content":"edited"}`)).Return(received, nil)

		_, err := svc.Update(ctx, 7, Messages, 5, json.RawMessage(`{"content":"edited"}`))
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestService_Upsert_ByIDOnSharedRow(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	repo.On("Get", ctx, Query{Table: Messages, UserID: 9, SharedKey: "receiver_id"}, int64(5)).
		Return(&Row{ID: 5, Table: Messages, UserID: 7, Data: json.RawMessage(`{"receiver_id":9}`)}, nil)

	_, err := svc.Upsert(ctx, 9, Messages, json.RawMessage(`{"id":5,"content":"forged"}`), "")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, pub.changes)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestService_Count(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	filters := []Filter{{Column: "read", Op: OpEq, Value: "false"}}

	repo.On("Count", ctx, Query{Table: Messages, UserID: 9, SharedKey: "receiver_id", Filters: filters}).
		Return(int64(250), nil)

	n, err := svc.Count(ctx, 9, Messages, filters)
	require.NoError(t, err)
	assert.EqualValues(t, 250, n, "count is not capped by the select limit")

	_, err = svc.Count(ctx, 9, "secrets", nil)
	assert.ErrorIs(t, err, ErrUnknownTable)
	repo.AssertExpectations(t)
}

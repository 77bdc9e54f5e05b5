package offline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hemapp/internal/app/client/connectivity"
	"hemapp/internal/app/client/notify"
	"hemapp/internal/app/client/storage"
)

// fakeSender отвечает ошибкой для типов из fail
type fakeSender struct {
	mu    sync.Mutex
	sent  []SyncRecord
	fail  map[DataType]error
	hook  func()
	inner Sender
}

func (s *fakeSender) Process(ctx context.Context, rec SyncRecord) error {
	s.mu.Lock()
	s.sent = append(s.sent, rec)
	hook := s.hook
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if s.inner != nil {
		return s.inner.Process(ctx, rec)
	}
	if err, ok := s.fail[rec.DataType]; ok {
		return err
	}
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type failingStore struct {
	storage.Store
	failSet bool
}

func (f *failingStore) Set(key string, value []byte) error {
	if f.failSet {
		return errors.New("disk full")
	}
	return f.Store.Set(key, value)
}

type fixture struct {
	queue    *Queue
	store    storage.Store
	sender   *fakeSender
	monitor  *connectivity.Monitor
	notifier *notify.Recorder
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()

	f := &fixture{
		store:    storage.NewMemoryStorage(),
		sender:   &fakeSender{fail: map[DataType]error{}},
		notifier: &notify.Recorder{},
	}
	f.monitor = connectivity.NewMonitor(online, f.notifier, discard())
	f.queue = NewQueue(7, f.store, f.sender, f.monitor, f.notifier, DefaultRetryPolicy(), discard())
	require.NoError(t, f.queue.Load(context.Background()))
	return f
}

func (f *fixture) persisted(t *testing.T) []SyncRecord {
	t.Helper()

	data, err := f.store.Get(storage.SyncQueueKey(7))
	require.NoError(t, err)

	var recs []SyncRecord
	require.NoError(t, json.Unmarshal(data, &recs))
	return recs
}

func statuses(recs []SyncRecord) []Status {
	out := make([]Status, len(recs))
	for i, r := range recs {
		out[i] = r.Status
	}
	return out
}

func TestQueue_OfflineScenario(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	stop := f.queue.AutoFlush(ctx)
	defer stop()

	for _, dt := range []DataType{DietEntry, Message, Goal} {
		rec, err := f.queue.Enqueue(ctx, dt, map[string]any{"value": string(dt)})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, rec.Status)
		assert.NotEmpty(t, rec.ID)
	}

	assert.Equal(t, []Status{StatusPending, StatusPending, StatusPending}, statuses(f.persisted(t)))
	assert.Zero(t, f.sender.count())

	f.monitor.Report(true)

	assert.Equal(t, []Status{StatusSynced, StatusSynced, StatusSynced}, statuses(f.persisted(t)))
	assert.Equal(t, statuses(f.persisted(t)), statuses(f.queue.Records()))

	f.sender.mu.Lock()
	sentTypes := []DataType{f.sender.sent[0].DataType, f.sender.sent[1].DataType, f.sender.sent[2].DataType}
	f.sender.mu.Unlock()
	assert.Equal(t, []DataType{DietEntry, Message, Goal}, sentTypes, "FIFO order")

	removed, err := f.queue.PurgeSynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Empty(t, f.persisted(t))
	assert.Empty(t, f.queue.Records())
}

func TestQueue_FlushLeavesNothingInFlight(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.sender.fail[Message] = errors.New("backend down")

	for _, dt := range []DataType{DietEntry, Message, Meal, Message} {
		_, err := f.queue.Enqueue(ctx, dt, map[string]any{})
		require.NoError(t, err)
	}

	f.monitor.Report(true)
	res, err := f.queue.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Attempted: 4, Synced: 2, Failed: 2}, res)

	res, err = f.queue.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Attempted, "failed records wait for their retry delay")

	for _, r := range f.queue.Records() {
		assert.Contains(t, []Status{StatusSynced, StatusFailed}, r.Status)
	}

	st := f.queue.Stats()
	assert.Equal(t, Stats{Total: 4, Synced: 2, Failed: 2}, st)
}

func TestQueue_EnqueueOnline(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	rec, err := f.queue.Enqueue(ctx, Meal, map[string]any{"name": "soup"})
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, rec.Status)
	assert.Equal(t, 1, rec.Attempts)
	assert.JSONEq(t, `{"name":"soup"}`, string(rec.Payload))

	f.sender.fail[Meal] = errors.New("timeout")
	rec, err = f.queue.Enqueue(ctx, Meal, map[string]any{"name": "bread"})
	require.NoError(t, err, "remote failure does not fail enqueue")
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "timeout", rec.LastError)
}

func TestQueue_EnqueuePersistFailure(t *testing.T) {
	store := &failingStore{Store: storage.NewMemoryStorage()}
	notifier := &notify.Recorder{}
	monitor := connectivity.NewMonitor(false, notifier, discard())
	q := NewQueue(7, store, &fakeSender{}, monitor, notifier, DefaultRetryPolicy(), discard())

	store.failSet = true
	_, err := q.Enqueue(context.Background(), Meal, map[string]any{})
	require.Error(t, err)
	assert.Empty(t, q.Records(), "memory unchanged when persistence fails")
}

func TestQueue_UnknownDataType(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	r := &mockRemote{}
	f.sender.inner = NewProcessor(r, discard())

	_, err := f.queue.Enqueue(ctx, "workout", map[string]any{"minutes": 30})
	require.NoError(t, err)

	f.monitor.Report(true)
	_, err = f.queue.Flush(ctx)
	require.NoError(t, err)

	assert.Empty(t, r.Calls)
	recs := f.queue.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, StatusFailed, recs[0].Status)
	assert.Contains(t, recs[0].LastError, "unknown data type")
	assert.Equal(t, 1, f.queue.Stats().Dead)

	f.queue.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	res, err := f.queue.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Attempted)
}

func TestQueue_RetryAfterDelay(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.queue.now = func() time.Time { return base }
	f.sender.fail[Goal] = errors.New("503")

	rec, err := f.queue.Enqueue(ctx, Goal, map[string]any{"goal_type": "weight"})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, base.Add(5*time.Second), rec.NextAttemptAt)

	f.queue.now = func() time.Time { return base.Add(4 * time.Second) }
	res, err := f.queue.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Attempted)

	delete(f.sender.fail, Goal)
	f.queue.now = func() time.Time { return base.Add(5 * time.Second) }
	res, err = f.queue.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Attempted: 1, Synced: 1}, res)
	assert.Equal(t, StatusSynced, f.queue.Records()[0].Status)
	assert.Equal(t, 2, f.queue.Records()[0].Attempts)
}

func TestQueue_MaxAttempts(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.queue.policy = RetryPolicy{MaxAttempts: 2, InitialDelay: time.Second, MaxDelay: time.Minute}
	f.sender.fail[Meal] = errors.New("boom")

	clock := time.Now()
	f.queue.now = func() time.Time { return clock }

	_, err := f.queue.Enqueue(ctx, Meal, map[string]any{})
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	res, err := f.queue.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	clock = clock.Add(time.Hour)
	res, err = f.queue.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Attempted)
	assert.Equal(t, Stats{Total: 1, Failed: 1, Dead: 1}, f.queue.Stats())
}

func TestQueue_FlushOffline(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.queue.Flush(context.Background())
	assert.ErrorIs(t, err, ErrOffline)
}

func TestQueue_ConcurrentFlush(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	for _, dt := range []DataType{Message, Meal} {
		_, err := f.queue.Enqueue(ctx, dt, map[string]any{})
		require.NoError(t, err)
	}
	f.monitor.Report(true)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.sender.mu.Lock()
	f.sender.hook = func() {
		once.Do(func() { close(entered) })
		<-release
	}
	f.sender.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := f.queue.Flush(ctx)
		done <- err
	}()

	<-entered
	_, err := f.queue.Flush(ctx)
	assert.ErrorIs(t, err, ErrFlushInProgress)
	assert.Equal(t, StatusSyncing, f.queue.Records()[0].Status)

	rec, err := f.queue.Enqueue(ctx, Goal, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, rec.Status, "no immediate send while a flush runs")

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, []Status{StatusSynced, StatusSynced, StatusPending}, statuses(f.queue.Records()))
}

func TestQueue_LoadRecoversSyncing(t *testing.T) {
	store := storage.NewMemoryStorage()
	recs := []SyncRecord{
		{ID: "a", DataType: Meal, Payload: json.RawMessage(`{}`), Status: StatusSynced, Attempts: 1},
		{ID: "b", DataType: Message, Payload: json.RawMessage(`{}`), Status: StatusSyncing, Attempts: 0},
		{ID: "c", DataType: Goal, Payload: json.RawMessage(`{}`), Status: StatusPending},
	}
	data, err := json.Marshal(recs)
	require.NoError(t, err)
	require.NoError(t, store.Set(storage.SyncQueueKey(7), data))

	notifier := &notify.Recorder{}
	monitor := connectivity.NewMonitor(true, notifier, discard())
	sender := &fakeSender{}
	q := NewQueue(7, store, sender, monitor, notifier, DefaultRetryPolicy(), discard())

	require.NoError(t, q.Load(context.Background()))
	assert.Equal(t, []Status{StatusSynced, StatusFailed, StatusPending}, statuses(q.Records()))

	res, err := q.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Attempted: 2, Synced: 2}, res)
	assert.Equal(t, 2, sender.count())
}

func TestQueue_PurgeKeepsUnsynced(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.queue.Enqueue(ctx, Meal, map[string]any{})
	require.NoError(t, err)

	f.sender.fail[Message] = errors.New("down")
	_, err = f.queue.Enqueue(ctx, Message, map[string]any{})
	require.NoError(t, err)

	f.monitor.Report(false)
	_, err = f.queue.Enqueue(ctx, Goal, map[string]any{})
	require.NoError(t, err)

	removed, err := f.queue.PurgeSynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []Status{StatusFailed, StatusPending}, statuses(f.persisted(t)))
}

func TestQueue_Notifications(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	stop := f.queue.AutoFlush(ctx)
	defer stop()

	_, err := f.queue.Enqueue(ctx, Meal, map[string]any{})
	require.NoError(t, err)
	f.monitor.Report(true)

	var titles []string
	for _, e := range f.notifier.Events() {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"Saved offline", "Back online", "Sync complete"}, titles)
}

func TestCache(t *testing.T) {
	store := storage.NewMemoryStorage()
	c := NewCache(store)

	var out []map[string]any
	ok, err := c.Load("diet_entries", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Save("diet_entries", []map[string]any{{"calories": 300.0}}))
	ok, err = c.Load("diet_entries", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []map[string]any{{"calories": 300.0}}, out)

	_, err = store.Get("offline_diet_entries")
	assert.NoError(t, err)
}

package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"hemapp/internal/app/client/notify"
	"hemapp/internal/app/client/storage"
)

// Sender отправка одной записи на сервер
type Sender interface {
	Process(ctx context.Context, rec SyncRecord) error
}

// Connectivity состояние сети и подписка на его смену
type Connectivity interface {
	Online() bool
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// Queue очередь синхронизации одного пользователя.
// Память и хранилище меняются вместе: новое состояние сначала записывается в store,
// и только после успешной записи становится текущим.
type Queue struct {
	mu      sync.Mutex
	records []SyncRecord

	flushMu sync.Mutex

	key      string
	store    storage.Store
	sender   Sender
	net      Connectivity
	notifier notify.Notifier
	policy   RetryPolicy
	log      *slog.Logger
	now      func() time.Time
}

func NewQueue(userID int, store storage.Store, sender Sender, net Connectivity, notifier notify.Notifier, policy RetryPolicy, log *slog.Logger) *Queue {
	return &Queue{
		key:      storage.SyncQueueKey(userID),
		store:    store,
		sender:   sender,
		net:      net,
		notifier: notifier,
		policy:   policy,
		log:      log.With("component", "offline_queue", "user_id", userID),
		now:      time.Now,
	}
}

// Load восстанавливает очередь из хранилища. Записи, оставшиеся в syncing после сбоя,
// переводятся в failed и будут отправлены повторно.
func (q *Queue) Load(_ context.Context) error {
	data, err := q.store.Get(q.key)
	if errors.Is(err, storage.ErrNotFound) {
		q.mu.Lock()
		q.records = nil
		q.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("load sync queue: %w", err)
	}

	var records []SyncRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode sync queue: %w", err)
	}

	demoted := 0
	for i := range records {
		if records[i].Status == StatusSyncing {
			records[i].Status = StatusFailed
			records[i].LastError = "interrupted during sync"
			records[i].NextAttemptAt = time.Time{}
			demoted++
		}
	}

	err = q.replace(func([]SyncRecord) []SyncRecord { return records })
	if err != nil {
		return err
	}

	if demoted > 0 {
		q.log.Warn("recovered records interrupted mid-sync", "count", demoted)
	}
	q.log.Debug("sync queue loaded", "records", len(records))
	return nil
}

// Enqueue добавляет запись в статусе pending. Ошибкой считается только сбой локального хранилища.
// При наличии сети сразу пытается отправить запись; неудача отправки не делает вызов ошибочным.
func (q *Queue) Enqueue(ctx context.Context, dataType DataType, payload any) (SyncRecord, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return SyncRecord{}, fmt.Errorf("encode payload: %w", err)
	}

	rec := SyncRecord{
		ID:        uuid.NewString(),
		DataType:  dataType,
		Payload:   raw,
		CreatedAt: q.now().UTC(),
		Status:    StatusPending,
	}

	if err := q.append(rec); err != nil {
		return SyncRecord{}, err
	}
	q.log.Info("record queued", "id", rec.ID, "data_type", dataType)

	if !q.net.Online() {
		q.notifier.Notify(notify.LevelInfo, "Saved offline", "Will sync when you're back online.")
		return rec, nil
	}

	if !q.flushMu.TryLock() {
		return rec, nil
	}
	defer q.flushMu.Unlock()

	if _, err := q.sync(ctx, rec.ID); err != nil {
		q.log.Warn("immediate sync failed, record kept for later", "id", rec.ID, "error", err)
	}

	if cur, ok := q.find(rec.ID); ok {
		rec = cur
	}
	return rec, nil
}

// Flush отправляет подходящие записи по порядку добавления, по одной.
// Внутри одного прохода запись не повторяется.
func (q *Queue) Flush(ctx context.Context) (FlushResult, error) {
	if !q.flushMu.TryLock() {
		return FlushResult{}, ErrFlushInProgress
	}
	defer q.flushMu.Unlock()

	if !q.net.Online() {
		return FlushResult{}, ErrOffline
	}

	now := q.now()
	var ids []string
	q.mu.Lock()
	for _, r := range q.records {
		if q.policy.eligible(r, now) {
			ids = append(ids, r.ID)
		}
	}
	q.mu.Unlock()

	var res FlushResult
	if len(ids) == 0 {
		return res, nil
	}

	q.log.Info("flush started", "records", len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Attempted++
		synced, err := q.sync(ctx, id)
		if err != nil && !synced && errors.Is(err, errPersist) {
			return res, err
		}
		if synced {
			res.Synced++
		} else {
			res.Failed++
		}
	}

	q.log.Info("flush finished", "synced", res.Synced, "failed", res.Failed)

	if res.Synced > 0 {
		q.notifier.Notify(notify.LevelSuccess, "Sync complete", fmt.Sprintf("%d item(s) synced", res.Synced))
	}
	if res.Failed > 0 {
		q.notifier.Notify(notify.LevelError, "Sync failed", fmt.Sprintf("%d item(s) will be retried later", res.Failed))
	}

	return res, nil
}

// AutoFlush запускает Flush на каждом переходе в онлайн. Возвращает функцию остановки.
func (q *Queue) AutoFlush(ctx context.Context) (stop func()) {
	return q.net.Subscribe(func(online bool) {
		if !online {
			return
		}
		if _, err := q.Flush(ctx); err != nil && !errors.Is(err, ErrFlushInProgress) {
			q.log.Error("automatic flush failed", "error", err)
		}
	})
}

// PurgeSynced удаляет отправленные записи, pending и failed остаются
func (q *Queue) PurgeSynced(_ context.Context) (int, error) {
	removed := 0
	err := q.replace(func(recs []SyncRecord) []SyncRecord {
		kept := recs[:0]
		for _, r := range recs {
			if r.Status == StatusSynced {
				removed++
				continue
			}
			kept = append(kept, r)
		}
		return kept
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		q.log.Info("synced records purged", "count", removed)
	}
	return removed, nil
}

// Records копия очереди в порядке добавления
func (q *Queue) Records() []SyncRecord {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]SyncRecord, len(q.records))
	copy(out, q.records)
	return out
}

func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := Stats{Total: len(q.records)}
	for _, r := range q.records {
		switch r.Status {
		case StatusPending:
			s.Pending++
		case StatusSyncing:
			s.Syncing++
		case StatusSynced:
			s.Synced++
		case StatusFailed:
			s.Failed++
			if q.policy.Exhausted(r.Attempts) {
				s.Dead++
			}
		}
	}
	return s
}

var errPersist = errors.New("persist sync queue")

// sync проводит одну запись через syncing к synced или failed. Вызывается под flushMu.
func (q *Queue) sync(ctx context.Context, id string) (bool, error) {
	if err := q.transition(id, StatusSyncing, nil); err != nil {
		return false, err
	}

	rec, _ := q.find(id)
	sendErr := q.sender.Process(ctx, rec)

	if sendErr == nil {
		if err := q.transition(id, StatusSynced, nil); err != nil {
			return false, err
		}
		q.log.Debug("record synced", "id", id, "data_type", rec.DataType)
		return true, nil
	}

	if err := q.transition(id, StatusFailed, sendErr); err != nil {
		return false, err
	}
	q.log.Warn("record sync failed", "id", id, "data_type", rec.DataType, "error", sendErr)
	return false, sendErr
}

func (q *Queue) transition(id string, to Status, cause error) error {
	found := false
	var bad Status

	err := q.mutate(func(recs []SyncRecord) {
		for i := range recs {
			if recs[i].ID != id {
				continue
			}
			found = true
			if !canTransition(recs[i].Status, to) {
				bad = recs[i].Status
				return
			}

			recs[i].Status = to
			switch to {
			case StatusSynced:
				recs[i].Attempts++
				recs[i].LastError = ""
				recs[i].NextAttemptAt = time.Time{}
			case StatusFailed:
				recs[i].Attempts++
				recs[i].LastError = cause.Error()
				if errors.Is(cause, ErrUnknownDataType) || errors.Is(cause, ErrInvalidPayload) {
					recs[i].Attempts = max(recs[i].Attempts, q.policy.MaxAttempts)
				}
				if !q.policy.Exhausted(recs[i].Attempts) {
					recs[i].NextAttemptAt = q.now().Add(q.policy.Delay(recs[i].Attempts)).UTC()
				}
			}
			return
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("sync record %s not found", id)
	}
	if bad != "" {
		return fmt.Errorf("sync record %s: invalid transition %s -> %s", id, bad, to)
	}
	return nil
}

func (q *Queue) find(id string) (SyncRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, r := range q.records {
		if r.ID == id {
			return r, true
		}
	}
	return SyncRecord{}, false
}

func (q *Queue) append(rec SyncRecord) error {
	return q.replace(func(recs []SyncRecord) []SyncRecord {
		return append(recs, rec)
	})
}

func (q *Queue) mutate(fn func(recs []SyncRecord)) error {
	return q.replace(func(recs []SyncRecord) []SyncRecord {
		fn(recs)
		return recs
	})
}

// replace применяет fn к копии очереди, сохраняет результат и только потом делает его текущим
func (q *Queue) replace(fn func(recs []SyncRecord) []SyncRecord) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	next := make([]SyncRecord, len(q.records))
	copy(next, q.records)
	next = fn(next)

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: %v", errPersist, err)
	}
	if err := q.store.Set(q.key, data); err != nil {
		return fmt.Errorf("%w: %v", errPersist, err)
	}

	q.records = next
	return nil
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"hemapp/internal/app/client/config"
	"hemapp/internal/app/client/connectivity"
	"hemapp/internal/app/client/messages"
	"hemapp/internal/app/client/notify"
	"hemapp/internal/app/client/offline"
	"hemapp/internal/app/client/prefs"
	"hemapp/internal/app/client/remote"
	"hemapp/internal/app/client/storage"
)

var ErrNotAuthenticated = errors.New("not authenticated, run: hemapp auth login")

// Session сохраненный вход пользователя
type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	Login     string    `json:"login"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

type App struct {
	config   *config.Config
	log      *slog.Logger
	store    storage.Store
	remote   *remote.Client
	notifier notify.Notifier
	monitor  *connectivity.Monitor
	prober   *connectivity.Prober
	prefs    *prefs.Prefs
	cache    *offline.Cache

	mu      sync.RWMutex
	session *Session
	queue   *offline.Queue
}

// New собирает клиент: локальное хранилище, клиент сервера, монитор сети и очередь, если есть сохраненный вход
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	var store storage.Store
	sqliteStorage, err := storage.NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		log.Warn("Не удалось инициализировать SQLite, используем память", "error", err)
		store = storage.NewMemoryStorage()
	} else {
		store = sqliteStorage
	}

	return NewWithStore(cfg, store, notify.NewTerminal(os.Stderr), log)
}

// NewWithStore как New, но с готовым хранилищем и уведомлениями
func NewWithStore(cfg *config.Config, store storage.Store, notifier notify.Notifier, log *slog.Logger) (*App, error) {
	rc := remote.New(cfg.BaseURL(), log)
	prober := connectivity.NewProber(rc, cfg.ProbeInterval)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ProbeInterval)
	online := prober.Probe(ctx)
	cancel()

	app := &App{
		config:   cfg,
		log:      log,
		store:    store,
		remote:   rc,
		notifier: notifier,
		monitor:  connectivity.NewMonitor(online, notifier, log),
		prober:   prober,
		prefs:    prefs.New(store),
		cache:    offline.NewCache(store),
	}

	s, err := app.loadSession()
	if err != nil {
		log.Warn("Не удалось загрузить сессию", "error", err)
	}
	if s != nil {
		if err := app.activate(context.Background(), *s); err != nil {
			return nil, err
		}
		log.Debug("Сессия загружена из файла", "user_id", s.UserID)
	}

	return app, nil
}

func (a *App) Config() *config.Config         { return a.config }
func (a *App) Remote() *remote.Client         { return a.remote }
func (a *App) Prefs() *prefs.Prefs            { return a.prefs }
func (a *App) Cache() *offline.Cache          { return a.cache }
func (a *App) Store() storage.Store           { return a.store }
func (a *App) Notifier() notify.Notifier      { return a.notifier }
func (a *App) Monitor() *connectivity.Monitor { return a.monitor }

func (a *App) Online() bool {
	return a.monitor.Online()
}

// CheckConnection проверяет сервер и сообщает результат монитору
func (a *App) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := a.remote.HealthCheck(ctx)
	a.monitor.Report(err == nil)
	return err
}

// Session текущий вход
func (a *App) Session() (Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.session == nil {
		return Session{}, ErrNotAuthenticated
	}
	return *a.session, nil
}

func (a *App) IsAuthenticated() bool {
	_, err := a.Session()
	return err == nil
}

// Queue очередь синхронизации текущего пользователя
func (a *App) Queue() (*offline.Queue, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.queue == nil {
		return nil, ErrNotAuthenticated
	}
	return a.queue, nil
}

func (a *App) Register(ctx context.Context, login, password string) (int, error) {
	id, err := a.remote.Register(ctx, login, password)
	if err != nil {
		return 0, fmt.Errorf("ошибка регистрации: %w", err)
	}
	return id, nil
}

// Login входит на сервер, при remember сохраняет сессию на диск и отправляет накопленную очередь
func (a *App) Login(ctx context.Context, login, password string, remember bool) (Session, error) {
	rs, err := a.remote.Login(ctx, login, password)
	if err != nil {
		return Session{}, fmt.Errorf("ошибка аутентификации: %w", err)
	}
	a.monitor.Report(true)

	s := Session{Token: rs.Token, UserID: rs.UserID, Login: login, ExpiresAt: rs.ExpiresAt}
	if remember {
		if err := a.saveSession(s); err != nil {
			return Session{}, err
		}
	}

	if err := a.activate(ctx, s); err != nil {
		return Session{}, err
	}

	q, _ := a.Queue()
	if _, err := q.Flush(ctx); err != nil && !errors.Is(err, offline.ErrOffline) {
		a.log.Warn("Не удалось отправить офлайн-очередь после входа", "error", err)
	}

	return s, nil
}

// Logout отзывает токен на сервере, если есть сеть, и забывает сессию.
// Очередь остается в хранилище до следующего входа.
func (a *App) Logout(ctx context.Context) error {
	if a.monitor.Online() {
		if err := a.remote.Logout(ctx); err != nil {
			a.log.Warn("Не удалось отозвать токен на сервере", "error", err)
		}
	}

	a.mu.Lock()
	a.session = nil
	a.queue = nil
	a.mu.Unlock()

	a.remote.SetToken("")
	if err := os.Remove(a.config.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	return nil
}

// Save сохраняет пользовательскую запись через очередь: сразу на сервер при наличии сети, иначе локально
func (a *App) Save(ctx context.Context, dataType offline.DataType, payload any) (offline.SyncRecord, error) {
	q, err := a.Queue()
	if err != nil {
		return offline.SyncRecord{}, err
	}
	return q.Enqueue(ctx, dataType, payload)
}

// Fetch читает таблицу с сервера и кэширует результат. Без сети или при ошибке отдает кэш, fromCache=true.
func (a *App) Fetch(ctx context.Context, table string, opts remote.SelectOptions) (rows []remote.Row, fromCache bool, err error) {
	if a.monitor.Online() {
		rows, err = a.remote.Select(ctx, table, opts)
		if err == nil {
			if cerr := a.cache.Save(table, rows); cerr != nil {
				a.log.Warn("Не удалось обновить кэш", "table", table, "error", cerr)
			}
			return rows, false, nil
		}
		a.log.Warn("Не удалось получить данные с сервера, используем кэш", "table", table, "error", err)
	}

	ok, cerr := a.cache.Load(table, &rows)
	if cerr != nil {
		return nil, false, cerr
	}
	if !ok {
		if err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}
	return rows, true, nil
}

// UnreadCounter счетчик непрочитанных сообщений текущего пользователя
func (a *App) UnreadCounter() (*messages.UnreadCounter, error) {
	s, err := a.Session()
	if err != nil {
		return nil, err
	}
	return messages.NewUnreadCounter(a.remote, s.UserID, a.log), nil
}

// Watch следит за сетью до отмены контекста или сигнала: опрашивает сервер и отправляет очередь при восстановлении связи
func (a *App) Watch(ctx context.Context) error {
	q, err := a.Queue()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	unsubscribe := q.AutoFlush(ctx)
	defer unsubscribe()

	if a.monitor.Online() {
		if _, err := q.Flush(ctx); err != nil && !errors.Is(err, offline.ErrFlushInProgress) {
			a.log.Warn("Начальная отправка очереди не удалась", "error", err)
		}
	}

	a.log.Info("Наблюдение за сетью запущено",
		"server", a.config.ServerAddress,
		"interval", a.config.ProbeInterval,
	)
	a.monitor.Watch(ctx, a.prober.Run(ctx))
	a.log.Info("Наблюдение за сетью остановлено")

	return nil
}

func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) activate(ctx context.Context, s Session) error {
	a.remote.SetToken(s.Token)

	policy := offline.RetryPolicy{
		MaxAttempts:  a.config.Sync.MaxAttempts,
		InitialDelay: a.config.Sync.RetryDelay,
		MaxDelay:     offline.DefaultMaxDelay,
	}
	q := offline.NewQueue(s.UserID, a.store, offline.NewProcessor(a.remote, a.log), a.monitor, a.notifier, policy, a.log)
	if err := q.Load(ctx); err != nil {
		return fmt.Errorf("ошибка загрузки очереди синхронизации: %w", err)
	}

	a.mu.Lock()
	a.session = &s
	a.queue = q
	a.mu.Unlock()
	return nil
}

func (a *App) loadSession() (*Session, error) {
	data, err := os.ReadFile(a.config.TokenPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения токена: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("ошибка разбора токена: %w", err)
	}
	if s.Token == "" || s.Expired(time.Now()) {
		return nil, nil
	}
	return &s, nil
}

func (a *App) saveSession(s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.config.TokenPath, data, 0600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	return nil
}

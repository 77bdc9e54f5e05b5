package messages

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"hemapp/internal/app/client/remote"
	"hemapp/internal/app/client/storage"
)

// fakeServer хранит сообщения и рассылает изменения подписчику
type fakeServer struct {
	mu       sync.Mutex
	unread   map[int64]bool
	events   chan map[string]any
	closed   chan struct{}
	upgrader websocket.Upgrader
}

func newFakeServer(t *testing.T) (*fakeServer, *remote.Client) {
	fs := &fakeServer{
		unread: map[int64]bool{1: true, 2: true, 3: false},
		events: make(chan map[string]any, 8),
		closed: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/v1/messages/count", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"receiver_id=eq.7", "read=eq.false"}, r.URL.Query()["filter"])

		fs.mu.Lock()
		n := 0
		for _, unread := range fs.unread {
			if unread {
				n++
			}
		}
		fs.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]any{"count": n})
	})
	mux.HandleFunc("PATCH /rest/v1/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		fs.mu.Lock()
		fs.unread[id] = false
		fs.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "read": true})
	})
	mux.HandleFunc("GET /realtime/v1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"receiver_id=eq.7"}, r.URL.Query()["filter"])
		conn, err := fs.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					close(fs.closed)
					return
				}
			}
		}()

		for {
			select {
			case ev := <-fs.events:
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			case <-fs.closed:
				return
			}
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := remote.New(srv.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.SetToken("tok")
	return fs, c
}

func waitCount(t *testing.T, ch <-chan int, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-ch:
			if n == want {
				return
			}
		case <-deadline:
			t.Fatalf("count never reached %d", want)
		}
	}
}

func TestUnreadCounter(t *testing.T) {
	fs, client := newFakeServer(t)
	ctx := context.Background()

	counter := NewUnreadCounter(client, 7, slog.New(slog.NewTextHandler(io.Discard, nil)))
	changes := make(chan int, 16)
	counter.OnChange(func(n int) { changes <- n })

	require.NoError(t, counter.Start(ctx))
	assert.Equal(t, 2, counter.Count())
	waitCount(t, changes, 2)

	fs.mu.Lock()
	fs.unread[4] = true
	fs.mu.Unlock()
	fs.events <- map[string]any{"type": "INSERT", "table": "messages", "record": map[string]any{"id": 4, "read": false}}
	waitCount(t, changes, 3)

	fs.events <- map[string]any{"type": "INSERT", "table": "messages", "record": map[string]any{"id": 5, "read": true}}

	require.NoError(t, counter.MarkRead(ctx, 1))
	assert.Equal(t, 2, counter.Count())

	fs.mu.Lock()
	fs.unread[2] = false
	fs.mu.Unlock()
	fs.events <- map[string]any{"type": "UPDATE", "table": "messages", "record": map[string]any{"id": 2, "read": true}}
	waitCount(t, changes, 1)

	counter.Stop()
	counter.Stop()

	select {
	case <-fs.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not closed")
	}
}

func TestUnreadCounter_BeyondPageSize(t *testing.T) {
	fs, client := newFakeServer(t)
	ctx := context.Background()

	fs.mu.Lock()
	for id := int64(10); id < 160; id++ {
		fs.unread[id] = true
	}
	fs.mu.Unlock()

	counter := NewUnreadCounter(client, 7, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, counter.Refresh(ctx))
	assert.Equal(t, 152, counter.Count())

	require.NoError(t, counter.MarkRead(ctx, 10))
	assert.Equal(t, 151, counter.Count())
}

func TestUnreadCounter_StartFails(t *testing.T) {
	client := remote.New("http://127.0.0.1:1", slog.New(slog.NewTextHandler(io.Discard, nil)))
	counter := NewUnreadCounter(client, 7, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Error(t, counter.Start(context.Background()))
	counter.Stop()
}

func TestCommunityLastViewed(t *testing.T) {
	store := storage.NewMemoryStorage()

	_, ok, err := CommunityLastViewed(store, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, MarkCommunityViewed(store, 7, at))

	got, ok, err := CommunityLastViewed(store, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(got))

	rows := []remote.Row{
		{"created_at": at.Add(-time.Hour).Format(time.RFC3339Nano)},
		{"created_at": at.Add(time.Minute).Format(time.RFC3339Nano)},
		{"created_at": "garbage"},
	}
	assert.Equal(t, 1, CountNewSince(rows, got))
}

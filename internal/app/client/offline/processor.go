package offline

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slog"

	"hemapp/internal/app/client/remote"
)

// Remote операции сервера, которые нужны для отправки очереди
type Remote interface {
	Insert(ctx context.Context, table string, values any) (remote.Row, error)
	Upsert(ctx context.Context, table, onConflict string, values any) (remote.Row, error)
	Chat(ctx context.Context, message string) (string, error)
}

type route struct {
	table  string
	upsert bool
	// chat отправляет вопрос ассистенту, сервер сам сохраняет диалог в table
	chat bool
}

var routes = map[DataType]route{
	DietEntry:     {table: "diet_entries"},
	Meal:          {table: "meals"},
	Message:       {table: "messages"},
	Goal:          {table: "goals", upsert: true},
	ProfileUpdate: {table: "profiles", upsert: true},
	AIMessage:     {table: "ai_conversations", chat: true},
}

// Processor отправляет одну запись очереди ровно одним вызовом сервера
type Processor struct {
	remote Remote
	log    *slog.Logger
}

func NewProcessor(r Remote, log *slog.Logger) *Processor {
	return &Processor{remote: r, log: log.With("component", "offline_processor")}
}

func (p *Processor) Process(ctx context.Context, rec SyncRecord) error {
	rt, ok := routes[rec.DataType]
	if !ok {
		p.log.Warn("unknown offline data type, skipping", "id", rec.ID, "data_type", rec.DataType)
		return fmt.Errorf("%w: %q", ErrUnknownDataType, rec.DataType)
	}

	var err error
	switch {
	case rt.chat:
		err = p.chat(ctx, rec)
	case rt.upsert:
		_, err = p.remote.Upsert(ctx, rt.table, "", rec.Payload)
	default:
		_, err = p.remote.Insert(ctx, rt.table, rec.Payload)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", rec.DataType, rt.table, err)
	}

	return nil
}

func (p *Processor) chat(ctx context.Context, rec SyncRecord) error {
	var q struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Payload, &q); err != nil || q.Message == "" {
		return fmt.Errorf("%w: ai_message without message", ErrInvalidPayload)
	}

	if _, err := p.remote.Chat(ctx, q.Message); err != nil {
		return err
	}
	p.log.Debug("offline question answered", "id", rec.ID)
	return nil
}

// Table таблица, в которую уходит тип данных
func Table(dt DataType) (string, bool) {
	rt, ok := routes[dt]
	return rt.table, ok
}

package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"hemapp/internal/domain/table"
	"hemapp/internal/infrastructure/llm"

	"golang.org/x/exp/slog"
)

const (
	historyLimit = 10

	chatPrompt = `You are Hemapp's health assistant. Give short, practical advice about nutrition, ` +
		`exercise, sleep and healthy habits. You are not a doctor: for symptoms that may need ` +
		`medical attention, recommend contacting a healthcare professional.`

	photoPrompt = `You are a nutrition expert. Analyze the meal in the photo and answer with JSON only, ` +
		`no markdown, in this shape: {"foodItems":[{"name":"","portion":"","calories":0}],` +
		`"estimatedCalories":0,"nutrients":{"protein":0,"carbs":0,"fat":0,"fiber":0},` +
		`"healthScore":0,"suggestions":[""],"confidence":"low|medium|high","description":""}. ` +
		`Nutrients are in grams, healthScore is from 1 to 10.`
)

type Servicer interface {
	Chat(ctx context.Context, userID int, message string) (string, error)
	AnalyzePhoto(ctx context.Context, userID int, imageURL string) (PhotoAnalysis, error)
}

// Tables часть table.Servicer, нужная ассистенту
type Tables interface {
	Insert(ctx context.Context, userID int, table string, data json.RawMessage) (*table.Row, error)
	Select(ctx context.Context, userID int, table string, filters []table.Filter, limit int, ascending bool) ([]table.Row, error)
}

type Service struct {
	llm    llm.Completer
	tables Tables
	log    *slog.Logger
}

func NewService(completer llm.Completer, tables Tables, log *slog.Logger) *Service {
	return &Service{
		llm:    completer,
		tables: tables,
		log:    log.With("component", "assistant_service"),
	}
}

type exchange struct {
	Message  string `json:"message"`
	Response string `json:"response"`
}

func (s *Service) Chat(ctx context.Context, userID int, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	messages := []llm.Message{llm.TextMessage(llm.RoleSystem, chatPrompt)}
	messages = append(messages, s.history(ctx, userID)...)
	messages = append(messages, llm.TextMessage(llm.RoleUser, message))

	reply, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	s.save(ctx, userID, table.AIConversations, exchange{Message: message, Response: reply})
	return reply, nil
}

func (s *Service) AnalyzePhoto(ctx context.Context, userID int, imageURL string) (PhotoAnalysis, error) {
	u, err := url.ParseRequestURI(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return PhotoAnalysis{}, ErrInvalidImageURL
	}

	reply, err := s.llm.Complete(ctx, []llm.Message{
		llm.TextMessage(llm.RoleSystem, photoPrompt),
		llm.ImageMessage("Analyze this meal.", imageURL),
	})
	if err != nil {
		return PhotoAnalysis{}, fmt.Errorf("photo completion: %w", err)
	}

	analysis, ok := ParseAnalysis(reply)
	if !ok {
		s.log.Warn("unparseable analysis reply, using fallback", "user_id", userID, "reply_len", len(reply))
	}

	s.save(ctx, userID, table.PhotoAnalyses, struct {
		ImageURL string        `json:"image_url"`
		Analysis PhotoAnalysis `json:"analysis"`
	}{imageURL, analysis})

	return analysis, nil
}

// history последние обмены пользователя в хронологическом порядке
func (s *Service) history(ctx context.Context, userID int) []llm.Message {
	rows, err := s.tables.Select(ctx, userID, table.AIConversations, nil, historyLimit, false)
	if err != nil {
		s.log.Warn("load chat history", "user_id", userID, "error", err)
		return nil
	}

	messages := make([]llm.Message, 0, len(rows)*2)
	for i := len(rows) - 1; i >= 0; i-- {
		var e exchange
		if err := json.Unmarshal(rows[i].Data, &e); err != nil || e.Message == "" {
			continue
		}
		messages = append(messages, llm.TextMessage(llm.RoleUser, e.Message))
		if e.Response != "" {
			messages = append(messages, llm.TextMessage(llm.RoleAssistant, e.Response))
		}
	}
	return messages
}

// save ошибка сохранения не отменяет уже полученный ответ модели
func (s *Service) save(ctx context.Context, userID int, tableName string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("marshal result", "table", tableName, "error", err)
		return
	}
	if _, err := s.tables.Insert(ctx, userID, tableName, data); err != nil {
		s.log.Error("persist result", "table", tableName, "user_id", userID, "error", err)
	}
}

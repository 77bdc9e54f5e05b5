// Package notify короткие уведомления пользователю (аналог toast).
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
)

type Notifier interface {
	Notify(level Level, title, message string)
}

// Terminal печатает уведомления в терминал с подсветкой уровня
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Notify(level Level, title, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var c *color.Color
	switch level {
	case LevelSuccess:
		c = color.New(color.FgGreen, color.Bold)
	case LevelWarn:
		c = color.New(color.FgYellow, color.Bold)
	case LevelError:
		c = color.New(color.FgRed, color.Bold)
	default:
		c = color.New(color.FgCyan, color.Bold)
	}

	if message == "" {
		fmt.Fprintln(t.out, c.Sprint(title))
		return
	}
	fmt.Fprintf(t.out, "%s %s\n", c.Sprint(title), message)
}

// Event одно записанное уведомление
type Event struct {
	Level   Level
	Title   string
	Message string
}

// Recorder запоминает уведомления, используется в тестах
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(level Level, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Level: level, Title: title, Message: message})
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

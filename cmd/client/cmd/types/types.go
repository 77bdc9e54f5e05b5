// Package types общие для команд CLI ключи контекста и помощники.
package types

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hemapp/internal/app/client"
)

type contextKey string

const ClientAppKey contextKey = "app"

// WithApp кладет приложение в контекст команды
func WithApp(ctx context.Context, app *client.App) context.Context {
	return context.WithValue(ctx, ClientAppKey, app)
}

// App достает приложение из контекста команды
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

// PrintJSON выводит значение в stdout с отступами
func PrintJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Str строковое значение поля строки или "-"
func Str(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return "-"
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

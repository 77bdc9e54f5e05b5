package sync

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hemapp/cmd/client/cmd/types"
	"hemapp/internal/app/client/offline"
)

// SyncCmd - родительская команда для офлайн-очереди
var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация офлайн-записей",
	Long:  `Просмотр и отправка записей, сохраненных без сети.`,
}

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Состояние очереди",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		q, err := app.Queue()
		if err != nil {
			return err
		}

		network := "онлайн"
		if !app.Online() {
			network = "офлайн"
		}
		st := q.Stats()
		fmt.Printf("Сеть: %s\n", network)
		fmt.Printf("Всего: %d, ожидают: %d, отправлены: %d, с ошибкой: %d (исчерпали попытки: %d)\n\n",
			st.Total, st.Pending, st.Synced, st.Failed, st.Dead)

		records := q.Records()
		if len(records) == 0 {
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tТип\tСтатус\tПопыток\tСоздана\tОшибка\t\n")
		for _, r := range records {
			lastErr := r.LastError
			if lastErr == "" {
				lastErr = "-"
			}
			id := r.ID
			if len(id) > 8 {
				id = id[:8]
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t\n",
				id, r.DataType, r.Status, r.Attempts,
				r.CreatedAt.Local().Format("2006-01-02 15:04"), lastErr)
		}
		return w.Flush()
	},
}

var FlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Отправить очередь на сервер",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		q, err := app.Queue()
		if err != nil {
			return err
		}

		if err := app.CheckConnection(cmd.Context()); err != nil {
			return fmt.Errorf("сервер недоступен: %w", err)
		}

		res, err := q.Flush(cmd.Context())
		switch {
		case errors.Is(err, offline.ErrFlushInProgress):
			fmt.Println("Синхронизация уже выполняется")
			return nil
		case err != nil:
			return fmt.Errorf("ошибка синхронизации: %w", err)
		}

		if res.Attempted == 0 {
			fmt.Println("Нечего отправлять")
			return nil
		}
		fmt.Printf("✓ Отправлено: %d, с ошибкой: %d\n", res.Synced, res.Failed)
		return nil
	},
}

var PurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Удалить отправленные записи из очереди",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		q, err := app.Queue()
		if err != nil {
			return err
		}

		n, err := q.PurgeSynced(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка очистки очереди: %w", err)
		}
		fmt.Printf("✓ Удалено записей: %d\n", n)
		return nil
	},
}

var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Следить за сетью и отправлять очередь автоматически",
	Long:  `Периодически проверяет сервер и отправляет очередь при восстановлении связи. Остановка: Ctrl+C.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		fmt.Println("Наблюдение запущено, Ctrl+C для выхода")
		return app.Watch(cmd.Context())
	},
}

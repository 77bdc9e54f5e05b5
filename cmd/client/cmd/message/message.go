package message

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hemapp/cmd/client/cmd/types"
	"hemapp/internal/app/client/messages"
	"hemapp/internal/app/client/offline"
	"hemapp/internal/app/client/remote"
)

// MessageCmd - родительская команда для сообщений
var MessageCmd = &cobra.Command{
	Use:   "message",
	Short: "Сообщения",
	Long:  `Переписка с другими пользователями и лента сообщества.`,
}

var receiver int

var SendCmd = &cobra.Command{
	Use:   "send <текст>",
	Short: "Отправить сообщение",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		s, err := app.Session()
		if err != nil {
			return err
		}
		if receiver <= 0 {
			return fmt.Errorf("укажите --to")
		}

		rec, err := app.Save(cmd.Context(), offline.Message, map[string]any{
			"sender_id":   s.UserID,
			"receiver_id": receiver,
			"content":     strings.Join(args, " "),
			"read":        false,
		})
		if err != nil {
			return fmt.Errorf("ошибка отправки: %w", err)
		}

		fmt.Printf("✓ Сообщение сохранено (%s)\n", rec.Status)
		return nil
	},
}

var watch bool

var UnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Число непрочитанных сообщений",
	Long:  `Показывает число непрочитанных. С --watch обновляет его в реальном времени до Ctrl+C.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		counter, err := app.UnreadCounter()
		if err != nil {
			return err
		}

		if !watch {
			if err := counter.Refresh(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Непрочитанных: %d\n", counter.Count())
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		counter.OnChange(func(n int) {
			fmt.Printf("[%s] Непрочитанных: %d\n", time.Now().Format(time.TimeOnly), n)
		})
		if err := counter.Start(ctx); err != nil {
			return err
		}
		defer counter.Stop()

		<-ctx.Done()
		return nil
	},
}

var ReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Пометить сообщение прочитанным",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("некорректный id: %w", err)
		}
		counter, err := app.UnreadCounter()
		if err != nil {
			return err
		}

		if err := counter.MarkRead(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("✓ Прочитано. Осталось непрочитанных: %d\n", counter.Count())
		return nil
	},
}

var CommunityCmd = &cobra.Command{
	Use:   "community",
	Short: "Новые сообщения в ленте сообщества",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		s, err := app.Session()
		if err != nil {
			return err
		}

		rows, _, err := app.Fetch(cmd.Context(), "messages", remote.SelectOptions{Limit: 50})
		if err != nil {
			return fmt.Errorf("ошибка получения ленты: %w", err)
		}

		since, seen, err := messages.CommunityLastViewed(app.Store(), s.UserID)
		if err != nil {
			return err
		}
		if seen {
			fmt.Printf("Новых с последнего просмотра: %d\n\n", messages.CountNewSince(rows, since))
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tОт\tКому\tТекст\tКогда\t\n")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
				types.Str(r, "id"),
				types.Str(r, "sender_id"),
				types.Str(r, "receiver_id"),
				types.Str(r, "content"),
				types.Str(r, "created_at"),
			)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		return messages.MarkCommunityViewed(app.Store(), s.UserID, time.Now())
	},
}

func init() {
	SendCmd.Flags().IntVar(&receiver, "to", 0, "id получателя")
	UnreadCmd.Flags().BoolVarP(&watch, "watch", "w", false, "следить за изменениями")
}

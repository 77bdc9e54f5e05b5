package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"hemapp/cmd/client/cmd/types"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти из системы",
	Long:  `Отзывает токен на сервере и удаляет сохраненную сессию. Неотправленные записи остаются в локальной очереди до следующего входа.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if err := app.Logout(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("✓ Сессия завершена")
		return nil
	},
}

package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"hemapp/cmd/client/cmd/types"
)

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Создать аккаунт",
	Long: `Регистрация на сервере Hemapp.

Логином может быть email или имя из букв, цифр и символов '_', '-', '.'.
Пароль от 8 символов, с буквой и цифрой, не из списка распространенных.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Println("=== Регистрация ===")
		login, err := promptLogin()
		if err != nil {
			return err
		}
		password, err := promptPassword("Пароль: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Повторите пароль: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("пароли не совпадают")
		}

		id, err := app.Register(cmd.Context(), login, password)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Аккаунт создан (id %d). Войдите: hemapp auth login -l %s --remember\n", id, login)
		return nil
	},
}

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hemapp/cmd/client/cmd/types"
)

var rememberMe bool

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти в систему Hemapp",
	Long: `Аутентификация на сервере Hemapp.

С флагом --remember сессия сохраняется локально для последующих команд.
После входа накопленные офлайн-записи отправляются на сервер.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		login, err := promptLogin()
		if err != nil {
			return err
		}
		password, err := promptPassword("Пароль: ")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		s, err := app.Login(ctx, login, password, rememberMe)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Вы вошли как %s, сессия действует до %s\n", s.Login, s.ExpiresAt.Local().Format(time.DateTime))
		if !rememberMe {
			fmt.Println("Сессия не сохранена: следующие команды потребуют входа. Используйте --remember.")
		}

		if q, err := app.Queue(); err == nil {
			if st := q.Stats(); st.Pending+st.Failed > 0 {
				fmt.Printf("⚠️  Неотправленных записей в очереди: %d (hemapp sync status)\n", st.Pending+st.Failed)
			}
		}
		return nil
	},
}

func init() {
	LoginCmd.Flags().BoolVarP(&rememberMe, "remember", "r", false, "сохранить сессию на этом устройстве")
}

// cmd/client/cmd/init.go
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hemapp/cmd/client/cmd/ai"
	"hemapp/cmd/client/cmd/auth"
	"hemapp/cmd/client/cmd/diet"
	"hemapp/cmd/client/cmd/facility"
	"hemapp/cmd/client/cmd/goal"
	"hemapp/cmd/client/cmd/meal"
	"hemapp/cmd/client/cmd/message"
	"hemapp/cmd/client/cmd/prefs"
	"hemapp/cmd/client/cmd/profile"
	"hemapp/cmd/client/cmd/sync"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Инициализировать клиент Hemapp",
	Long: `Команда init выполняет первоначальную настройку клиента:
	1. Создает каталог ~/.hemapp и файл config.yaml
	2. Проверяет соединение с сервером`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("=== Инициализация Hemapp ===")
		fmt.Println()

		path := filepath.Join(cfg.ConfigDir, "config.yaml")
		viper.Set("server_address", cfg.ServerAddress)
		viper.Set("enable_tls", cfg.EnableTLS)
		viper.Set("sync_max_attempts", cfg.Sync.MaxAttempts)
		viper.Set("sync_retry_delay", cfg.Sync.RetryDelay.String())
		if err := viper.SafeWriteConfigAs(path); err != nil {
			if _, ok := err.(viper.ConfigFileAlreadyExistsError); !ok {
				return fmt.Errorf("ошибка записи конфигурации: %w", err)
			}
			fmt.Printf("Конфигурация уже существует: %s\n", path)
		} else {
			fmt.Printf("✓ Конфигурация сохранена: %s\n", path)
		}

		fmt.Println("Проверка соединения с сервером...")
		if err := app.CheckConnection(cmd.Context()); err != nil {
			fmt.Printf("⚠️  Предупреждение: не удалось подключиться к серверу: %v\n", err)
			fmt.Println("Вы можете работать в офлайн-режиме, записи будут отправлены позже.")
		} else {
			fmt.Println("✓ Соединение с сервером установлено")
		}

		fmt.Println()
		fmt.Println("Что дальше:")
		fmt.Println("1. Зарегистрируйтесь: hemapp auth register")
		fmt.Println("2. Войдите в систему: hemapp auth login --remember")
		fmt.Println("3. Добавьте запись в дневник: hemapp diet add --food oatmeal --calories 350")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)

	rootCmd.AddCommand(diet.DietCmd)
	diet.DietCmd.AddCommand(diet.AddCmd)
	diet.DietCmd.AddCommand(diet.ListCmd)

	rootCmd.AddCommand(meal.MealCmd)
	meal.MealCmd.AddCommand(meal.LogCmd)
	meal.MealCmd.AddCommand(meal.ListCmd)

	rootCmd.AddCommand(goal.GoalCmd)
	goal.GoalCmd.AddCommand(goal.SetCmd)
	goal.GoalCmd.AddCommand(goal.ListCmd)

	rootCmd.AddCommand(message.MessageCmd)
	message.MessageCmd.AddCommand(message.SendCmd)
	message.MessageCmd.AddCommand(message.UnreadCmd)
	message.MessageCmd.AddCommand(message.ReadCmd)
	message.MessageCmd.AddCommand(message.CommunityCmd)

	rootCmd.AddCommand(ai.AICmd)
	ai.AICmd.AddCommand(ai.ChatCmd)
	ai.AICmd.AddCommand(ai.AnalyzeCmd)
	ai.AICmd.AddCommand(ai.HistoryCmd)

	rootCmd.AddCommand(facility.FacilityCmd)
	facility.FacilityCmd.AddCommand(facility.NearbyCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	sync.SyncCmd.AddCommand(sync.StatusCmd)
	sync.SyncCmd.AddCommand(sync.FlushCmd)
	sync.SyncCmd.AddCommand(sync.PurgeCmd)
	sync.SyncCmd.AddCommand(sync.WatchCmd)

	rootCmd.AddCommand(profile.ProfileCmd)
	profile.ProfileCmd.AddCommand(profile.ShowCmd)
	profile.ProfileCmd.AddCommand(profile.SetCmd)

	rootCmd.AddCommand(prefs.PrefsCmd)
	prefs.PrefsCmd.AddCommand(prefs.ShowCmd)
	prefs.PrefsCmd.AddCommand(prefs.SetCmd)
}

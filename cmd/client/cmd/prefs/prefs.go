package prefs

import (
	"fmt"

	"github.com/spf13/cobra"

	"hemapp/cmd/client/cmd/types"
)

// PrefsCmd - родительская команда для локальных настроек
var PrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Локальные настройки",
	Long:  `Настройки уведомлений, языка, голоса и режима Брайля. Хранятся только на этом устройстве.`,
}

var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Показать настройки",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		p := app.Prefs()

		ns, err := p.NotificationSettings()
		if err != nil {
			return err
		}
		braille, err := p.BrailleMode()
		if err != nil {
			return err
		}
		lang, err := p.PreferredLanguage()
		if err != nil {
			return err
		}
		voice, err := p.PreferredVoice()
		if err != nil {
			return err
		}

		return types.PrintJSON(map[string]any{
			"notifications": ns,
			"braille":       braille,
			"language":      lang,
			"voice":         voice,
		})
	},
}

var (
	language      string
	voice         string
	braille       bool
	notifications bool
	mealReminders bool
	goalUpdates   bool
)

var SetCmd = &cobra.Command{
	Use:   "set",
	Short: "Изменить настройки",
	Long:  `Меняет только переданные флаги. Пустой --voice сбрасывает выбранный голос.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		p := app.Prefs()
		flags := cmd.Flags()

		if flags.Changed("language") {
			if err := p.SetPreferredLanguage(language); err != nil {
				return fmt.Errorf("ошибка сохранения языка: %w", err)
			}
		}
		if flags.Changed("voice") {
			if err := p.SetPreferredVoice(voice); err != nil {
				return fmt.Errorf("ошибка сохранения голоса: %w", err)
			}
		}
		if flags.Changed("braille") {
			if err := p.SetBrailleMode(braille); err != nil {
				return fmt.Errorf("ошибка сохранения режима Брайля: %w", err)
			}
		}

		if flags.Changed("notifications") || flags.Changed("meal-reminders") || flags.Changed("goal-updates") {
			ns, err := p.NotificationSettings()
			if err != nil {
				return err
			}
			if flags.Changed("notifications") {
				ns.Enabled = notifications
			}
			if flags.Changed("meal-reminders") {
				ns.MealReminders = mealReminders
			}
			if flags.Changed("goal-updates") {
				ns.GoalUpdates = goalUpdates
			}
			if err := p.SetNotificationSettings(ns); err != nil {
				return fmt.Errorf("ошибка сохранения уведомлений: %w", err)
			}
		}

		fmt.Println("✓ Настройки сохранены")
		return nil
	},
}

func init() {
	SetCmd.Flags().StringVar(&language, "language", "", "язык интерфейса, например en или ru")
	SetCmd.Flags().StringVar(&voice, "voice", "", "голос озвучивания")
	SetCmd.Flags().BoolVar(&braille, "braille", false, "режим Брайля")
	SetCmd.Flags().BoolVar(&notifications, "notifications", true, "уведомления")
	SetCmd.Flags().BoolVar(&mealReminders, "meal-reminders", true, "напоминания о еде")
	SetCmd.Flags().BoolVar(&goalUpdates, "goal-updates", true, "прогресс целей")
}

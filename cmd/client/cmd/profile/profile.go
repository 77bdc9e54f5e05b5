package profile

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"hemapp/cmd/client/cmd/types"
	"hemapp/internal/app/client/offline"
	"hemapp/internal/app/client/remote"
)

// ProfileCmd - родительская команда профиля пользователя
var ProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Профиль пользователя",
}

var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Показать профиль",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		rows, fromCache, err := app.Fetch(cmd.Context(), "profiles", remote.SelectOptions{Limit: 1})
		if err != nil {
			return fmt.Errorf("ошибка получения профиля: %w", err)
		}
		if fromCache {
			fmt.Println("⚠️  Нет связи с сервером, показаны сохраненные данные")
		}
		if len(rows) == 0 {
			fmt.Println("Профиль пуст: hemapp profile set --display-name <имя>")
			return nil
		}
		return types.PrintJSON(rows[0])
	},
}

var (
	displayName string
	age         int
	heightCm    float64
	weightKg    float64
	activity    string
)

var activityLevels = []string{"low", "moderate", "high"}

var SetCmd = &cobra.Command{
	Use:   "set",
	Short: "Изменить профиль",
	Long: `Меняет только переданные поля. Без сети изменение ставится в очередь
и уходит на сервер при следующей синхронизации.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		s, err := app.Session()
		if err != nil {
			return err
		}

		patch, err := changes(cmd)
		if err != nil {
			return err
		}
		patch["user_id"] = s.UserID

		rec, err := app.Save(cmd.Context(), offline.ProfileUpdate, patch)
		if err != nil {
			return fmt.Errorf("ошибка сохранения профиля: %w", err)
		}

		fmt.Printf("✓ Профиль сохранен (%s)\n", rec.Status)
		return nil
	},
}

// changes собирает из флагов только явно заданные поля
func changes(cmd *cobra.Command) (map[string]any, error) {
	flags := cmd.Flags()
	patch := map[string]any{}

	if flags.Changed("display-name") {
		if displayName == "" {
			return nil, fmt.Errorf("--display-name не может быть пустым")
		}
		patch["display_name"] = displayName
	}
	if flags.Changed("age") {
		if age < 1 || age > 130 {
			return nil, fmt.Errorf("--age вне диапазона 1..130")
		}
		patch["age"] = age
	}
	if flags.Changed("height") {
		if heightCm <= 0 {
			return nil, fmt.Errorf("--height должен быть положительным")
		}
		patch["height_cm"] = heightCm
	}
	if flags.Changed("weight") {
		if weightKg <= 0 {
			return nil, fmt.Errorf("--weight должен быть положительным")
		}
		patch["weight_kg"] = weightKg
	}
	if flags.Changed("activity") {
		if !slices.Contains(activityLevels, activity) {
			return nil, fmt.Errorf("--activity одно из %v", activityLevels)
		}
		patch["activity_level"] = activity
	}

	if len(patch) == 0 {
		return nil, fmt.Errorf("нечего менять: укажите хотя бы один флаг")
	}
	return patch, nil
}

func bindSetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&displayName, "display-name", "", "отображаемое имя")
	cmd.Flags().IntVar(&age, "age", 0, "возраст, лет")
	cmd.Flags().Float64Var(&heightCm, "height", 0, "рост, см")
	cmd.Flags().Float64Var(&weightKg, "weight", 0, "вес, кг")
	cmd.Flags().StringVar(&activity, "activity", "", "уровень активности: low, moderate, high")
}

func init() {
	bindSetFlags(SetCmd)
}
